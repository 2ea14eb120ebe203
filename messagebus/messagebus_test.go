// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus_test

import (
	"testing"

	"github.com/bitmark-inc/vaultd/messagebus"
)

func TestQueue(t *testing.T) {

	items := []messagebus.Message{
		{
			Command:    "c1",
			Parameters: nil,
		},
		{
			Command:    "c2",
			Parameters: nil,
		},
		{
			Command:    "c3",
			Parameters: nil,
		},
	}

	for _, item := range items {
		messagebus.Bus.TestQueue.Send(item.Command)
	}

	queue := messagebus.Bus.TestQueue.Chan()
	for _, item := range items {
		received := <-queue
		if received.Command != item.Command {
			t.Errorf("actual: %q  expected: %q", received.Command, item.Command)
		}
	}
}

func TestRelease(t *testing.T) {

	messagebus.Bus.TestQueue.Send("to be dropped", []byte("one"), []byte("two"))
	messagebus.Bus.TestQueue.Send("also to be dropped")

	if 2 != messagebus.Bus.TestQueue.Length() {
		t.Fatalf("queue length: %d  expected: 2", messagebus.Bus.TestQueue.Length())
	}

	messagebus.Bus.TestQueue.Release()

	if 0 != messagebus.Bus.TestQueue.Length() {
		t.Errorf("queue not drained: %d items remain", messagebus.Bus.TestQueue.Length())
	}
}
