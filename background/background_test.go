// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"testing"
	"time"

	"github.com/bitmark-inc/vaultd/background"
)

type theCounter struct {
	ticks   int
	stopped bool
}

func (state *theCounter) Run(args interface{}, shutdown <-chan struct{}) {

	start, ok := args.(int)
	if !ok {
		return
	}
	state.ticks = start

loop:
	for {
		select {
		case <-shutdown:
			break loop
		default:
		}

		state.ticks += 1
		time.Sleep(time.Millisecond)
	}
	state.stopped = true
}

// test that a process runs and honours shutdown
func TestStartStop(t *testing.T) {

	proc := &theCounter{}

	processes := background.Processes{
		proc,
	}

	p := background.Start(processes, 10)
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	if !proc.stopped {
		t.Fatal("process did not stop")
	}
	if proc.ticks <= 10 {
		t.Errorf("process did not run: ticks: %d", proc.ticks)
	}
}
