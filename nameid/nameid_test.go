// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nameid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/nameid"
)

func TestNew(t *testing.T) {
	b := make([]byte, nameid.Length)
	for i := range b {
		b[i] = byte(i)
	}

	name, err := nameid.New(b)
	assert.Nil(t, err, "wrong error")
	assert.Equal(t, b, name.Bytes(), "wrong bytes")
}

func TestNewWrongLength(t *testing.T) {
	_, err := nameid.New([]byte{1, 2, 3})
	assert.Equal(t, fault.ErrInvalidNameLength, err, "wrong error")
}

func TestTextRoundTrip(t *testing.T) {
	name := nameid.Random()

	text, err := name.MarshalText()
	assert.Nil(t, err, "wrong marshal error")

	var back nameid.Name
	err = back.UnmarshalText(text)
	assert.Nil(t, err, "wrong unmarshal error")
	assert.Equal(t, name, back, "wrong round trip")
}

func TestUnmarshalTextWrongLength(t *testing.T) {
	var name nameid.Name
	err := name.UnmarshalText([]byte("0123"))
	assert.Equal(t, fault.ErrInvalidNameLength, err, "wrong error")
}

func TestRandomDistinct(t *testing.T) {
	one := nameid.Random()
	two := nameid.Random()
	assert.NotEqual(t, one, two, "random names collided")
}
