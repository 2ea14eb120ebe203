// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nameid

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/bitmark-inc/vaultd/fault"
)

// Length - number of bytes in a name
const Length = 32

// Name - the network address of a content item or a storage node
//
// an opaque fixed-size identifier: the routing layer assigns these,
// this daemon only stores and compares them
type Name [Length]byte

// New - create a name from a byte slice of exactly Length bytes
func New(b []byte) (Name, error) {
	var name Name
	if Length != len(b) {
		return name, fault.ErrInvalidNameLength
	}
	copy(name[:], b)
	return name, nil
}

// Random - create an unpredictable name
//
// used by tests and simulations; real names come from the routing layer
func Random() Name {
	var name Name
	_, err := rand.Read(name[:])
	if nil != err {
		panic("nameid: random source failed: " + err.Error())
	}
	return name
}

// Bytes - return a copy of the name as a byte slice
func (name Name) Bytes() []byte {
	b := make([]byte, Length)
	copy(b, name[:])
	return b
}

// String - convert a binary name to hex string for use by the fmt package (for %s)
func (name Name) String() string {
	return hex.EncodeToString(name[:])
}

// GoString - convert a binary name to hex string for use by the fmt package (for %#v)
func (name Name) GoString() string {
	return "<name:" + hex.EncodeToString(name[:]) + ">"
}

// MarshalText - convert a name to hex text
//
// needed for config files and JSON
func (name Name) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(Length)
	buffer := make([]byte, size)
	hex.Encode(buffer, name[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a name
func (name *Name) UnmarshalText(s []byte) error {
	if hex.EncodedLen(Length) != len(s) {
		return fault.ErrInvalidNameLength
	}
	buffer := make([]byte, Length)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(name[:], buffer)
	return nil
}
