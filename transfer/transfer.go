// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transfer - the wire form of account state
//
// Accounts move between group members as opaque encoded payloads: one
// node's view of an account is encoded, sent as a refresh, and merged
// by the receivers into a canonical record.  This package owns the
// codec, the account type tags and the outbound action types produced
// by the stores when the group churns.
package transfer

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/nameid"
)

// Tag - discriminant identifying the account kind carried by a payload
//
// a receiving dispatcher uses this to route a payload to the correct
// store's merge logic
type Tag uint64

// tag values for the two account kinds
const (
	HolderAccountTag Tag = 101
	UsageAccountTag  Tag = 102
)

// String - convert a tag for use by the fmt package (for %s)
func (tag Tag) String() string {
	switch tag {
	case HolderAccountTag:
		return "holding"
	case UsageAccountTag:
		return "usage"
	default:
		return "unknown"
	}
}

// Refreshable - the contract shared by the account kinds
//
// an account can state which name it belongs to and serialise itself
// for transfer; merging a batch of peer reports is a per-kind
// operation with unrelated arithmetic, so each account package
// provides its own Merge function instead
type Refreshable interface {
	Name() nameid.Name
	SerialisedContents() []byte
}

// codec modes are fixed at start up
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if nil != err {
		panic("transfer: encoder setup failed: " + err.Error())
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if nil != err {
		panic("transfer: decoder setup failed: " + err.Error())
	}
	encMode = em
	decMode = dm
}

// Marshal - encode an account record for transfer
func Marshal(record interface{}) ([]byte, error) {
	return encMode.Marshal(record)
}

// Unmarshal - decode a transferred payload into an account record
//
// a failure means the payload is malformed or foreign and the caller
// must drop it without any state change
func Unmarshal(payload []byte, record interface{}) error {
	err := decMode.Unmarshal(payload, record)
	if nil != err {
		return fault.ErrTransferDecodeFailed
	}
	return nil
}
