// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package usage

import (
	"github.com/bitmark-inc/vaultd/nameid"
	"github.com/bitmark-inc/vaultd/transfer"
	"github.com/bitmark-inc/vaultd/util"
)

// DefaultOfferedSpace - capacity assumed for a node that has not yet
// negotiated its own offer
const DefaultOfferedSpace uint64 = 1073741824

// Value - the storage counters for one node
type Value struct {
	StoredTotalSize uint64 `cbor:"stored_total_size"`
	LostTotalSize   uint64 `cbor:"lost_total_size"`
	OfferedSpace    uint64 `cbor:"offered_space"`
}

// DefaultValue - counters for a node referenced for the first time
func DefaultValue() Value {
	return Value{
		StoredTotalSize: 0,
		LostTotalSize:   0,
		OfferedSpace:    DefaultOfferedSpace,
	}
}

// NewValue - counters with explicit values
func NewValue(storedTotalSize uint64, lostTotalSize uint64, offeredSpace uint64) Value {
	return Value{
		StoredTotalSize: storedTotalSize,
		LostTotalSize:   lostTotalSize,
		OfferedSpace:    offeredSpace,
	}
}

// Put - account for data stored on the node
//
// capacity is deliberately not enforced: a put must always succeed so
// the node can still shed sacrificial copies; the bool return is the
// hook for a future rejection policy and is currently always true
func (value *Value) Put(size uint64) bool {
	value.StoredTotalSize += size
	return true
}

// Delete - account for data removed from the node
//
// clamps at zero, never underflows
func (value *Value) Delete(size uint64) {
	if value.StoredTotalSize < size {
		value.StoredTotalSize = 0
	} else {
		value.StoredTotalSize -= size
	}
}

// HandleLoss - account for data the node is known to have dropped
// rather than explicitly deleted
func (value *Value) HandleLoss(size uint64) {
	value.Delete(size)
	value.LostTotalSize += size
}

// Update - account for a copy that migrated away from the node
func (value *Value) Update(diff uint64) {
	value.HandleLoss(diff)
}

// SetCapacity - overwrite the node's offered space
func (value *Value) SetCapacity(offeredSpace uint64) {
	value.OfferedSpace = offeredSpace
}

// Account - one node's counters in transferable form
type Account struct {
	Node  nameid.Name `cbor:"name"`
	Value Value       `cbor:"value"`
}

// the account must satisfy the transfer contract
var _ transfer.Refreshable = (*Account)(nil)

// NewAccount - create an account for a storage node
func NewAccount(node nameid.Name, value Value) *Account {
	return &Account{
		Node:  node,
		Value: value,
	}
}

// Name - the storage node this account belongs to
func (account *Account) Name() nameid.Name {
	return account.Node
}

// SerialisedContents - the wire form of the account
//
// an encoding failure yields an empty payload
func (account *Account) SerialisedContents() []byte {
	payload, err := transfer.Marshal(account)
	if nil != err {
		return []byte{}
	}
	return payload
}

// DecodeAccount - decode a transferred payload
func DecodeAccount(payload []byte) (*Account, error) {
	account := &Account{}
	err := transfer.Unmarshal(payload, account)
	if nil != err {
		return nil, err
	}
	return account, nil
}

// Merge - combine a batch of peer-reported accounts into one canonical record
//
// the counters are continuous quantities so each of the three fields
// is merged independently by median, which holds against a minority
// of stale or dishonest peers without requiring exact agreement;
// reports that fail to decode or declare a node other than fromGroup
// are skipped
//
// unlike the holder merge there is no minimum quorum: one valid
// report is enough (the median of one value is that value); only a
// batch with no valid report at all yields no result, never a
// silently zeroed record
func Merge(fromGroup nameid.Name, reports [][]byte) (*Account, bool) {

	storedTotalSize := make([]uint64, 0, len(reports))
	lostTotalSize := make([]uint64, 0, len(reports))
	offeredSpace := make([]uint64, 0, len(reports))

	for _, payload := range reports {
		account, err := DecodeAccount(payload)
		if nil != err {
			continue
		}
		if fromGroup != account.Node {
			continue
		}
		storedTotalSize = append(storedTotalSize, account.Value.StoredTotalSize)
		lostTotalSize = append(lostTotalSize, account.Value.LostTotalSize)
		offeredSpace = append(offeredSpace, account.Value.OfferedSpace)
	}

	if 0 == len(storedTotalSize) {
		return nil, false
	}

	value := NewValue(
		util.Median(storedTotalSize),
		util.Median(lostTotalSize),
		util.Median(offeredSpace),
	)
	return NewAccount(fromGroup, value), true
}
