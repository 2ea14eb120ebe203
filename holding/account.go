// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package holding

import (
	"github.com/bitmark-inc/vaultd/nameid"
	"github.com/bitmark-inc/vaultd/transfer"
)

// Account - the record of which nodes hold a replica of one content item
//
// this is the unit exchanged between group members when the group churns
type Account struct {
	Key     nameid.Name   `cbor:"key"`
	Holders []nameid.Name `cbor:"holders"`

	// received wire form, reused verbatim when re-broadcasting
	preserialised []byte
}

// the account must satisfy the transfer contract
var _ transfer.Refreshable = (*Account)(nil)

// NewAccount - create an account for a content item
func NewAccount(key nameid.Name, holders []nameid.Name) *Account {
	return &Account{
		Key:     key,
		Holders: copyNames(holders),
	}
}

// Name - the content item this account belongs to
func (account *Account) Name() nameid.Name {
	return account.Key
}

// SerialisedContents - the wire form of the account
//
// returns the cached bytes the account was decoded from when present,
// otherwise encodes; an encoding failure yields an empty payload
func (account *Account) SerialisedContents() []byte {
	if nil != account.preserialised {
		return account.preserialised
	}
	payload, err := transfer.Marshal(account)
	if nil != err {
		return []byte{}
	}
	return payload
}

// DecodeAccount - decode a transferred payload
//
// the payload bytes are retained so identical state sent onwards to
// multiple peers is not re-encoded
func DecodeAccount(payload []byte) (*Account, error) {
	account := &Account{}
	err := transfer.Unmarshal(payload, account)
	if nil != err {
		return nil, err
	}
	account.preserialised = payload
	return account, nil
}

// Merge - combine a batch of peer-reported accounts into one canonical record
//
// holder membership is categorical so the rule is strict majority
// agreement on the exact holder set: reports that fail to decode or
// declare a key other than fromGroup are skipped; the remaining
// reports are bucketed by holder set and the first set to reach the
// highest occurrence count wins, provided that count reaches the
// quorum of (groupSize + 1) / 2
//
// returns no result when the batch is empty, entirely invalid or
// short of quorum; a caller must then leave its prior state untouched
func Merge(fromGroup nameid.Name, reports [][]byte, groupSize uint64) (*Account, bool) {

	if 0 == groupSize {
		return nil, false
	}

	type tally struct {
		holders []nameid.Name
		count   uint64
	}
	stats := make([]tally, 0, len(reports))

scan:
	for _, payload := range reports {
		account, err := DecodeAccount(payload)
		if nil != err {
			continue scan
		}
		if fromGroup != account.Key {
			continue scan
		}
		for i, s := range stats {
			if namesEqual(s.holders, account.Holders) {
				stats[i].count += 1
				continue scan
			}
		}
		stats = append(stats, tally{
			holders: account.Holders,
			count:   1,
		})
	}

	if 0 == len(stats) {
		return nil, false
	}

	// first bucket to reach the maximum wins a tie
	best := stats[0]
	for _, s := range stats[1:] {
		if s.count > best.count {
			best = s
		}
	}

	if best.count >= (groupSize+1)/2 {
		return NewAccount(fromGroup, best.holders), true
	}
	return nil, false
}

// order-sensitive holder set equality
func namesEqual(a []nameid.Name, b []nameid.Name) bool {
	if len(a) != len(b) {
		return false
	}
	for i, n := range a {
		if n != b[i] {
			return false
		}
	}
	return true
}

func copyNames(names []nameid.Name) []nameid.Name {
	duplicate := make([]nameid.Name, len(names))
	copy(duplicate, names)
	return duplicate
}
