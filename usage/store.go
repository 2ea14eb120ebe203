// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package usage - how much storage each node has consumed
//
// The authoritative local table from storage-node identity to its
// usage account.  On a churn every account whose node is still a group
// member is re-published as a refresh addressed to that node's owning
// authority; accounts for departed nodes are dropped, and the table is
// cleared to be rebuilt from incoming refresh merges.
package usage

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vaultd/nameid"
	"github.com/bitmark-inc/vaultd/transfer"
)

// internal constants
const (
	storeCapacity = 10000
)

// Store - the usage-tracking table
type Store struct {
	sync.RWMutex
	log            *logger.L
	storage        map[nameid.Name]*Value
	defaultOffered uint64
}

// NewStore - create an empty usage-tracking store
//
// defaultOfferedSpace is the capacity assumed for a node referenced
// before it has negotiated its own offer; zero selects
// DefaultOfferedSpace
func NewStore(defaultOfferedSpace uint64) *Store {
	if 0 == defaultOfferedSpace {
		defaultOfferedSpace = DefaultOfferedSpace
	}
	return &Store{
		log:            logger.New("usage"),
		storage:        make(map[nameid.Name]*Value, storeCapacity),
		defaultOffered: defaultOfferedSpace,
	}
}

// the lazy default is an explicit two step process: look up, insert
// the defined default when absent, then hand back for mutation
// caller must hold the lock
func (store *Store) account(node nameid.Name) *Value {
	value, ok := store.storage[node]
	if !ok {
		value = &Value{
			OfferedSpace: store.defaultOffered,
		}
		store.storage[node] = value
	}
	return value
}

// Exists - check if a node has an account
func (store *Store) Exists(node nameid.Name) bool {
	store.RLock()
	defer store.RUnlock()

	_, ok := store.storage[node]
	return ok
}

// PutData - account for data stored on a node, creating a default
// account on first reference
func (store *Store) PutData(node nameid.Name, size uint64) bool {
	store.Lock()
	defer store.Unlock()

	return store.account(node).Put(size)
}

// DeleteData - account for data removed from a node
func (store *Store) DeleteData(node nameid.Name, size uint64) {
	store.Lock()
	defer store.Unlock()

	store.account(node).Delete(size)
}

// HandleLoss - account for data a node is known to have dropped
func (store *Store) HandleLoss(node nameid.Name, size uint64) {
	store.Lock()
	defer store.Unlock()

	store.account(node).HandleLoss(size)
}

// SetCapacity - record the space a node has offered
func (store *Store) SetCapacity(node nameid.Name, offeredSpace uint64) {
	store.Lock()
	defer store.Unlock()

	store.account(node).SetCapacity(offeredSpace)
}

// GetValue - a copy of a node's counters
func (store *Store) GetValue(node nameid.Name) (Value, bool) {
	store.RLock()
	defer store.RUnlock()

	value, ok := store.storage[node]
	if !ok {
		return Value{}, false
	}
	return *value, true
}

// HandleTransfer - apply an already-merged or authoritative account
//
// unconditionally overwrites the local entry
func (store *Store) HandleTransfer(account *Account) {
	store.Lock()
	defer store.Unlock()

	value := account.Value
	store.storage[account.Node] = &value
	store.log.Infof("updated account %v to %+v", account.Node, account.Value)
}

// DrainForChurn - redistribute all state after a group change
//
// emits one refresh per account whose node is still in currentGroup,
// addressed to that node's owning authority; accounts for departed
// nodes become the responsibility of nodes still in scope and are
// dropped without a refresh; the table is cleared afterwards
func (store *Store) DrainForChurn(currentGroup []nameid.Name) []transfer.Action {
	store.Lock()
	defer store.Unlock()

	actions := make([]transfer.Action, 0, len(store.storage))

scan:
	for node, value := range store.storage {

		for _, member := range currentGroup {
			if node != member {
				continue
			}

			account := NewAccount(node, *value)
			payload := account.SerialisedContents()
			if 0 == len(payload) {
				continue scan
			}
			store.log.Debugf("churn: refresh for account %v", node)
			actions = append(actions, transfer.Refresh{
				Tag:       transfer.UsageAccountTag,
				Authority: node,
				Payload:   payload,
			})
			continue scan
		}

		store.log.Debugf("churn: dropping account %v: node left the group", node)
	}

	store.storage = make(map[nameid.Name]*Value, storeCapacity)
	store.log.Debugf("churn: storage cleared, actions: %d", len(actions))

	return actions
}
