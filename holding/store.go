// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package holding - which nodes hold a replica of each content item
//
// The authoritative local table from content key to its holder
// account.  On a churn the whole table is snapshotted, repair fetches
// are issued for under-replicated items, every account is re-published
// as a refresh and the table is cleared; state is then rebuilt as the
// other group members' refreshes arrive and are merged.
package holding

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/vaultd/nameid"
	"github.com/bitmark-inc/vaultd/transfer"
)

// internal constants
const (
	storeCapacity = 10000

	// how long the pre-churn snapshot stays consultable; in-flight
	// repair decisions reference it until superseded by refresh data
	churnScratchExpiry = 5 * time.Minute
)

// Store - the holder-tracking table
type Store struct {
	sync.RWMutex
	log      *logger.L
	storage  map[nameid.Name][]nameid.Name
	replicas int // full replication factor

	// churn scratch state
	previousGroup []nameid.Name
	churnScratch  *cache.Cache
}

// NewStore - create an empty holder-tracking store
//
// replicas is the full replication factor: accounts holding fewer
// trigger repair fetches during a churn drain
func NewStore(replicas int) *Store {
	return &Store{
		log:          logger.New("holding"),
		storage:      make(map[nameid.Name][]nameid.Name, storeCapacity),
		replicas:     replicas,
		churnScratch: cache.New(churnScratchExpiry, 2*churnScratchExpiry),
	}
}

// Exists - check if a content item has an account
func (store *Store) Exists(key nameid.Name) bool {
	store.RLock()
	defer store.RUnlock()

	_, ok := store.storage[key]
	return ok
}

// SetHolders - record the initial holder set for a content item
//
// first writer wins: an existing account is left untouched
func (store *Store) SetHolders(key nameid.Name, holders []nameid.Name) {
	store.Lock()
	defer store.Unlock()

	if _, ok := store.storage[key]; ok {
		return
	}
	store.storage[key] = copyNames(holders)
}

// AddHolder - append one holder to an account
//
// creates the account when absent; adding a node already present is a no-op
func (store *Store) AddHolder(key nameid.Name, node nameid.Name) {
	store.Lock()
	defer store.Unlock()

	holders, ok := store.storage[key]
	if !ok {
		store.storage[key] = []nameid.Name{node}
		return
	}
	for _, n := range holders {
		if node == n {
			return
		}
	}
	store.storage[key] = append(holders, node)
}

// RemoveHolder - remove the first occurrence of a holder from an account
//
// silently does nothing when the key or the node is absent
func (store *Store) RemoveHolder(key nameid.Name, node nameid.Name) {
	store.Lock()
	defer store.Unlock()

	holders, ok := store.storage[key]
	if !ok {
		return
	}
	for i, n := range holders {
		if node == n {
			store.storage[key] = append(holders[:i], holders[i+1:]...)
			return
		}
	}
}

// GetHolders - a copy of the current holder set, empty when absent
func (store *Store) GetHolders(key nameid.Name) []nameid.Name {
	store.RLock()
	defer store.RUnlock()

	holders, ok := store.storage[key]
	if !ok {
		return []nameid.Name{}
	}
	return copyNames(holders)
}

// HandleTransfer - apply an already-merged or authoritative account
//
// unconditionally overwrites the local entry
func (store *Store) HandleTransfer(account *Account) {
	store.Lock()
	defer store.Unlock()

	store.storage[account.Key] = copyNames(account.Holders)
	store.log.Infof("updated account %v to %v", account.Key, account.Holders)
}

// DrainForChurn - redistribute all state after a group change
//
// snapshots the table into the churn scratch, emits a repair fetch per
// remaining holder for every under-replicated item, emits one refresh
// per item addressed to the item's owning group, then clears the
// table; closeGroup is retained as the pre-churn group view
func (store *Store) DrainForChurn(closeGroup []nameid.Name) []transfer.Action {
	store.Lock()
	defer store.Unlock()

	store.previousGroup = copyNames(closeGroup)

	actions := make([]transfer.Action, 0, len(store.storage))

	for key, holders := range store.storage {

		store.churnScratch.Set(key.String(), copyNames(holders), cache.DefaultExpiration)

		if len(holders) < store.replicas {
			for _, node := range holders {
				store.log.Infof("churn: fetch %v from holder %v", key, node)
				actions = append(actions, transfer.Fetch{
					Node:     node,
					Key:      key,
					DataType: transfer.NormalData,
				})
			}
		}

		account := NewAccount(key, holders)
		payload := account.SerialisedContents()
		if 0 == len(payload) {
			continue
		}
		store.log.Debugf("churn: refresh for account %v", key)
		actions = append(actions, transfer.Refresh{
			Tag:       transfer.HolderAccountTag,
			Authority: key,
			Payload:   payload,
		})
	}

	store.storage = make(map[nameid.Name][]nameid.Name, storeCapacity)
	store.log.Debugf("churn: storage cleared, actions: %d", len(actions))

	return actions
}

// PreChurnHolders - the holder set an item had when the last churn
// drain ran, for repair decisions begun before the churn
func (store *Store) PreChurnHolders(key nameid.Name) ([]nameid.Name, bool) {
	item, ok := store.churnScratch.Get(key.String())
	if !ok {
		return nil, false
	}
	holders, ok := item.([]nameid.Name)
	if !ok {
		return nil, false
	}
	return copyNames(holders), true
}

// PreviousGroup - the close group recorded by the last churn drain
func (store *Store) PreviousGroup() []nameid.Name {
	store.RLock()
	defer store.RUnlock()

	return copyNames(store.previousGroup)
}
