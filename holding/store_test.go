// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package holding_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/fixtures"
	"github.com/bitmark-inc/vaultd/holding"
	"github.com/bitmark-inc/vaultd/nameid"
	"github.com/bitmark-inc/vaultd/transfer"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

// helper to make a few random names
func randomNames(n int) []nameid.Name {
	names := make([]nameid.Name, n)
	for i := range names {
		names[i] = nameid.Random()
	}
	return names
}

func TestExists(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()

	assert.False(t, store.Exists(key), "absent key must not exist")
	store.SetHolders(key, randomNames(4))
	assert.True(t, store.Exists(key), "stored key must exist")
}

func TestSetHoldersFirstWriterWins(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	original := randomNames(4)
	replacement := randomNames(2)

	store.SetHolders(key, original)
	store.SetHolders(key, replacement)

	assert.Equal(t, original, store.GetHolders(key), "second set must be a no-op")
}

func TestGetHoldersAbsent(t *testing.T) {
	store := holding.NewStore(3)

	holders := store.GetHolders(nameid.Random())
	assert.Equal(t, 0, len(holders), "absent key must yield empty holders")
}

func TestGetHoldersReturnsCopy(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	original := randomNames(2)

	store.SetHolders(key, original)
	holders := store.GetHolders(key)
	holders[0] = nameid.Random()

	assert.Equal(t, original, store.GetHolders(key), "caller must not be able to mutate the store")
}

func TestAddHolderIdempotent(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	node := nameid.Random()

	// seeds an absent account
	store.AddHolder(key, node)
	assert.True(t, store.Exists(key), "add must seed an absent account")
	assert.Equal(t, []nameid.Name{node}, store.GetHolders(key), "wrong holders after seed")

	// adding the same node again changes nothing
	store.AddHolder(key, node)
	assert.Equal(t, []nameid.Name{node}, store.GetHolders(key), "add must be idempotent")

	other := nameid.Random()
	store.AddHolder(key, other)
	assert.Equal(t, []nameid.Name{node, other}, store.GetHolders(key), "wrong insertion order")
}

func TestRemoveHolder(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	holders := randomNames(4)
	store.SetHolders(key, holders)

	// absent key and absent node are no-ops
	store.RemoveHolder(nameid.Random(), holders[0])
	store.RemoveHolder(key, nameid.Random())
	assert.Equal(t, holders, store.GetHolders(key), "no-op removals must not change holders")

	store.RemoveHolder(key, holders[1])
	expected := []nameid.Name{holders[0], holders[2], holders[3]}
	assert.Equal(t, expected, store.GetHolders(key), "wrong holders after removal")
}

func TestReplaceHolders(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	oldNodes := randomNames(4)
	newNodes := randomNames(4)

	store.SetHolders(key, oldNodes)

	for i := 0; i < 4; i += 1 {
		store.RemoveHolder(key, oldNodes[i])
		store.AddHolder(key, newNodes[i])
	}

	assert.Equal(t, newNodes, store.GetHolders(key), "wrong holders after replacement")
}

func TestHandleTransferOverwrites(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	store.SetHolders(key, randomNames(4))

	store.HandleTransfer(holding.NewAccount(key, nil))
	assert.Equal(t, 0, len(store.GetHolders(key)), "transfer with empty holders must clear the entry")

	replacement := randomNames(2)
	store.HandleTransfer(holding.NewAccount(key, replacement))
	assert.Equal(t, replacement, store.GetHolders(key), "transfer must overwrite")
}

func TestDrainForChurnFullyReplicated(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	holders := randomNames(3)
	group := randomNames(5)

	store.SetHolders(key, holders)

	actions := store.DrainForChurn(group)

	// three holders meet the replication factor: no fetch, one refresh
	assert.Equal(t, 1, len(actions), "wrong action count")
	refresh, ok := actions[0].(transfer.Refresh)
	assert.True(t, ok, "action must be a refresh")
	assert.Equal(t, transfer.HolderAccountTag, refresh.Tag, "wrong tag")
	assert.Equal(t, key, refresh.Authority, "refresh must be addressed to the key's group")

	decoded, err := holding.DecodeAccount(refresh.Payload)
	assert.Nil(t, err, "wrong payload decode error")
	assert.Equal(t, holders, decoded.Holders, "wrong payload holders")

	// table is cleared, scratch state retains the pre-churn view
	assert.False(t, store.Exists(key), "table must be cleared")
	snapshot, ok := store.PreChurnHolders(key)
	assert.True(t, ok, "snapshot must be retained")
	assert.Equal(t, holders, snapshot, "wrong snapshot holders")
	assert.Equal(t, group, store.PreviousGroup(), "wrong previous group")
}

func TestDrainForChurnUnderReplicated(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	holder := nameid.Random()

	store.SetHolders(key, []nameid.Name{holder})

	actions := store.DrainForChurn(randomNames(5))

	// one holder of three wanted: one repair fetch plus the refresh
	assert.Equal(t, 2, len(actions), "wrong action count")

	fetches := 0
	refreshes := 0
	for _, action := range actions {
		switch a := action.(type) {
		case transfer.Fetch:
			fetches += 1
			assert.Equal(t, holder, a.Node, "wrong fetch node")
			assert.Equal(t, key, a.Key, "wrong fetch key")
			assert.Equal(t, transfer.NormalData, a.DataType, "wrong fetch data type")
		case transfer.Refresh:
			refreshes += 1
		}
	}
	assert.Equal(t, 1, fetches, "wrong fetch count")
	assert.Equal(t, 1, refreshes, "wrong refresh count")

	assert.False(t, store.Exists(key), "table must be cleared")
}

func TestDrainRefreshMergesBack(t *testing.T) {
	store := holding.NewStore(3)
	key := nameid.Random()
	holders := randomNames(3)
	store.SetHolders(key, holders)

	actions := store.DrainForChurn(randomNames(4))
	assert.Equal(t, 1, len(actions), "wrong action count")
	refresh := actions[0].(transfer.Refresh)

	// the refresh payload is exactly what peers merge after churn:
	// simulate this node's report reaching quorum in a group of 4
	reports := [][]byte{refresh.Payload, refresh.Payload}
	merged, ok := holding.Merge(key, reports, 4)
	assert.True(t, ok, "merge must reach quorum")

	store.HandleTransfer(merged)
	assert.Equal(t, holders, store.GetHolders(key), "state must be rebuilt from refresh merges")
}
