// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package vault - the storage-node account coordinator
//
// Owns the two account stores and connects them to the rest of the
// node: inbound storage, delete, transfer and refresh-merge requests
// are dispatched to the right store, and a background process watches
// for membership churn, drains both stores and hands the resulting
// refresh and fetch actions to the transport layer via the message
// bus.
package vault

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vaultd/background"
	"github.com/bitmark-inc/vaultd/counter"
	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/holding"
	"github.com/bitmark-inc/vaultd/membership"
	"github.com/bitmark-inc/vaultd/messagebus"
	"github.com/bitmark-inc/vaultd/nameid"
	"github.com/bitmark-inc/vaultd/transfer"
	"github.com/bitmark-inc/vaultd/usage"
)

// Configuration - the vault settings from the configuration file
type Configuration struct {
	GroupSize         int    `gluamapper:"group_size" json:"group_size"`
	ReplicationFactor int    `gluamapper:"replication_factor" json:"replication_factor"`
	DefaultSpace      uint64 `gluamapper:"default_offered_space" json:"default_offered_space"`
}

// globals for this module
var globalData struct {
	sync.RWMutex
	log       *logger.L
	holdings  *holding.Store
	usages    *usage.Store
	groupSize uint64

	// churn statistics
	churnCycles   counter.Counter
	refreshesSent counter.Counter
	fetchesSent   counter.Counter

	// for backgrounds
	background *background.T

	// set once during initialise
	initialised bool
}

// Initialise - start up the vault
func Initialise(configuration *Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	if configuration.GroupSize <= 0 {
		return fault.ErrInvalidGroupSize
	}
	if configuration.ReplicationFactor <= 0 {
		return fault.ErrInvalidReplicationFactor
	}

	globalData.log = logger.New("vault")
	globalData.log.Info("starting…")

	globalData.holdings = holding.NewStore(configuration.ReplicationFactor)
	globalData.usages = usage.NewStore(configuration.DefaultSpace)
	globalData.groupSize = uint64(configuration.GroupSize)

	// all data initialised
	globalData.initialised = true

	// start background processes
	globalData.log.Info("start background…")

	processes := background.Processes{
		&churnWatcher{
			log: logger.New("churn"),
		},
	}

	globalData.background = background.Start(processes, nil)

	return nil
}

// Finalise - shut down the vault
func Finalise() error {

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// stop background
	globalData.background.Stop()

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// StoreData - record the initial holder set for a newly stored item
func StoreData(key nameid.Name, holders []nameid.Name) {
	globalData.holdings.SetHolders(key, holders)
}

// DataExists - check if a content item is tracked
func DataExists(key nameid.Name) bool {
	return globalData.holdings.Exists(key)
}

// AddHolder - a node gained a replica of an item
func AddHolder(key nameid.Name, node nameid.Name) {
	globalData.holdings.AddHolder(key, node)
}

// RemoveHolder - a node lost or gave up a replica of an item
func RemoveHolder(key nameid.Name, node nameid.Name) {
	globalData.holdings.RemoveHolder(key, node)
}

// GetHolders - the current holder set of an item
func GetHolders(key nameid.Name) []nameid.Name {
	return globalData.holdings.GetHolders(key)
}

// PreChurnHolders - the holder set before the last churn, for repair
// decisions that were already in flight
func PreChurnHolders(key nameid.Name) ([]nameid.Name, bool) {
	return globalData.holdings.PreChurnHolders(key)
}

// PutData - account for data stored on a node
func PutData(node nameid.Name, size uint64) bool {
	return globalData.usages.PutData(node, size)
}

// DeleteData - account for data removed from a node
func DeleteData(node nameid.Name, size uint64) {
	globalData.usages.DeleteData(node, size)
}

// HandleLoss - account for data a node is known to have dropped
func HandleLoss(node nameid.Name, size uint64) {
	globalData.usages.HandleLoss(node, size)
}

// SetCapacity - record the space a node has offered
func SetCapacity(node nameid.Name, offeredSpace uint64) {
	globalData.usages.SetCapacity(node, offeredSpace)
}

// GetUsage - a copy of a node's usage counters
func GetUsage(node nameid.Name) (usage.Value, bool) {
	return globalData.usages.GetValue(node)
}

// HandleTransfer - apply an inbound account transfer payload
//
// the tag routes the payload to the right store; a payload that does
// not decode is dropped with no state change and no error upward
func HandleTransfer(tag transfer.Tag, payload []byte) {
	log := globalData.log

	switch tag {

	case transfer.HolderAccountTag:
		account, err := holding.DecodeAccount(payload)
		if nil != err {
			log.Debugf("dropping holder transfer: %s", err)
			return
		}
		globalData.holdings.HandleTransfer(account)

	case transfer.UsageAccountTag:
		account, err := usage.DecodeAccount(payload)
		if nil != err {
			log.Debugf("dropping usage transfer: %s", err)
			return
		}
		globalData.usages.HandleTransfer(account)

	default:
		log.Debugf("dropping transfer with unknown tag: %d", tag)
	}
}

// MergeHolderReports - reconcile a batch of peer holder reports
//
// on quorum the merged account overwrites the local entry; short of
// quorum the prior local state is left untouched
func MergeHolderReports(fromGroup nameid.Name, reports [][]byte) bool {
	merged, ok := holding.Merge(fromGroup, reports, globalData.groupSize)
	if !ok {
		globalData.log.Warnf("holder merge for %v failed: %s", fromGroup, fault.ErrQuorumNotReached)
		return false
	}
	globalData.holdings.HandleTransfer(merged)
	return true
}

// MergeUsageReports - reconcile a batch of peer usage reports
//
// any single valid report is enough; with none the prior local state
// is left untouched
func MergeUsageReports(fromGroup nameid.Name, reports [][]byte) bool {
	merged, ok := usage.Merge(fromGroup, reports)
	if !ok {
		globalData.log.Warnf("usage merge for %v: no usable report", fromGroup)
		return false
	}
	globalData.usages.HandleTransfer(merged)
	return true
}

// HandleChurn - redistribute all account state for a new group
//
// drains both stores and hands every resulting action to the
// transport layer; normally driven by the churn watcher, exposed so
// the churn can also be applied synchronously
func HandleChurn(group []nameid.Name) {

	actions := globalData.holdings.DrainForChurn(group)
	actions = append(actions, globalData.usages.DrainForChurn(group)...)

	refreshes := 0
	fetches := 0
	for _, action := range actions {
		switch action.(type) {
		case transfer.Refresh:
			refreshes += 1
			globalData.refreshesSent.Increment()
		case transfer.Fetch:
			fetches += 1
			globalData.fetchesSent.Increment()
		}
		messagebus.Bus.Transfer.Send(action.MessageCommand(), action.MessageParameters()...)
	}

	cycle := globalData.churnCycles.Increment()
	globalData.log.Infof("churn %d: %d refreshes, %d fetches", cycle, refreshes, fetches)
}

// Stats - totals since start up: churn cycles, refreshes sent, fetches sent
func Stats() (uint64, uint64, uint64) {
	return globalData.churnCycles.Uint64(),
		globalData.refreshesSent.Uint64(),
		globalData.fetchesSent.Uint64()
}

// the background process watching for membership churn
type churnWatcher struct {
	log *logger.L
}

// Run - wait for churn events until shutdown
func (watcher *churnWatcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := watcher.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case group := <-membership.ChurnChan():
			log.Infof("churn event: group size %d", len(group))
			HandleChurn(group)
		}
	}

	log.Info("finished")
}
