// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package membership - the close group this node belongs to
//
// The routing layer announces the current group membership here; a
// change of membership is a churn and is signalled on a channel so
// the vault can redistribute its account state.  The previous group is
// retained for decisions that were in flight when the churn happened.
package membership

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/nameid"
)

// internal constants
const (
	churnQueueSize = 16
)

// globals for this module
var globalData struct {
	sync.RWMutex
	log      *logger.L
	nodes    []nameid.Name
	previous []nameid.Name
	churn    chan []nameid.Name

	// set once during initialise
	initialised bool
}

// Initialise - start up the membership tracker
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("membership")
	globalData.log.Info("starting…")

	globalData.nodes = nil
	globalData.previous = nil
	globalData.churn = make(chan []nameid.Name, churnQueueSize)

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - shut down the membership tracker
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("finished")
	globalData.log.Flush()

	globalData.initialised = false

	return nil
}

// Set - record the group membership announced by the routing layer
//
// a change from the current membership is a churn: the old group is
// retained as the previous group and the new group is queued as a
// churn event; announcing an unchanged group does nothing
func Set(group []nameid.Name) {
	globalData.Lock()

	if groupsEqual(globalData.nodes, group) {
		globalData.Unlock()
		return
	}

	globalData.previous = globalData.nodes
	globalData.nodes = copyNames(group)
	event := copyNames(group)
	globalData.log.Infof("churn: group size %d to %d", len(globalData.previous), len(group))

	globalData.Unlock()

	select {
	case globalData.churn <- event:
	default:
		globalData.log.Warn("churn event queue full: event dropped")
	}
}

// Current - a copy of the current group membership
func Current() []nameid.Name {
	globalData.RLock()
	defer globalData.RUnlock()

	return copyNames(globalData.nodes)
}

// Previous - a copy of the group membership before the last churn
func Previous() []nameid.Name {
	globalData.RLock()
	defer globalData.RUnlock()

	return copyNames(globalData.previous)
}

// IsMember - check if a node is in the current group
func IsMember(node nameid.Name) bool {
	globalData.RLock()
	defer globalData.RUnlock()

	for _, n := range globalData.nodes {
		if node == n {
			return true
		}
	}
	return false
}

// ChurnChan - channel delivering the new group after each membership change
func ChurnChan() <-chan []nameid.Name {
	globalData.RLock()
	defer globalData.RUnlock()

	return globalData.churn
}

func groupsEqual(a []nameid.Name, b []nameid.Name) bool {
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
