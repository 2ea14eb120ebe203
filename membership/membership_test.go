// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package membership_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/fault"
	"github.com/bitmark-inc/vaultd/fixtures"
	"github.com/bitmark-inc/vaultd/membership"
	"github.com/bitmark-inc/vaultd/nameid"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestMembership(t *testing.T) {
	err := membership.Initialise()
	assert.Nil(t, err, "wrong initialise error")
	defer membership.Finalise()

	err = membership.Initialise()
	assert.Equal(t, fault.ErrAlreadyInitialised, err, "second initialise must fail")

	groupOne := []nameid.Name{nameid.Random(), nameid.Random(), nameid.Random()}
	groupTwo := append([]nameid.Name{}, groupOne[:2]...)

	// first announcement is a churn
	membership.Set(groupOne)
	assert.Equal(t, groupOne, membership.Current(), "wrong current group")
	assert.True(t, membership.IsMember(groupOne[0]), "member not recognised")
	assert.False(t, membership.IsMember(nameid.Random()), "stranger recognised as member")

	select {
	case event := <-membership.ChurnChan():
		assert.Equal(t, groupOne, event, "wrong churn event")
	default:
		t.Fatal("missing churn event")
	}

	// re-announcing the same group is not a churn
	membership.Set(groupOne)
	select {
	case <-membership.ChurnChan():
		t.Fatal("unchanged group must not emit a churn event")
	default:
	}

	// a shrunken group is a churn and the old group is retained
	membership.Set(groupTwo)
	assert.Equal(t, groupTwo, membership.Current(), "wrong current group")
	assert.Equal(t, groupOne, membership.Previous(), "wrong previous group")

	select {
	case event := <-membership.ChurnChan():
		assert.Equal(t, groupTwo, event, "wrong churn event")
	default:
		t.Fatal("missing churn event")
	}
}

func TestFinaliseWithoutInitialise(t *testing.T) {
	err := membership.Finalise()
	assert.Equal(t, fault.ErrNotInitialised, err, "wrong error")
}
