// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transfer

import (
	"github.com/bitmark-inc/vaultd/nameid"
)

// DataType - content-type marker carried by a repair fetch
type DataType byte

// data type values
const (
	NormalData DataType = iota
	BackupData
	SacrificialData
)

// Action - an outbound request produced by a store drain
//
// the transport layer reads these from the message bus; the message
// form is a command string plus binary parameters
type Action interface {
	MessageCommand() string
	MessageParameters() [][]byte
}

// Refresh - one node's view of an account, addressed to the group
// authority responsible for the record so peers can merge views
type Refresh struct {
	Tag       Tag         // which account kind the payload decodes to
	Authority nameid.Name // group or node the record belongs to
	Payload   []byte      // serialised account
}

// Fetch - a repair request asking a specific holder to re-supply a
// specific content item
type Fetch struct {
	Node     nameid.Name // holder to fetch from
	Key      nameid.Name // content item wanted
	DataType DataType
}

// MessageCommand - bus command for a refresh
func (r Refresh) MessageCommand() string {
	return "refresh-" + r.Tag.String()
}

// MessageParameters - bus parameters for a refresh
func (r Refresh) MessageParameters() [][]byte {
	return [][]byte{
		r.Authority.Bytes(),
		r.Payload,
	}
}

// MessageCommand - bus command for a repair fetch
func (f Fetch) MessageCommand() string {
	return "fetch"
}

// MessageParameters - bus parameters for a repair fetch
func (f Fetch) MessageParameters() [][]byte {
	return [][]byte{
		f.Node.Bytes(),
		f.Key.Bytes(),
		{byte(f.DataType)},
	}
}
