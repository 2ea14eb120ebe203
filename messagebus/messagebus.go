// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"reflect"
	"strconv"
)

// Message - message to put into a queue
type Message struct {
	Command    string   // type of the message
	Parameters [][]byte // message data
}

// Queue - a 1:1 queue
type Queue struct {
	c    chan Message
	size int
}

// the instance of the busses
//
// the size tag sets the buffering capacity of each queue
var Bus struct {
	Transfer  *Queue `size:"1000"` // refresh and fetch actions for the transport layer
	TestQueue *Queue `size:"50"`   // for testing use
}

// initialise all queues with the sizes from the tags
func init() {

	busValue := reflect.ValueOf(&Bus).Elem()
	busType := busValue.Type()

	for i := 0; i < busType.NumField(); i += 1 {

		fieldInfo := busType.Field(i)
		sizeTag := fieldInfo.Tag.Get("size")

		queueSize, err := strconv.Atoi(sizeTag)
		if nil != err || queueSize <= 0 {
			m := fieldInfo.Name + " has invalid size: \"" + sizeTag + "\""
			panic(m)
		}

		q := &Queue{
			c:    make(chan Message, queueSize),
			size: queueSize,
		}
		busValue.Field(i).Set(reflect.ValueOf(q))
	}
}

// Send - send a message to a 1:1 queue
// blocks if the queue is full
func (queue *Queue) Send(command string, parameters ...[]byte) {
	queue.c <- Message{
		Command:    command,
		Parameters: parameters,
	}
}

// Chan - channel to read from a 1:1 queue
func (queue *Queue) Chan() <-chan Message {
	return queue.c
}

// Length - number of messages waiting in the queue
func (queue *Queue) Length() int {
	return len(queue.c)
}

// Release - discard all pending messages in the queue
func (queue *Queue) Release() {
loop:
	for {
		select {
		case <-queue.c:
		default:
			break loop
		}
	}
}
