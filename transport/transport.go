// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"time"

	"github.com/ffutop/servocomm/protocol"
)

// Link is a point-to-point byte stream between one master and one slave.
// Received bytes are buffered by the implementation; the protocol handlers
// poll Available and pull one byte at a time.
//
// A Link is used by exactly one handler goroutine.
type Link interface {
	TransmitByte(b byte) error
	TransmitBytes(p []byte) error
	// Available reports how many received bytes can be read without blocking.
	Available() int
	// ReadByte returns the next received byte. It must only be called when
	// Available reports at least one byte.
	ReadByte() (byte, error)
	// Read copies up to len(p) buffered bytes into p without blocking.
	Read(p []byte) (int, error)
}

// Clock reports monotonic uptime, zero at program start.
type Clock interface {
	UptimeMicroseconds() uint64
	UptimeMilliseconds() uint64
	UptimeSeconds() uint64
}

// OperationHandler serves one operation code on the slave. The payload
// aliases the receive buffer and is only valid for the duration of the call.
type OperationHandler func(payload []byte) protocol.ResponseData

// Timeout tracks one exchange against a fixed limit.
type Timeout struct {
	Clock Clock
	Limit time.Duration
	// Disabled turns Expired into a constant false, for links with
	// inherent flow control.
	Disabled bool

	start uint64
}

// Start samples the clock as the beginning of the exchange.
func (t *Timeout) Start() {
	t.start = t.Clock.UptimeMilliseconds()
}

// Expired reports whether strictly more than Limit has elapsed since Start.
func (t *Timeout) Expired() bool {
	if t.Disabled {
		return false
	}
	return t.Elapsed() > uint64(t.Limit.Milliseconds())
}

// Elapsed returns the milliseconds since Start.
func (t *Timeout) Elapsed() uint64 {
	return t.Clock.UptimeMilliseconds() - t.start
}
