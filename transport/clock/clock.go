// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package clock provides transport.Clock implementations.
package clock

import (
	"sync/atomic"
	"time"
)

var processStart = time.Now()

// Uptime measures time since the process started using the monotonic clock.
type Uptime struct{}

func (Uptime) UptimeMicroseconds() uint64 { return uint64(time.Since(processStart).Microseconds()) }
func (Uptime) UptimeMilliseconds() uint64 { return uint64(time.Since(processStart).Milliseconds()) }
func (Uptime) UptimeSeconds() uint64      { return uint64(time.Since(processStart) / time.Second) }

// Manual only moves when told to. Safe for concurrent use.
type Manual struct {
	us atomic.Uint64
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.us.Add(uint64(d.Microseconds()))
}

func (m *Manual) UptimeMicroseconds() uint64 { return m.us.Load() }
func (m *Manual) UptimeMilliseconds() uint64 { return m.us.Load() / 1000 }
func (m *Manual) UptimeSeconds() uint64      { return m.us.Load() / 1_000_000 }
