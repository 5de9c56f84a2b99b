// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import "sync/atomic"

// CommunicationStatistics is a snapshot of a handler's counters.
type CommunicationStatistics struct {
	TotalPacketsReceived     uint64
	CorruptedPacketsReceived uint64
	ValidPacketsReceived     uint64
	TimedOutPackets          uint64
}

// Counters are the live, monotonic counters owned by one handler. Only the
// owning handler increments them; Snapshot may be called from anywhere.
type Counters struct {
	total     atomic.Uint64
	corrupted atomic.Uint64
	valid     atomic.Uint64
	timedOut  atomic.Uint64
}

func (c *Counters) IncTotal()     { c.total.Add(1) }
func (c *Counters) IncCorrupted() { c.corrupted.Add(1) }
func (c *Counters) IncValid()     { c.valid.Add(1) }
func (c *Counters) IncTimedOut()  { c.timedOut.Add(1) }

func (c *Counters) Snapshot() CommunicationStatistics {
	return CommunicationStatistics{
		TotalPacketsReceived:     c.total.Load(),
		CorruptedPacketsReceived: c.corrupted.Load(),
		ValidPacketsReceived:     c.valid.Load(),
		TimedOutPackets:          c.timedOut.Load(),
	}
}
