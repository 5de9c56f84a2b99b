// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link

import (
	"net"
	"sync"
)

// Mem is an in-memory link end. Bytes transmitted on one end of a Pipe are
// available on the other end as soon as TransmitBytes returns. Safe for
// concurrent use.
type Mem struct {
	mu    sync.Mutex
	rx    *fifo
	sent  []byte
	txErr error
	peer  *Mem
}

func NewMem() *Mem {
	return &Mem{rx: newFifo(4 * DefaultBufferSize)}
}

// Pipe returns two connected ends.
func Pipe() (*Mem, *Mem) {
	a, b := NewMem(), NewMem()
	a.peer, b.peer = b, a
	return a, b
}

// Inject makes p available for reading, as if it had arrived on the wire.
func (m *Mem) Inject(p []byte) {
	m.mu.Lock()
	m.rx.put(p)
	m.mu.Unlock()
}

// Sent returns a copy of everything transmitted so far.
func (m *Mem) Sent() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.sent...)
}

func (m *Mem) ResetSent() {
	m.mu.Lock()
	m.sent = m.sent[:0]
	m.mu.Unlock()
}

// FailTransmit makes subsequent transmits return err. nil restores them.
func (m *Mem) FailTransmit(err error) {
	m.mu.Lock()
	m.txErr = err
	m.mu.Unlock()
}

func (m *Mem) TransmitByte(b byte) error {
	return m.TransmitBytes([]byte{b})
}

func (m *Mem) TransmitBytes(p []byte) error {
	m.mu.Lock()
	if m.txErr != nil {
		err := m.txErr
		m.mu.Unlock()
		return err
	}
	m.sent = append(m.sent, p...)
	peer := m.peer
	m.mu.Unlock()

	if peer != nil {
		peer.Inject(p)
	}
	return nil
}

func (m *Mem) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rx.len()
}

func (m *Mem) ReadByte() (byte, error) {
	var c [1]byte
	if _, err := m.Read(c[:]); err != nil {
		return 0, err
	}
	return c[0], nil
}

func (m *Mem) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.rx.get(p); n > 0 {
		return n, nil
	}
	return 0, ErrNoData
}

// NetPipe returns two Buffered links over net.Pipe, exercising the same
// reader goroutine path as a real port.
func NetPipe() (*Buffered, *Buffered) {
	a, b := net.Pipe()
	return NewBuffered("pipe-a", a, DefaultBufferSize), NewBuffered("pipe-b", b, DefaultBufferSize)
}
