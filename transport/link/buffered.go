// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Buffered adapts a blocking io.ReadWriteCloser to the polled
// transport.Link contract. A reader goroutine drains the port into a ring
// buffer; the protocol handler pulls bytes out of it without blocking.
type Buffered struct {
	name string
	port io.ReadWriteCloser

	mu      sync.Mutex
	rx      *fifo
	err     error // terminal read error, reported once the buffer drains
	dropped uint64

	wmu sync.Mutex

	closing atomic.Bool
	done    chan struct{}
}

// NewBuffered starts reading port in the background. name is used in logs.
func NewBuffered(name string, port io.ReadWriteCloser, size int) *Buffered {
	if size <= 0 {
		size = DefaultBufferSize
	}
	b := &Buffered{
		name: name,
		port: port,
		rx:   newFifo(size),
		done: make(chan struct{}),
	}
	go b.readLoop()
	return b
}

func (b *Buffered) readLoop() {
	defer close(b.done)

	buf := make([]byte, 256)
	for {
		if b.closing.Load() {
			b.fail(ErrClosed)
			return
		}
		n, err := b.port.Read(buf)
		if n > 0 {
			b.mu.Lock()
			if put := b.rx.put(buf[:n]); put < n {
				b.dropped += uint64(n - put)
				slog.Warn("Link receive buffer overflow", "link", b.name, "dropped", n-put)
			}
			b.mu.Unlock()
		}
		if err == nil {
			continue
		}
		if b.closing.Load() || isTerminal(err) {
			b.fail(err)
			return
		}
		// Idle serial reads arrive as errIdle, see idlePort.
		if !isTimeout(err) {
			slog.Debug("Link read error", "link", b.name, "err", err)
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (b *Buffered) fail(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// errIdle reports a driver read that returned because the line was quiet.
var errIdle error = idleError{}

type idleError struct{}

func (idleError) Error() string   { return "link: read idle" }
func (idleError) Timeout() bool   { return true }
func (idleError) Temporary() bool { return true }

// idlePort rewrites the driver-specific "nothing arrived" read result to
// errIdle, so the reader keeps going instead of treating it as closure.
type idlePort struct {
	io.ReadWriteCloser
	idle func(n int, err error) bool
}

func (p idlePort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if err != nil && p.idle(n, err) {
		return n, errIdle
	}
	return n, err
}

func isTerminal(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrClosed)
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

func (b *Buffered) TransmitByte(c byte) error {
	return b.TransmitBytes([]byte{c})
}

func (b *Buffered) TransmitBytes(p []byte) error {
	if b.closing.Load() {
		return ErrClosed
	}
	b.wmu.Lock()
	defer b.wmu.Unlock()

	for len(p) > 0 {
		n, err := b.port.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (b *Buffered) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rx.len()
}

func (b *Buffered) ReadByte() (byte, error) {
	var c [1]byte
	if _, err := b.Read(c[:]); err != nil {
		return 0, err
	}
	return c[0], nil
}

// Read never blocks. With nothing buffered it returns the terminal read
// error if the port is gone, ErrNoData otherwise.
func (b *Buffered) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := b.rx.get(p); n > 0 {
		return n, nil
	}
	if b.err != nil {
		return 0, b.err
	}
	return 0, ErrNoData
}

// Err returns the terminal read error once the port is gone and every
// buffered byte was read, nil before that.
func (b *Buffered) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rx.len() > 0 {
		return nil
	}
	return b.err
}

// Dropped counts bytes lost to buffer overflow.
func (b *Buffered) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close closes the port and waits for the reader goroutine.
func (b *Buffered) Close() error {
	if b.closing.Swap(true) {
		return nil
	}
	err := b.port.Close()
	<-b.done
	return err
}

func (b *Buffered) String() string {
	return b.name
}
