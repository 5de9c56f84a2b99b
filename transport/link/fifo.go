// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link

// fifo is a fixed-size circular byte buffer. One slot stays empty to tell
// full from empty. Not safe for concurrent use.
type fifo struct {
	buf   []byte
	read  int
	write int
}

func newFifo(capacity int) *fifo {
	return &fifo{buf: make([]byte, capacity+1)}
}

// put appends as much of data as fits and returns the count.
func (f *fifo) put(data []byte) int {
	n := 0
	for _, b := range data {
		next := (f.write + 1) % len(f.buf)
		if next == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = next
		n++
	}
	return n
}

func (f *fifo) get(data []byte) int {
	n := 0
	for i := range data {
		if f.read == f.write {
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % len(f.buf)
		n++
	}
	return n
}

func (f *fifo) len() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}
