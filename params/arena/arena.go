// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package arena provides a byte arena that parameters can use as their
// backing store instead of individual Go variables.
//
// Layout: one CellSize cell per ParameterID, at offset id*CellSize. Values
// are stored little-endian, the same encoding used on the wire.
package arena

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ffutop/servocomm/params"
)

type Arena struct {
	mu      sync.Mutex
	data    []byte
	storage Storage
}

// Open loads the storage and wraps it.
func Open(s Storage) (*Arena, error) {
	data, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(data) < Size {
		s.Close()
		return nil, fmt.Errorf("arena storage returned %d bytes, need %d", len(data), Size)
	}
	return &Arena{data: data, storage: s}, nil
}

// New opens a storage by type name: memory, file or mmap.
func New(typ, path string) (*Arena, error) {
	var s Storage
	switch strings.ToLower(typ) {
	case "", "memory":
		s = NewMemoryStorage()
	case "file":
		s = NewFileStorage(path)
	case "mmap":
		s = NewMmapStorage(path)
	default:
		return nil, fmt.Errorf("unknown arena type %q", typ)
	}
	return Open(s)
}

func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.storage.Close()
}

func (a *Arena) cell(id params.ParameterID) []byte {
	off := int(id) * CellSize
	return a.data[off : off+CellSize]
}

func (a *Arena) load(id params.ParameterID, t params.ParameterType) any {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := params.DecodeValue(t, a.cell(id)[:t.Size()])
	if err != nil {
		// Sizes are fixed per type; a failure here is a bug.
		panic(err)
	}
	return v
}

func (a *Arena) store(id params.ParameterID, b []byte) {
	a.mu.Lock()
	c := a.cell(id)
	n := copy(c, b)
	clear(c[n:])
	a.mu.Unlock()

	a.storage.OnWrite(id)
}

type slot[T params.Scalar] struct {
	a  *Arena
	id params.ParameterID
}

func (s slot[T]) Load() T {
	return s.a.load(s.id, params.TypeOf[T]()).(T)
}

func (s slot[T]) Store(v T) {
	var buf [CellSize]byte
	s.a.store(s.id, params.AppendScalar(buf[:0], v))
}

// Slot returns the store for id's cell.
func Slot[T params.Scalar](a *Arena, id params.ParameterID) params.Store[T] {
	return slot[T]{a: a, id: id}
}

// SetRaw writes an encoded value into id's cell without going through a
// Parameter, e.g. to seed the initial value of a read-only parameter.
func (a *Arena) SetRaw(id params.ParameterID, b []byte) error {
	if len(b) > CellSize {
		return fmt.Errorf("%w: %d bytes exceeds cell size", params.ErrValueSize, len(b))
	}
	a.store(id, b)
	return nil
}
