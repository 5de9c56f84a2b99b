// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package params is the parameter registry exposed over the servo link.
//
// Parameters are typed views over caller-owned storage. A Database maps
// small integer ids to type-erased Handles; ByIDAs performs the checked
// down-cast back to a concrete *Parameter[T].
package params

import (
	"fmt"
	"log/slog"
	"sync"
)

// Database is a fixed-capacity, append-only parameter registry.
// Registration normally happens once at startup; lookups are safe for
// concurrent use afterwards.
type Database struct {
	mu       sync.RWMutex
	capacity int
	entries  []Handle
}

// NewDatabase creates an empty database holding at most capacity parameters.
func NewDatabase(capacity int) *Database {
	if capacity < 0 {
		capacity = 0
	}
	return &Database{
		capacity: capacity,
		entries:  make([]Handle, 0, capacity),
	}
}

// Register appends h. A nil handle, a full database or a duplicate id
// panics: all three mean the parameter set was wired wrong.
func (db *Database) Register(h Handle) {
	if h == nil || h.isNil() {
		panic(ErrNilParameter)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if len(db.entries) >= db.capacity {
		panic(fmt.Errorf("%w: capacity %d, registering id %d", ErrCapacityExceeded, db.capacity, h.ID()))
	}
	for _, e := range db.entries {
		if e.ID() == h.ID() {
			panic(fmt.Errorf("%w: %d (%q and %q)", ErrDuplicateID, h.ID(), e.MetaData().Name, h.MetaData().Name))
		}
	}
	db.entries = append(db.entries, h)

	meta := h.MetaData()
	slog.Debug("Registered parameter", "id", meta.ID, "name", meta.Name, "type", meta.Type, "access", meta.Access)
}

// ByID finds a parameter by linear scan.
func (db *Database) ByID(id ParameterID) (Handle, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, e := range db.entries {
		if e.ID() == id {
			return e, true
		}
	}
	return nil, false
}

// ByIndex returns the parameter registered at position index.
func (db *Database) ByIndex(index int) (Handle, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index < 0 || index >= len(db.entries) {
		return nil, false
	}
	return db.entries[index], true
}

// Len is the number of registered parameters.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

func (db *Database) Cap() int {
	return db.capacity
}

// Parameters returns the handles in registration order.
func (db *Database) Parameters() []Handle {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]Handle(nil), db.entries...)
}

// IDs returns the registered ids in registration order.
func (db *Database) IDs() []ParameterID {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := make([]ParameterID, len(db.entries))
	for i, e := range db.entries {
		ids[i] = e.ID()
	}
	return ids
}

// ByIDAs returns the parameter with id if its type is T.
func ByIDAs[T Scalar](db *Database, id ParameterID) (*Parameter[T], bool) {
	h, ok := db.ByID(id)
	if !ok {
		return nil, false
	}
	return As[T](h)
}

// ByIndexAs returns the parameter at index if its type is T.
func ByIndexAs[T Scalar](db *Database, index int) (*Parameter[T], bool) {
	h, ok := db.ByIndex(index)
	if !ok {
		return nil, false
	}
	return As[T](h)
}

// As down-casts h after checking its type tag.
func As[T Scalar](h Handle) (*Parameter[T], bool) {
	if h == nil || h.Type() != TypeOf[T]() {
		return nil, false
	}
	p, ok := h.(*Parameter[T])
	return p, ok
}
