// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func requirePanicIs(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, target), "panic %v does not wrap %v", err, target)
	}()
	fn()
}

func TestDatabase_RegisterAndLookup(t *testing.T) {
	var speed float32 = 3.1415
	var mode uint8 = 2
	db := NewDatabase(4)

	pSpeed := New(5, "Test Float", ReadOnly, Var(&speed))
	pMode := New(9, "Mode", ReadWrite, Var(&mode))

	for i, p := range []Handle{pSpeed, pMode} {
		before := db.Len()
		db.Register(p)
		require.Equal(t, before+1, db.Len(), "registration %d", i)
		require.LessOrEqual(t, db.Len(), db.Cap())
	}

	h, ok := db.ByID(5)
	require.True(t, ok)
	require.Same(t, pSpeed, h)

	again, ok := db.ByID(5)
	require.True(t, ok)
	require.Same(t, h, again)

	_, ok = db.ByID(6)
	require.False(t, ok)

	h, ok = db.ByIndex(1)
	require.True(t, ok)
	require.Equal(t, ParameterID(9), h.ID())
	_, ok = db.ByIndex(2)
	require.False(t, ok)
	_, ok = db.ByIndex(-1)
	require.False(t, ok)

	require.Equal(t, []ParameterID{5, 9}, db.IDs())
	require.Len(t, db.Parameters(), 2)
}

func TestDatabase_DuplicateID(t *testing.T) {
	var a, b int16
	db := NewDatabase(4)
	db.Register(New(3, "A", ReadWrite, Var(&a)))

	requirePanicIs(t, ErrDuplicateID, func() {
		db.Register(New(3, "B", ReadWrite, Var(&b)))
	})
	require.Equal(t, 1, db.Len())
}

func TestDatabase_CapacityExceeded(t *testing.T) {
	var a, b bool
	db := NewDatabase(1)
	db.Register(New(1, "A", ReadWrite, Var(&a)))

	requirePanicIs(t, ErrCapacityExceeded, func() {
		db.Register(New(2, "B", ReadWrite, Var(&b)))
	})
	require.Equal(t, 1, db.Len())
}

func TestDatabase_NilParameter(t *testing.T) {
	db := NewDatabase(1)
	requirePanicIs(t, ErrNilParameter, func() { db.Register(nil) })

	var typedNil *Parameter[uint8]
	requirePanicIs(t, ErrNilParameter, func() { db.Register(typedNil) })
}

func TestByIDAs(t *testing.T) {
	var speed float32 = 1.5
	db := NewDatabase(2)
	db.Register(New(5, "Speed", ReadWrite, Var(&speed)))

	p, ok := ByIDAs[float32](db, 5)
	require.True(t, ok)
	require.Equal(t, float32(1.5), p.Value())

	_, ok = ByIDAs[float64](db, 5)
	require.False(t, ok, "type mismatch must not down-cast")

	_, ok = ByIDAs[float32](db, 6)
	require.False(t, ok)

	q, ok := ByIndexAs[float32](db, 0)
	require.True(t, ok)
	require.Same(t, p, q)
}

func TestNew_ConfigurationErrors(t *testing.T) {
	var v uint8
	requirePanicIs(t, ErrNilStore, func() { New[uint8](1, "x", ReadOnly, nil) })

	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	requirePanicIs(t, ErrNameTooLong, func() { New(1, string(long), ReadOnly, Var(&v)) })

	require.NotPanics(t, func() { New(1, string(long[:MaxNameLength]), ReadOnly, Var(&v)) })
}
