// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package params

import "fmt"

// Handle is the type-erased view of a registered parameter. Use ByIDAs or
// ValueAs/SetValueFrom to get typed access back.
type Handle interface {
	MetaData() MetaData
	ID() ParameterID
	Type() ParameterType
	IsReadable() bool
	IsWritable() bool

	// AppendValue appends the little-endian encoding of the current value.
	// Panics with ErrAccessViolation on a write-only parameter.
	AppendValue(dst []byte) []byte
	// SetValueBytes decodes b and stores it. Panics with ErrAccessViolation
	// on a read-only parameter.
	SetValueBytes(b []byte) error

	load() any
	store(v any)
	isNil() bool
}

// Parameter is a named, typed, access-controlled view over a Store.
type Parameter[T Scalar] struct {
	meta     MetaData
	backing  Store[T]
	onChange func()
}

// New creates a parameter. A nil store or a name longer than MaxNameLength
// is a wiring mistake and panics.
func New[T Scalar](id ParameterID, name string, access Access, store Store[T]) *Parameter[T] {
	if store == nil {
		panic(fmt.Errorf("%w: parameter %d", ErrNilStore, id))
	}
	if len(name) > MaxNameLength {
		panic(fmt.Errorf("%w: %q is %d bytes, max %d", ErrNameTooLong, name, len(name), MaxNameLength))
	}
	if !access.Valid() {
		panic(fmt.Errorf("%w: %d", ErrUnknownAccess, access))
	}
	return &Parameter[T]{
		meta: MetaData{
			ID:     id,
			Type:   TypeOf[T](),
			Access: access,
			Name:   name,
		},
		backing: store,
	}
}

// OnChange sets fn to run after every successful SetValue, on the caller's
// goroutine. fn must not block or touch the database.
func (p *Parameter[T]) OnChange(fn func()) *Parameter[T] {
	p.onChange = fn
	return p
}

func (p *Parameter[T]) MetaData() MetaData  { return p.meta }
func (p *Parameter[T]) ID() ParameterID     { return p.meta.ID }
func (p *Parameter[T]) Type() ParameterType { return p.meta.Type }
func (p *Parameter[T]) Name() string        { return p.meta.Name }
func (p *Parameter[T]) IsReadable() bool    { return p.meta.Access != WriteOnly }
func (p *Parameter[T]) IsWritable() bool    { return p.meta.Access != ReadOnly }
func (p *Parameter[T]) isNil() bool         { return p == nil }
func (p *Parameter[T]) load() any           { return p.Value() }
func (p *Parameter[T]) store(v any)         { p.SetValue(v.(T)) }
func (p *Parameter[T]) String() string      { return fmt.Sprintf("%d:%s(%v)", p.meta.ID, p.meta.Name, p.meta.Type) }

// Value reads the backing store. Reading a write-only parameter panics.
func (p *Parameter[T]) Value() T {
	if !p.IsReadable() {
		panic(fmt.Errorf("%w: read of %v parameter %d", ErrAccessViolation, p.meta.Access, p.meta.ID))
	}
	return p.backing.Load()
}

// SetValue writes the backing store and fires the change callback. Writing
// a read-only parameter panics.
func (p *Parameter[T]) SetValue(v T) {
	if !p.IsWritable() {
		panic(fmt.Errorf("%w: write of %v parameter %d", ErrAccessViolation, p.meta.Access, p.meta.ID))
	}
	p.backing.Store(v)
	if p.onChange != nil {
		p.onChange()
	}
}

func (p *Parameter[T]) AppendValue(dst []byte) []byte {
	return AppendScalar(dst, p.Value())
}

func (p *Parameter[T]) SetValueBytes(b []byte) error {
	if !p.IsWritable() {
		panic(fmt.Errorf("%w: write of %v parameter %d", ErrAccessViolation, p.meta.Access, p.meta.ID))
	}
	v, err := DecodeScalar[T](b)
	if err != nil {
		return fmt.Errorf("parameter %d: %w", p.meta.ID, err)
	}
	p.SetValue(v)
	return nil
}

// ValueAs reads a numeric parameter converted to N. Narrowing conversions
// lose precision silently. ok is false for boolean parameters.
func ValueAs[N Number](h Handle) (v N, ok bool) {
	switch x := h.load().(type) {
	case uint8:
		return N(x), true
	case uint16:
		return N(x), true
	case uint32:
		return N(x), true
	case uint64:
		return N(x), true
	case int8:
		return N(x), true
	case int16:
		return N(x), true
	case int32:
		return N(x), true
	case int64:
		return N(x), true
	case float32:
		return N(x), true
	case float64:
		return N(x), true
	}
	return 0, false
}

// SetValueFrom stores v converted to the parameter's own type. ok is false
// for boolean parameters.
func SetValueFrom[N Number](h Handle, v N) (ok bool) {
	switch h.Type() {
	case TypeUint8:
		h.store(uint8(v))
	case TypeUint16:
		h.store(uint16(v))
	case TypeUint32:
		h.store(uint32(v))
	case TypeUint64:
		h.store(uint64(v))
	case TypeInt8:
		h.store(int8(v))
	case TypeInt16:
		h.store(int16(v))
	case TypeInt32:
		h.store(int32(v))
	case TypeInt64:
		h.store(int64(v))
	case TypeFloat:
		h.store(float32(v))
	case TypeDouble:
		h.store(float64(v))
	default:
		return false
	}
	return true
}

// ValueAny returns the current value with its Go type.
func ValueAny(h Handle) any {
	return h.load()
}

// SetValueAny coerces v to the parameter's type and stores it.
func SetValueAny(h Handle, v any) error {
	x, err := Coerce(h.Type(), v)
	if err != nil {
		return fmt.Errorf("parameter %d: %w", h.ID(), err)
	}
	h.store(x)
	return nil
}
