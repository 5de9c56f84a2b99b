// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package params

// Store is the caller-owned backing of a parameter's value. A Parameter
// never owns its storage; whatever the Store refers to must outlive the
// parameter's registration.
type Store[T Scalar] interface {
	Load() T
	Store(v T)
}

type varStore[T Scalar] struct {
	p *T
}

func (s varStore[T]) Load() T   { return *s.p }
func (s varStore[T]) Store(v T) { *s.p = v }

// Var backs a parameter with a caller variable.
func Var[T Scalar](p *T) Store[T] {
	if p == nil {
		return nil
	}
	return varStore[T]{p: p}
}

type funcStore[T Scalar] struct {
	get func() T
	set func(T)
}

func (s funcStore[T]) Load() T   { return s.get() }
func (s funcStore[T]) Store(v T) { s.set(v) }

// Funcs backs a parameter with a getter/setter pair, e.g. a hardware
// register accessor.
func Funcs[T Scalar](get func() T, set func(T)) Store[T] {
	if get == nil || set == nil {
		return nil
	}
	return funcStore[T]{get: get, set: set}
}
