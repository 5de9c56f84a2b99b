// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package params

import "errors"

// Configuration errors. Register and New panic with these wrapped; they mean
// the parameter set was wired wrong, not that something failed at runtime.
var (
	ErrNilParameter     = errors.New("params: nil parameter")
	ErrNilStore         = errors.New("params: nil store")
	ErrCapacityExceeded = errors.New("params: database capacity exceeded")
	ErrDuplicateID      = errors.New("params: duplicate parameter id")
	ErrNameTooLong      = errors.New("params: parameter name too long")
	ErrAccessViolation  = errors.New("params: access violation")
)

var (
	ErrUnknownType   = errors.New("params: unknown parameter type")
	ErrUnknownAccess = errors.New("params: unknown access")
	ErrValueSize     = errors.New("params: value size mismatch")
	ErrInvalidValue  = errors.New("params: invalid value")
)
