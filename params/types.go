// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package params

import (
	"fmt"
	"strings"
)

// ParameterID identifies a parameter within one Database.
type ParameterID = uint8

// ParameterType is the wire tag of a parameter's scalar kind.
type ParameterType uint8

const (
	TypeUint8 ParameterType = iota
	TypeUint16
	TypeUint32
	TypeUint64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat
	TypeDouble
	TypeBoolean
	// TypeNone marks an unspecified or invalid type.
	TypeNone
)

var typeNames = [...]string{
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeUint64:  "uint64",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeFloat:   "floating_point",
	TypeDouble:  "double_float",
	TypeBoolean: "boolean",
	TypeNone:    "none",
}

var typeSizes = [...]int{
	TypeUint8:   1,
	TypeUint16:  2,
	TypeUint32:  4,
	TypeUint64:  8,
	TypeInt8:    1,
	TypeInt16:   2,
	TypeInt32:   4,
	TypeInt64:   8,
	TypeFloat:   4,
	TypeDouble:  8,
	TypeBoolean: 1,
	TypeNone:    0,
}

func (t ParameterType) String() string {
	if t <= TypeNone {
		return typeNames[t]
	}
	return fmt.Sprintf("parameter_type(%d)", uint8(t))
}

// Size is the encoded size of a value of this type in bytes.
func (t ParameterType) Size() int {
	if t <= TypeNone {
		return typeSizes[t]
	}
	return 0
}

func (t ParameterType) Valid() bool {
	return t < TypeNone
}

func (t ParameterType) IsNumeric() bool {
	return t <= TypeDouble
}

// ParseType accepts the wire names plus the Go-style aliases float32,
// float64 and bool.
func ParseType(s string) (ParameterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "float":
		return TypeFloat, nil
	case "float64", "double":
		return TypeDouble, nil
	case "bool":
		return TypeBoolean, nil
	}
	for i, name := range typeNames[:TypeNone] {
		if strings.EqualFold(s, name) {
			return ParameterType(i), nil
		}
	}
	return TypeNone, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Access is the read/write rule for a parameter.
type Access uint8

const (
	ReadOnly Access = iota
	WriteOnly
	ReadWrite
)

var accessNames = [...]string{
	ReadOnly:  "read_only",
	WriteOnly: "write_only",
	ReadWrite: "read_write",
}

func (a Access) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return fmt.Sprintf("access(%d)", uint8(a))
}

func (a Access) Valid() bool {
	return a <= ReadWrite
}

func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read_only", "ro", "r":
		return ReadOnly, nil
	case "write_only", "wo", "w":
		return WriteOnly, nil
	case "read_write", "rw":
		return ReadWrite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAccess, s)
}

const (
	// NameBufferSize is the name budget on the wire, terminator included.
	NameBufferSize = 52
	MaxNameLength  = NameBufferSize - 1
)

// MetaData describes a parameter without touching its value.
type MetaData struct {
	ID     ParameterID
	Type   ParameterType
	Access Access
	Name   string
}
