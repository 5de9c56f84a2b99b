// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package params

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// Scalar is every Go type a parameter can hold.
type Scalar interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | float32 | float64 | bool
}

// Number is Scalar without bool.
type Number interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | float32 | float64
}

// TypeOf returns the tag for T.
func TypeOf[T Scalar]() ParameterType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return TypeUint8
	case uint16:
		return TypeUint16
	case uint32:
		return TypeUint32
	case uint64:
		return TypeUint64
	case int8:
		return TypeInt8
	case int16:
		return TypeInt16
	case int32:
		return TypeInt32
	case int64:
		return TypeInt64
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	case bool:
		return TypeBoolean
	}
	return TypeNone
}

// AppendScalar appends the little-endian encoding of v.
func AppendScalar[T Scalar](dst []byte, v T) []byte {
	return appendAny(dst, any(v))
}

func appendAny(dst []byte, v any) []byte {
	le := binary.LittleEndian
	switch x := v.(type) {
	case uint8:
		return append(dst, x)
	case uint16:
		return le.AppendUint16(dst, x)
	case uint32:
		return le.AppendUint32(dst, x)
	case uint64:
		return le.AppendUint64(dst, x)
	case int8:
		return append(dst, byte(x))
	case int16:
		return le.AppendUint16(dst, uint16(x))
	case int32:
		return le.AppendUint32(dst, uint32(x))
	case int64:
		return le.AppendUint64(dst, uint64(x))
	case float32:
		return le.AppendUint32(dst, math.Float32bits(x))
	case float64:
		return le.AppendUint64(dst, math.Float64bits(x))
	case bool:
		if x {
			return append(dst, 1)
		}
		return append(dst, 0)
	}
	panic(fmt.Sprintf("params: unsupported scalar %T", v))
}

// DecodeScalar decodes a little-endian value of type T. b must be exactly
// the encoded size of T.
func DecodeScalar[T Scalar](b []byte) (T, error) {
	v, err := DecodeValue(TypeOf[T](), b)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// DecodeValue decodes b as a value of type t. The dynamic type of the
// result is the Go type matching t.
func DecodeValue(t ParameterType, b []byte) (any, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
	if len(b) != t.Size() {
		return nil, fmt.Errorf("%w: %v needs %d bytes, got %d", ErrValueSize, t, t.Size(), len(b))
	}
	le := binary.LittleEndian
	switch t {
	case TypeUint8:
		return b[0], nil
	case TypeUint16:
		return le.Uint16(b), nil
	case TypeUint32:
		return le.Uint32(b), nil
	case TypeUint64:
		return le.Uint64(b), nil
	case TypeInt8:
		return int8(b[0]), nil
	case TypeInt16:
		return int16(le.Uint16(b)), nil
	case TypeInt32:
		return int32(le.Uint32(b)), nil
	case TypeInt64:
		return int64(le.Uint64(b)), nil
	case TypeFloat:
		return math.Float32frombits(le.Uint32(b)), nil
	case TypeDouble:
		return math.Float64frombits(le.Uint64(b)), nil
	default:
		return b[0] != 0, nil
	}
}

// EncodeValue encodes v, which must already be the Go type matching t.
func EncodeValue(t ParameterType, v any) ([]byte, error) {
	if TypeOfValue(v) != t {
		return nil, fmt.Errorf("%w: %T is not %v", ErrInvalidValue, v, t)
	}
	return appendAny(make([]byte, 0, t.Size()), v), nil
}

// TypeOfValue returns the tag for the dynamic type of v, or TypeNone.
func TypeOfValue(v any) ParameterType {
	switch v.(type) {
	case uint8:
		return TypeUint8
	case uint16:
		return TypeUint16
	case uint32:
		return TypeUint32
	case uint64:
		return TypeUint64
	case int8:
		return TypeInt8
	case int16:
		return TypeInt16
	case int32:
		return TypeInt32
	case int64:
		return TypeInt64
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	case bool:
		return TypeBoolean
	}
	return TypeNone
}

// Coerce converts loosely typed input (config values, command line text)
// into the Go type matching t.
func Coerce(t ParameterType, v any) (any, error) {
	var (
		out any
		err error
	)
	switch t {
	case TypeUint8:
		out, err = cast.ToUint8E(v)
	case TypeUint16:
		out, err = cast.ToUint16E(v)
	case TypeUint32:
		out, err = cast.ToUint32E(v)
	case TypeUint64:
		out, err = cast.ToUint64E(v)
	case TypeInt8:
		out, err = cast.ToInt8E(v)
	case TypeInt16:
		out, err = cast.ToInt16E(v)
	case TypeInt32:
		out, err = cast.ToInt32E(v)
	case TypeInt64:
		out, err = cast.ToInt64E(v)
	case TypeFloat:
		out, err = cast.ToFloat32E(v)
	case TypeDouble:
		out, err = cast.ToFloat64E(v)
	case TypeBoolean:
		out, err = cast.ToBoolE(v)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v as %v: %v", ErrInvalidValue, v, t, err)
	}
	return out, nil
}
