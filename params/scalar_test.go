// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package params

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncoding_LittleEndian(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"uint16", AppendScalar(nil, uint16(0x1234)), []byte{0x34, 0x12}},
		{"int32", AppendScalar(nil, int32(-2)), []byte{0xFE, 0xFF, 0xFF, 0xFF}},
		{"float32", AppendScalar(nil, float32(1)), []byte{0x00, 0x00, 0x80, 0x3F}},
		{"bool", AppendScalar(nil, true), []byte{0x01}},
		{"uint64", AppendScalar(nil, uint64(1)), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDecodeValue(t *testing.T) {
	values := []any{
		uint8(200), uint16(60000), uint32(1 << 31), uint64(math.MaxUint64),
		int8(-100), int16(-30000), int32(math.MinInt32), int64(-1),
		float32(3.1415), float64(math.Pi), true,
	}
	for _, v := range values {
		typ := TypeOfValue(v)
		require.True(t, typ.Valid(), "%T", v)

		b, err := EncodeValue(typ, v)
		require.NoError(t, err)
		require.Len(t, b, typ.Size())

		got, err := DecodeValue(typ, b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	_, err := DecodeValue(TypeNone, nil)
	require.ErrorIs(t, err, ErrUnknownType)
	_, err = EncodeValue(TypeUint8, int8(1))
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want ParameterType
	}{
		{"uint8", TypeUint8},
		{"floating_point", TypeFloat},
		{"float32", TypeFloat},
		{"double_float", TypeDouble},
		{"BOOLEAN", TypeBoolean},
		{"int64", TypeInt64},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseType("none")
	require.ErrorIs(t, err, ErrUnknownType)

	a, err := ParseAccess("rw")
	require.NoError(t, err)
	require.Equal(t, ReadWrite, a)
	_, err = ParseAccess("sometimes")
	require.ErrorIs(t, err, ErrUnknownAccess)
}

func TestTypeTags(t *testing.T) {
	require.Equal(t, ParameterType(8), TypeFloat)
	require.Equal(t, ParameterType(10), TypeBoolean)
	require.Equal(t, ParameterType(11), TypeNone)
	require.True(t, TypeDouble.IsNumeric())
	require.False(t, TypeBoolean.IsNumeric())
	require.Equal(t, TypeFloat, TypeOf[float32]())
}
