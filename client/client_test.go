// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ffutop/servocomm/device"
	"github.com/ffutop/servocomm/internal/config"
	"github.com/ffutop/servocomm/params"
	"github.com/ffutop/servocomm/params/arena"
	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/transport/clock"
	"github.com/ffutop/servocomm/transport/link"
	"github.com/ffutop/servocomm/transport/master"
)

const poll = 50 * time.Microsecond

// newTestContext serves device 7 on one end of a pipe and returns a
// Context on the other.
func newTestContext(t *testing.T) (*Context, *device.Device) {
	t.Helper()
	masterEnd, deviceEnd := link.Pipe()
	d, err := device.New(config.DeviceConfig{
		ID:       7,
		Capacity: 8,
		Arena:    config.ArenaConfig{Type: "memory"},
		Parameters: []config.ParameterConfig{
			{ID: 5, Name: "Test Float", Type: "floating_point", Access: "read_only", Value: 3.25},
			{ID: 9, Name: "Mode", Type: "uint8", Access: "read_write", Value: 2},
			{ID: 12, Name: "Target Position", Type: "int32", Access: "write_only"},
			{ID: 13, Name: "Enabled", Type: "boolean", Access: "read_write"},
		},
	}, config.ProtocolConfig{SlaveTimeout: 25 * time.Millisecond, PollInterval: poll}, deviceEnd, clock.Uptime{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	m := master.New(masterEnd, clock.Uptime{}, master.Config{Timeout: 50 * time.Millisecond, PollInterval: poll})
	return NewContext(m), d
}

func TestTryFindDevice(t *testing.T) {
	c, _ := newTestContext(t)
	ctx := context.Background()

	d, err := c.TryFindDevice(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, uint8(7), d.ID())

	_, err = c.TryFindDevice(ctx, 8)
	require.ErrorIs(t, err, ErrTimedOut)
	require.True(t, IsTimeout(err))

	var re *ResponseError
	require.True(t, errors.As(err, &re))
	require.Equal(t, protocol.OpPing, re.Op)
	require.Equal(t, uint8(8), re.Device)
}

func TestScan(t *testing.T) {
	c, _ := newTestContext(t)
	found := c.Scan(context.Background(), []uint8{6, 7, 8})
	require.Len(t, found, 1)
	require.Equal(t, uint8(7), found[0].ID())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Empty(t, c.Scan(ctx, []uint8{7}))
}

func TestDevice_Parameters(t *testing.T) {
	c, _ := newTestContext(t)
	ctx := context.Background()
	d, err := c.TryFindDevice(ctx, 7)
	require.NoError(t, err)

	ids, err := d.RegisteredParameterIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []params.ParameterID{5, 9, 12, 13}, ids)

	meta, err := d.ParameterMetaData(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, params.MetaData{ID: 5, Type: params.TypeFloat, Access: params.ReadOnly, Name: "Test Float"}, meta)

	_, err = d.ParameterMetaData(ctx, 99)
	require.ErrorIs(t, err, ErrInvalidArguments)

	all, err := d.Parameters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "Target Position", all[2].Name)
	require.Equal(t, params.WriteOnly, all[2].Access)
}

func TestReadWriteParameterValue(t *testing.T) {
	c, dev := newTestContext(t)
	ctx := context.Background()
	d, err := c.TryFindDevice(ctx, 7)
	require.NoError(t, err)

	speed, err := ReadParameterValue[float32](ctx, d, 5)
	require.NoError(t, err)
	require.Equal(t, float32(3.25), speed)

	require.NoError(t, WriteParameterValue[uint8](ctx, d, 9, 17))
	mode, err := ReadParameterValue[uint8](ctx, d, 9)
	require.NoError(t, err)
	require.Equal(t, uint8(17), mode)

	require.NoError(t, WriteParameterValue[int32](ctx, d, 12, -4000))
	require.Equal(t, int32(-4000), arena.Slot[int32](dev.Arena, 12).Load())

	_, err = ReadParameterValue[int32](ctx, d, 12)
	require.ErrorIs(t, err, ErrNotAllowed)

	err = WriteParameterValue[float32](ctx, d, 5, 1)
	require.ErrorIs(t, err, ErrNotAllowed)

	_, err = ReadParameterValue[uint16](ctx, d, 9)
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.ErrorIs(t, err, &ResponseError{Code: protocol.TypeMismatch})
	require.NotErrorIs(t, err, ErrNotAllowed)
}

func TestParameterValueAny(t *testing.T) {
	c, _ := newTestContext(t)
	ctx := context.Background()
	d, err := c.TryFindDevice(ctx, 7)
	require.NoError(t, err)

	enabled := params.MetaData{ID: 13, Type: params.TypeBoolean}
	require.NoError(t, WriteParameterValueAny(ctx, d, enabled, "true"))
	v, err := ReadParameterValueAny(ctx, d, enabled)
	require.NoError(t, err)
	require.Equal(t, true, v)

	mode := params.MetaData{ID: 9, Type: params.TypeUint8}
	require.NoError(t, WriteParameterValueAny(ctx, d, mode, "42"))
	v, err = ReadParameterValueAny(ctx, d, mode)
	require.NoError(t, err)
	require.Equal(t, uint8(42), v)

	require.Error(t, WriteParameterValueAny(ctx, d, mode, "not a number"))
	require.ErrorIs(t, WriteParameterValueAny(ctx, d, params.MetaData{ID: 9, Type: params.TypeNone}, 1), params.ErrUnknownType)
}

func TestParseDeviceIDs(t *testing.T) {
	tests := []struct {
		input   string
		want    []byte
		wantErr bool
	}{
		{"1", []byte{1}, false},
		{"1,2,5-7", []byte{1, 2, 5, 6, 7}, false},
		{" 3 , 1-2 ", []byte{3, 1, 2}, false},
		{"1-3,2", []byte{1, 2, 3}, false},
		{"", nil, false},
		{"254-255", []byte{254, 255}, false},
		{"256", nil, true},
		{"5-3", nil, true},
		{"a", nil, true},
		{"1-b", nil, true},
		{"250-260", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDeviceIDs(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResponseError(t *testing.T) {
	err := &ResponseError{Device: 3, Op: protocol.OpReadParameterValue, Code: protocol.Corrupted}
	require.ErrorIs(t, err, ErrCorrupted)
	require.Equal(t, "device 3: read_parameter_value: corrupted", err.Error())

	cause := errors.New("link down")
	err = &ResponseError{Device: 3, Op: protocol.OpPing, Code: protocol.TimedOut, Err: cause}
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrTimedOut)
}
