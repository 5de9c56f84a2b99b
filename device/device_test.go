// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package device

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ffutop/servocomm/internal/config"
	"github.com/ffutop/servocomm/params"
	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/message"
	"github.com/ffutop/servocomm/transport/clock"
	"github.com/ffutop/servocomm/transport/link"
	"github.com/ffutop/servocomm/transport/master"
)

type fixture struct {
	ops     *Operations
	speed   float32
	mode    uint8
	command int16
}

func newFixture() *fixture {
	f := &fixture{speed: 3.5, mode: 2}
	db := params.NewDatabase(8)
	db.Register(params.New(5, "Test Float", params.ReadOnly, params.Var(&f.speed)))
	db.Register(params.New(9, "Mode", params.ReadWrite, params.Var(&f.mode)))
	db.Register(params.New(12, "Command", params.WriteOnly, params.Var(&f.command)))
	f.ops = NewOperations(db)
	return f
}

func TestOperations_Ping(t *testing.T) {
	f := newFixture()
	require.Equal(t, protocol.Respond(protocol.OK), f.ops.Ping(nil))
}

func TestOperations_RegisteredParameterIDs(t *testing.T) {
	f := newFixture()
	resp := f.ops.RegisteredParameterIDs(nil)
	require.Equal(t, protocol.OK, resp.Code)
	require.Equal(t, []byte{5, 9, 12}, resp.Payload)
}

func TestOperations_ParameterMetaData(t *testing.T) {
	f := newFixture()

	resp := f.ops.ParameterMetaData([]byte{5})
	require.Equal(t, protocol.OK, resp.Code)
	meta, err := message.DecodeMetaData(resp.Payload)
	require.NoError(t, err)
	require.Equal(t, params.MetaData{ID: 5, Type: params.TypeFloat, Access: params.ReadOnly, Name: "Test Float"}, meta)

	require.Equal(t, protocol.InvalidArguments, f.ops.ParameterMetaData([]byte{6}).Code)
	require.Equal(t, protocol.PayloadMissingParts, f.ops.ParameterMetaData(nil).Code)
	require.Equal(t, protocol.PayloadMissingParts, f.ops.ParameterMetaData([]byte{5, 0}).Code)
}

func TestOperations_ReadParameterValue(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name    string
		payload []byte
		code    protocol.ResponseCode
	}{
		{"short", []byte{5}, protocol.PayloadMissingParts},
		{"long", []byte{5, byte(params.TypeFloat), 0}, protocol.PayloadMissingParts},
		{"unknown id", []byte{6, byte(params.TypeFloat)}, protocol.InvalidArguments},
		{"write only", []byte{12, byte(params.TypeInt16)}, protocol.NotAllowed},
		{"wrong type", []byte{5, byte(params.TypeDouble)}, protocol.TypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.ops.ReadParameterValue(tt.payload)
			require.Equal(t, tt.code, resp.Code)
			require.Empty(t, resp.Payload)
		})
	}

	resp := f.ops.ReadParameterValue([]byte{5, byte(params.TypeFloat)})
	require.Equal(t, protocol.OK, resp.Code)
	require.Equal(t, binary.LittleEndian.AppendUint32(nil, math.Float32bits(3.5)), resp.Payload)
}

func TestOperations_WriteParameterValue(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name    string
		payload []byte
		code    protocol.ResponseCode
	}{
		{"short", []byte{9}, protocol.PayloadMissingParts},
		{"unknown id", []byte{6, byte(params.TypeUint8), 1}, protocol.InvalidArguments},
		{"read only", []byte{5, byte(params.TypeFloat), 0, 0, 0, 0}, protocol.NotAllowed},
		{"wrong type", []byte{9, byte(params.TypeUint16), 1, 0}, protocol.TypeMismatch},
		{"value too long", []byte{9, byte(params.TypeUint8), 1, 0}, protocol.InvalidArguments},
		{"value missing", []byte{9, byte(params.TypeUint8)}, protocol.InvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, f.ops.WriteParameterValue(tt.payload).Code)
		})
	}
	require.Equal(t, uint8(2), f.mode)
	require.Equal(t, float32(3.5), f.speed)

	require.Equal(t, protocol.OK, f.ops.WriteParameterValue([]byte{9, byte(params.TypeUint8), 7}).Code)
	require.Equal(t, uint8(7), f.mode)

	require.Equal(t, protocol.OK, f.ops.WriteParameterValue([]byte{12, byte(params.TypeInt16), 0xFE, 0xFF}).Code)
	require.Equal(t, int16(-2), f.command)
}

func testDeviceConfig() config.DeviceConfig {
	return config.DeviceConfig{
		ID:       7,
		Capacity: 8,
		Arena:    config.ArenaConfig{Type: "memory"},
		Parameters: []config.ParameterConfig{
			{ID: 5, Name: "Test Float", Type: "floating_point", Access: "read_only", Value: 2.5},
			{ID: 9, Name: "Mode", Type: "uint8", Access: "read_write", Value: 3},
			{ID: 10, Name: "Enabled", Type: "boolean", Access: "rw"},
		},
	}
}

func TestNew_FromConfig(t *testing.T) {
	d, err := New(testDeviceConfig(), config.ProtocolConfig{}, link.NewMem(), &clock.Manual{})
	require.NoError(t, err)
	defer d.Arena.Close()

	require.Equal(t, 3, d.DB.Len())
	require.Equal(t, uint8(7), d.Slave.DeviceID())

	speed, ok := params.ByIDAs[float32](d.DB, 5)
	require.True(t, ok)
	require.Equal(t, float32(2.5), speed.Value())

	mode, ok := params.ByIDAs[uint8](d.DB, 9)
	require.True(t, ok)
	require.Equal(t, uint8(3), mode.Value())

	enabled, ok := params.ByIDAs[bool](d.DB, 10)
	require.True(t, ok)
	require.False(t, enabled.Value())
}

func TestNew_Errors(t *testing.T) {
	cfg := testDeviceConfig()
	cfg.Parameters[1].Type = "complex"
	_, err := New(cfg, config.ProtocolConfig{}, link.NewMem(), &clock.Manual{})
	require.ErrorIs(t, err, params.ErrUnknownType)

	cfg = testDeviceConfig()
	cfg.Arena.Type = "tape"
	_, err = New(cfg, config.ProtocolConfig{}, link.NewMem(), &clock.Manual{})
	require.Error(t, err)
}

func TestNew_DuplicateIDPanics(t *testing.T) {
	cfg := testDeviceConfig()
	cfg.Parameters[2].ID = 5

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, params.ErrDuplicateID), "panic %v", err)
	}()
	New(cfg, config.ProtocolConfig{}, link.NewMem(), &clock.Manual{})
}

func TestNew_FileArenaKeepsWrites(t *testing.T) {
	cfg := testDeviceConfig()
	cfg.Arena = config.ArenaConfig{Type: "file", Path: filepath.Join(t.TempDir(), "values.bin")}
	cfg.Parameters[1].Value = nil

	d, err := New(cfg, config.ProtocolConfig{}, link.NewMem(), &clock.Manual{})
	require.NoError(t, err)
	mode, _ := params.ByIDAs[uint8](d.DB, 9)
	mode.SetValue(42)
	require.NoError(t, d.Arena.Close())

	d, err = New(cfg, config.ProtocolConfig{}, link.NewMem(), &clock.Manual{})
	require.NoError(t, err)
	defer d.Arena.Close()
	mode, _ = params.ByIDAs[uint8](d.DB, 9)
	require.Equal(t, uint8(42), mode.Value())
}

func TestDevice_ServesMaster(t *testing.T) {
	masterEnd, deviceEnd := link.Pipe()
	d, err := New(testDeviceConfig(), config.ProtocolConfig{PollInterval: 50 * time.Microsecond}, deviceEnd, clock.Uptime{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	m := master.New(masterEnd, clock.Uptime{}, master.Config{PollInterval: 50 * time.Microsecond})

	resp, err := m.Send(ctx, 7, protocol.OpGetParameterMetaData, []byte{5})
	require.NoError(t, err)
	require.Equal(t, protocol.OK, resp.Code)
	meta, err := message.DecodeMetaData(resp.Payload)
	require.NoError(t, err)
	require.Equal(t, params.MetaData{ID: 5, Type: params.TypeFloat, Access: params.ReadOnly, Name: "Test Float"}, meta)

	req := message.WriteValueRequest{ID: 9, Type: params.TypeUint8, Value: []byte{11}}
	resp, err = m.Send(ctx, 7, protocol.OpWriteParameterValue, req.Encode())
	require.NoError(t, err)
	require.Equal(t, protocol.OK, resp.Code)

	resp, err = m.Send(ctx, 7, protocol.OpReadParameterValue, message.ReadValueRequest{ID: 9, Type: params.TypeUint8}.Encode())
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseData{Code: protocol.OK, Payload: []byte{11}}, resp)

	resp, err = m.Send(ctx, 7, protocol.OpStartMotor, nil)
	require.NoError(t, err)
	require.Equal(t, protocol.UnknownOperationCode, resp.Code)

	cancel()
	require.NoError(t, <-done)
	require.Equal(t, uint64(4), d.Slave.Statistics().ValidPacketsReceived)
}
