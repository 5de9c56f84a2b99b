// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package client is the master-side API for talking to servo devices.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ffutop/servocomm/params"
	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/message"
	"github.com/ffutop/servocomm/transport/master"
)

// Context owns the master handler shared by all devices on one link.
type Context struct {
	master *master.Handler
}

func NewContext(m *master.Handler) *Context {
	return &Context{master: m}
}

// Master returns the underlying master handler.
func (c *Context) Master() *master.Handler {
	return c.master
}

// TryFindDevice pings id and returns a Device if it answers OK.
func (c *Context) TryFindDevice(ctx context.Context, id uint8) (*Device, error) {
	d := &Device{ctx: c, id: id}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Scan probes ids in order and returns the devices that answered.
// It stops early when ctx is done.
func (c *Context) Scan(ctx context.Context, ids []uint8) []*Device {
	var found []*Device
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		d, err := c.TryFindDevice(ctx, id)
		if err != nil {
			slog.Debug("No device", "id", id, "err", err)
			continue
		}
		found = append(found, d)
	}
	return found
}

// Device is a remote device reachable through a Context.
type Device struct {
	ctx *Context
	id  uint8
}

func (d *Device) ID() uint8 {
	return d.id
}

func (d *Device) String() string {
	return fmt.Sprintf("device(%d)", d.id)
}

// call sends one request and returns the OK payload.
func (d *Device) call(ctx context.Context, op protocol.OpCode, payload []byte) ([]byte, error) {
	resp, err := d.ctx.master.Send(ctx, d.id, op, payload)
	if err != nil || resp.Code != protocol.OK {
		return nil, &ResponseError{Device: d.id, Op: op, Code: resp.Code, Err: err}
	}
	return resp.Payload, nil
}

func (d *Device) Ping(ctx context.Context) error {
	_, err := d.call(ctx, protocol.OpPing, nil)
	return err
}

func (d *Device) RegisteredParameterIDs(ctx context.Context) ([]params.ParameterID, error) {
	payload, err := d.call(ctx, protocol.OpGetAllRegisteredParameterIDs, nil)
	if err != nil {
		return nil, err
	}
	return message.DecodeParameterIDs(payload), nil
}

func (d *Device) ParameterMetaData(ctx context.Context, id params.ParameterID) (params.MetaData, error) {
	payload, err := d.call(ctx, protocol.OpGetParameterMetaData, []byte{id})
	if err != nil {
		return params.MetaData{}, err
	}
	meta, err := message.DecodeMetaData(payload)
	if err != nil {
		return params.MetaData{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if meta.ID != id {
		return params.MetaData{}, fmt.Errorf("%w: asked for id %d, got %d", ErrMalformedResponse, id, meta.ID)
	}
	return meta, nil
}

// Parameters lists every registered parameter with its metadata.
func (d *Device) Parameters(ctx context.Context) ([]params.MetaData, error) {
	ids, err := d.RegisteredParameterIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]params.MetaData, 0, len(ids))
	for _, id := range ids {
		meta, err := d.ParameterMetaData(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", id, err)
		}
		out = append(out, meta)
	}
	return out, nil
}

func (d *Device) readRaw(ctx context.Context, id params.ParameterID, t params.ParameterType) ([]byte, error) {
	payload, err := d.call(ctx, protocol.OpReadParameterValue, message.ReadValueRequest{ID: id, Type: t}.Encode())
	if err != nil {
		return nil, err
	}
	if len(payload) != t.Size() {
		return nil, fmt.Errorf("%w: %s value of %d bytes", ErrMalformedResponse, t, len(payload))
	}
	return payload, nil
}

func (d *Device) writeRaw(ctx context.Context, id params.ParameterID, t params.ParameterType, value []byte) error {
	_, err := d.call(ctx, protocol.OpWriteParameterValue, message.WriteValueRequest{ID: id, Type: t, Value: value}.Encode())
	return err
}

// ReadParameterValue reads parameter id as T. The device answers
// TypeMismatch if T is not the parameter's type.
func ReadParameterValue[T params.Scalar](ctx context.Context, d *Device, id params.ParameterID) (T, error) {
	var zero T
	raw, err := d.readRaw(ctx, id, params.TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return params.DecodeScalar[T](raw)
}

func WriteParameterValue[T params.Scalar](ctx context.Context, d *Device, id params.ParameterID, v T) error {
	return d.writeRaw(ctx, id, params.TypeOf[T](), params.AppendScalar(nil, v))
}

// ReadParameterValueAny reads a parameter whose type is only known at runtime.
func ReadParameterValueAny(ctx context.Context, d *Device, meta params.MetaData) (any, error) {
	raw, err := d.readRaw(ctx, meta.ID, meta.Type)
	if err != nil {
		return nil, err
	}
	return params.DecodeValue(meta.Type, raw)
}

// WriteParameterValueAny converts v to meta.Type and writes it.
func WriteParameterValueAny(ctx context.Context, d *Device, meta params.MetaData, v any) error {
	if !meta.Type.Valid() {
		return fmt.Errorf("%w: %v", params.ErrUnknownType, meta.Type)
	}
	cv, err := params.Coerce(meta.Type, v)
	if err != nil {
		return err
	}
	raw, err := params.EncodeValue(meta.Type, cv)
	if err != nil {
		return err
	}
	return d.writeRaw(ctx, meta.ID, meta.Type, raw)
}

// IsTimeout reports whether err is a timed out exchange.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimedOut)
}
