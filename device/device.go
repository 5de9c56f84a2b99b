// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package device assembles a servo device: a parameter database backed by
// an arena, the parameter operations, and the slave handler serving them
// on a link.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ffutop/servocomm/internal/config"
	"github.com/ffutop/servocomm/params"
	"github.com/ffutop/servocomm/params/arena"
	"github.com/ffutop/servocomm/transport"
	"github.com/ffutop/servocomm/transport/slave"
)

const statsInterval = time.Minute

// Device is one configured servo device.
type Device struct {
	ID    uint8
	DB    *params.Database
	Arena *arena.Arena
	Slave *slave.Handler
}

// New builds the device described by cfg on link. Parameter values live in
// the configured arena; initial values from cfg are written before the
// parameters are registered.
func New(cfg config.DeviceConfig, pcfg config.ProtocolConfig, link transport.Link, clock transport.Clock) (*Device, error) {
	a, err := arena.New(cfg.Arena.Type, cfg.Arena.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open arena: %w", err)
	}

	db := params.NewDatabase(cfg.Capacity)
	for i := range cfg.Parameters {
		p, err := cfg.Parameters[i].Parse()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("parameter %d: %w", cfg.Parameters[i].ID, err)
		}
		if err := register(db, a, p); err != nil {
			a.Close()
			return nil, err
		}
	}

	s := slave.New(link, clock, slave.Config{
		DeviceID:        cfg.ID,
		Timeout:         pcfg.SlaveTimeout,
		DisableTimeouts: pcfg.DisableTimeouts,
		FrameTimeout:    pcfg.FrameTimeout,
		HandlerCapacity: cfg.HandlerCapacity,
		PollInterval:    pcfg.PollInterval,
	})
	NewOperations(db).Register(s)

	return &Device{ID: cfg.ID, DB: db, Arena: a, Slave: s}, nil
}

func register(db *params.Database, a *arena.Arena, p config.ParsedParameter) error {
	switch p.Meta.Type {
	case params.TypeUint8:
		return registerTyped[uint8](db, a, p)
	case params.TypeUint16:
		return registerTyped[uint16](db, a, p)
	case params.TypeUint32:
		return registerTyped[uint32](db, a, p)
	case params.TypeUint64:
		return registerTyped[uint64](db, a, p)
	case params.TypeInt8:
		return registerTyped[int8](db, a, p)
	case params.TypeInt16:
		return registerTyped[int16](db, a, p)
	case params.TypeInt32:
		return registerTyped[int32](db, a, p)
	case params.TypeInt64:
		return registerTyped[int64](db, a, p)
	case params.TypeFloat:
		return registerTyped[float32](db, a, p)
	case params.TypeDouble:
		return registerTyped[float64](db, a, p)
	case params.TypeBoolean:
		return registerTyped[bool](db, a, p)
	}
	return fmt.Errorf("parameter %d: %w: %v", p.Meta.ID, params.ErrUnknownType, p.Meta.Type)
}

func registerTyped[T params.Scalar](db *params.Database, a *arena.Arena, p config.ParsedParameter) error {
	if v, ok := p.Value.(T); ok {
		if err := a.SetRaw(p.Meta.ID, params.AppendScalar(nil, v)); err != nil {
			return err
		}
	}
	meta := p.Meta
	param := params.New(meta.ID, meta.Name, meta.Access, arena.Slot[T](a, meta.ID))
	param.OnChange(func() {
		slog.Info("Parameter changed", "id", meta.ID, "name", meta.Name)
	})
	db.Register(param)
	return nil
}

// Start serves requests until ctx is done, then closes the arena.
func (d *Device) Start(ctx context.Context) error {
	slog.Info("Device started", "id", d.ID, "parameters", d.DB.Len())
	defer func() {
		if err := d.Arena.Close(); err != nil {
			slog.Error("Failed to close arena", "err", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.logStatistics()
			}
		}
	}()

	err := d.Slave.Run(ctx)
	d.logStatistics()
	return err
}

func (d *Device) logStatistics() {
	st := d.Slave.Statistics()
	slog.Info("Device statistics",
		"id", d.ID,
		"total", st.TotalPacketsReceived,
		"valid", st.ValidPacketsReceived,
		"corrupted", st.CorruptedPacketsReceived,
		"timed_out", st.TimedOutPackets)
}
