// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package client

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ffutop/servocomm/device"
	"github.com/ffutop/servocomm/internal/config"
	"github.com/ffutop/servocomm/transport/clock"
	"github.com/ffutop/servocomm/transport/link"
	"github.com/ffutop/servocomm/transport/master"
)

func freeAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// TestEndToEnd_TCP runs the device side and the master side over a real
// TCP link, with parameter values kept in an mmap arena.
func TestEndToEnd_TCP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	linkCfg := config.LinkConfig{Type: "tcp", Tcp: config.TcpConfig{Address: freeAddress(t), Timeout: 100 * time.Millisecond}}
	protoCfg := config.ProtocolConfig{
		MasterTimeout: 200 * time.Millisecond,
		SlaveTimeout:  100 * time.Millisecond,
		PollInterval:  50 * time.Microsecond,
	}
	devCfg := config.DeviceConfig{
		ID:       1,
		Capacity: 4,
		Arena:    config.ArenaConfig{Type: "mmap", Path: filepath.Join(t.TempDir(), "values.bin")},
		Parameters: []config.ParameterConfig{
			{ID: 1, Name: "Position", Type: "int64", Access: "read_write", Value: -12345},
			{ID: 2, Name: "Gain", Type: "double_float", Access: "read_write", Value: 0.5},
		},
	}

	served := make(chan error, 1)
	go func() {
		l, err := link.Listen(ctx, linkCfg)
		if err != nil {
			served <- err
			return
		}
		defer l.Close()
		d, err := device.New(devCfg, protoCfg, l, clock.Uptime{})
		if err != nil {
			served <- err
			return
		}
		served <- d.Start(ctx)
	}()

	var l *link.Buffered
	var err error
	for {
		l, err = link.Open(ctx, linkCfg)
		if err == nil {
			break
		}
		require.NoError(t, ctx.Err(), "dial: %v", err)
		time.Sleep(5 * time.Millisecond)
	}

	m := master.New(l, clock.Uptime{}, master.Config{Timeout: protoCfg.MasterTimeout, PollInterval: protoCfg.PollInterval})
	d, err := NewContext(m).TryFindDevice(ctx, 1)
	require.NoError(t, err)

	pos, err := ReadParameterValue[int64](ctx, d, 1)
	require.NoError(t, err)
	require.Equal(t, int64(-12345), pos)

	require.NoError(t, WriteParameterValue[float64](ctx, d, 2, 1.75))
	gain, err := ReadParameterValue[float64](ctx, d, 2)
	require.NoError(t, err)
	require.Equal(t, 1.75, gain)

	// Closing the master side ends the device session.
	require.NoError(t, l.Close())
	select {
	case err := <-served:
		require.Error(t, err)
	case <-ctx.Done():
		t.Fatal("device did not notice the closed link")
	}
}
