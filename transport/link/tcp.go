// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/ffutop/servocomm/internal/config"
)

const (
	tcpTimeout = 10 * time.Second
)

// DialTCP connects to a serial device server that bridges a UART to TCP.
// The stream carries the raw packets, with no extra framing.
func DialTCP(ctx context.Context, cfg config.TcpConfig) (*Buffered, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = tcpTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Address, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// Packets are small; do not hold them back.
		tc.SetNoDelay(true)
	}
	slog.Info("TCP link connected", "address", cfg.Address)
	return NewBuffered(cfg.Address, conn, DefaultBufferSize), nil
}

// ListenTCP accepts a single master connection on address and serves it as
// a link. The listener is closed once a connection arrives or ctx ends.
func ListenTCP(ctx context.Context, address string) (*Buffered, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	defer ln.Close()

	accepted := make(chan struct{})
	defer close(accepted)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-accepted:
		}
	}()

	slog.Info("TCP link listening", "address", ln.Addr().String())
	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accept on %s: %w", address, err)
	}
	slog.Info("TCP link accepted", "remote", conn.RemoteAddr().String())
	return NewBuffered(conn.RemoteAddr().String(), conn, DefaultBufferSize), nil
}
