// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package link provides transport.Link implementations: a buffered adapter
// over any io.ReadWriteCloser (serial ports, TCP), and an in-memory pipe
// for tests and in-process setups.
package link

import (
	"context"
	"errors"
	"fmt"

	"github.com/ffutop/servocomm/internal/config"
)

var (
	// ErrNoData is returned by ReadByte when nothing is buffered.
	ErrNoData = errors.New("link: no data available")
	ErrClosed = errors.New("link: closed")
)

// DefaultBufferSize holds a few maximum-size packets.
const DefaultBufferSize = 1024

// Open connects the link described by cfg, from the master's side.
func Open(ctx context.Context, cfg config.LinkConfig) (*Buffered, error) {
	switch cfg.Type {
	case "serial":
		switch cfg.Driver {
		case "tarm":
			return OpenTarmSerial(cfg.Serial)
		case "grid-x", "":
			return OpenSerial(cfg.Serial)
		default:
			return nil, fmt.Errorf("unknown serial driver %q", cfg.Driver)
		}
	case "tcp":
		return DialTCP(ctx, cfg.Tcp)
	default:
		return nil, fmt.Errorf("unknown link type %q", cfg.Type)
	}
}

// Listen opens the link described by cfg from the device's side. Serial
// links are symmetric; for TCP the device accepts one master connection
// on the configured address.
func Listen(ctx context.Context, cfg config.LinkConfig) (*Buffered, error) {
	if cfg.Type == "tcp" {
		return ListenTCP(ctx, cfg.Tcp.Address)
	}
	return Open(ctx, cfg)
}
