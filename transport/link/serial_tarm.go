// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tarm/serial"

	"github.com/ffutop/servocomm/internal/config"
)

// tarmConfig maps internal config to the tarm driver. RS485 options are
// not supported by this driver and are ignored.
func tarmConfig(cfg config.SerialConfig) (*serial.Config, error) {
	c := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.BaudRate,
		ReadTimeout: cfg.Timeout,
		Size:        byte(cfg.DataBits),
	}

	switch cfg.Parity {
	case "", "N":
		c.Parity = serial.ParityNone
	case "E":
		c.Parity = serial.ParityEven
	case "O":
		c.Parity = serial.ParityOdd
	default:
		return nil, fmt.Errorf("unsupported parity %q", cfg.Parity)
	}

	switch cfg.StopBits {
	case 0, 1:
		c.StopBits = serial.Stop1
	case 2:
		c.StopBits = serial.Stop2
	default:
		return nil, fmt.Errorf("unsupported stop bits %d", cfg.StopBits)
	}
	return c, nil
}

// OpenTarmSerial opens a UART with the tarm driver.
func OpenTarmSerial(cfg config.SerialConfig) (*Buffered, error) {
	c, err := tarmConfig(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RS485 {
		slog.Warn("RS485 options are ignored by the tarm driver", "device", cfg.Device)
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	slog.Info("Serial link opened", "device", cfg.Device, "baud", cfg.BaudRate, "driver", "tarm")
	return NewBuffered(cfg.Device, tarmPort(port), DefaultBufferSize), nil
}

// tarmPort wraps a tarm port. With a read timeout set, tarm reports an
// idle line as (0, io.EOF); a closed port reports os.ErrClosed.
func tarmPort(port io.ReadWriteCloser) io.ReadWriteCloser {
	return idlePort{
		ReadWriteCloser: port,
		idle: func(n int, err error) bool {
			return n == 0 && errors.Is(err, io.EOF)
		},
	}
}
