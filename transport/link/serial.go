// Copyright (c) 2014 Quoc-Viet Nguyen. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/grid-x/serial"

	"github.com/ffutop/servocomm/internal/config"
)

// serialConfig maps internal config to serial.Config.
func serialConfig(cfg config.SerialConfig) *serial.Config {
	return &serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.Timeout, // Read timeout, bounds how long Close waits for the reader
		RS485: serial.RS485Config{
			Enabled:            cfg.RS485,
			DelayRtsBeforeSend: cfg.DelayRtsBeforeSend,
			DelayRtsAfterSend:  cfg.DelayRtsAfterSend,
			RtsHighDuringSend:  cfg.RtsHighDuringSend,
			RtsHighAfterSend:   cfg.RtsHighAfterSend,
			RxDuringTx:         cfg.RxDuringTx,
		},
	}
}

// OpenSerial opens a UART with the grid-x driver.
func OpenSerial(cfg config.SerialConfig) (*Buffered, error) {
	port, err := serial.Open(serialConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", cfg.Device, err)
	}
	slog.Info("Serial link opened", "device", cfg.Device, "baud", cfg.BaudRate, "driver", "grid-x")
	return NewBuffered(cfg.Device, gridxPort(port), DefaultBufferSize), nil
}

// gridxPort wraps a grid-x port, whose read timeout is serial.ErrTimeout.
func gridxPort(port io.ReadWriteCloser) io.ReadWriteCloser {
	return idlePort{
		ReadWriteCloser: port,
		idle: func(n int, err error) bool {
			return errors.Is(err, serial.ErrTimeout)
		},
	}
}
