// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ffutop/servocomm/device"
	"github.com/ffutop/servocomm/internal/config"
	"github.com/ffutop/servocomm/transport/clock"
	"github.com/ffutop/servocomm/transport/link"
)

const reconnectDelay = time.Second

func main() {
	v := config.NewViper()
	configFile := pflag.StringP("config", "c", "", "Configuration file path.")
	if err := config.BindFlags(v, pflag.CommandLine); err != nil {
		fmt.Printf("Failed to set up flags: %v\n", err)
		os.Exit(1)
	}
	pflag.Parse()

	// Load Configuration
	cfg, err := config.Load(v, *configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	slog.Info("Starting servo device...", "id", cfg.Device.ID, "link", cfg.Link.Type, "parameters", len(cfg.Device.Parameters))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for Signal
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		slog.Info("Shutting down...")
		cancel()
	}()

	for {
		err := serve(ctx, cfg)
		if ctx.Err() != nil {
			break
		}
		if cfg.Link.Type != "tcp" {
			slog.Error("Device stopped with error", "err", err)
			os.Exit(1)
		}
		// A TCP master went away; wait for the next one.
		slog.Warn("Master disconnected", "err", err)
		select {
		case <-ctx.Done():
		case <-time.After(reconnectDelay):
		}
	}
	slog.Info("Goodbye.")
}

// serve runs the device for one link session.
func serve(ctx context.Context, cfg *config.Config) error {
	l, err := link.Listen(ctx, cfg.Link)
	if err != nil {
		return fmt.Errorf("failed to open link: %w", err)
	}
	defer l.Close()
	slog.Info("Link ready", "link", l)

	d, err := device.New(cfg.Device, cfg.Protocol, l, clock.Uptime{})
	if err != nil {
		return err
	}
	return d.Start(ctx)
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
