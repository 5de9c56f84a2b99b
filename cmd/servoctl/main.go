// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// servoctl talks to servo devices as the bus master.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ffutop/servocomm/client"
	"github.com/ffutop/servocomm/internal/config"
	"github.com/ffutop/servocomm/transport/clock"
	"github.com/ffutop/servocomm/transport/link"
	"github.com/ffutop/servocomm/transport/master"
)

func main() {
	v := config.NewViper()
	v.SetDefault("log.level", "warn")
	configFile := pflag.StringP("config", "c", "", "Configuration file path.")
	deviceID := pflag.Int16P("device", "d", -1, "Device ID to select on start (-1 for none).")
	scanIDs := pflag.String("scan_ids", "1-32", "Default device IDs probed by 'scan'.")
	if err := config.BindFlags(v, pflag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up flags: %v\n", err)
		os.Exit(1)
	}
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: servoctl [flags] [COMMAND ARGS...]\n\nCommands: ping, scan, use, ids, params, meta, read, write, stats\n\nFlags:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg, err := config.Load(v, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	ctx := context.Background()
	l, err := link.Open(ctx, cfg.Link)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open link: %v\n", err)
		os.Exit(1)
	}
	defer l.Close()

	m := master.New(l, clock.Uptime{}, master.Config{
		Timeout:         cfg.Protocol.MasterTimeout,
		DisableTimeouts: cfg.Protocol.DisableTimeouts,
		PollInterval:    cfg.Protocol.PollInterval,
	})
	sh := NewShell(newSession(client.NewContext(m), *scanIDs))

	if *deviceID >= 0 {
		if !sh.Run("use", fmt.Sprint(*deviceID)) {
			l.Close()
			os.Exit(1)
		}
	}
	if !sh.Run(pflag.Args()...) {
		l.Close()
		os.Exit(1)
	}
}

// setupLogger logs to stderr so command output stays clean.
func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "error":
		opts.Level = slog.LevelError
	}

	w := os.Stderr
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file, falling back to stderr: %v\n", err)
		} else {
			w = f
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
}
