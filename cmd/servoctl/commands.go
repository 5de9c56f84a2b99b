// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ffutop/servocomm/client"
	"github.com/ffutop/servocomm/params"
)

var errNoDevice = errors.New("no device selected, run 'use ID' first")

// session is the state shared by all commands.
type session struct {
	client  *client.Context
	device  *client.Device
	metas   map[params.ParameterID]params.MetaData
	scanIDs string

	// onSelect runs after the current device changes.
	onSelect func(d *client.Device)
}

func newSession(c *client.Context, scanIDs string) *session {
	return &session{client: c, scanIDs: scanIDs}
}

func (s *session) selectDevice(d *client.Device) {
	s.device = d
	s.metas = nil
	if s.onSelect != nil {
		s.onSelect(d)
	}
}

// metaData returns the cached metadata of parameter id on the current device.
func (s *session) metaData(ctx context.Context, id params.ParameterID) (params.MetaData, error) {
	if meta, ok := s.metas[id]; ok {
		return meta, nil
	}
	meta, err := s.device.ParameterMetaData(ctx, id)
	if err != nil {
		return meta, err
	}
	if s.metas == nil {
		s.metas = make(map[params.ParameterID]params.MetaData)
	}
	s.metas[id] = meta
	return meta, nil
}

type command struct {
	name        string
	aliases     []string
	usage       string
	help        string
	minArgs     int
	needsDevice bool
	run         func(ctx context.Context, s *session, args []string, w io.Writer) error
}

var commands = []*command{
	{
		name:  "ping",
		usage: "[ID]",
		help:  "Ping the current device, or device ID.",
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			d := s.device
			if len(args) > 0 {
				id, err := parseUint8(args[0])
				if err != nil {
					return err
				}
				start := time.Now()
				if d, err = s.client.TryFindDevice(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(w, "%s: ok (%s)\n", d, time.Since(start).Round(time.Microsecond))
				return nil
			}
			if d == nil {
				return errNoDevice
			}
			start := time.Now()
			if err := d.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s: ok (%s)\n", d, time.Since(start).Round(time.Microsecond))
			return nil
		},
	},
	{
		name:  "scan",
		usage: "[IDS]",
		help:  "Probe device IDs, e.g. 1,2,5-10.",
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			idList := s.scanIDs
			if len(args) > 0 {
				idList = args[0]
			}
			ids, err := client.ParseDeviceIDs(idList)
			if err != nil {
				return err
			}
			found := s.client.Scan(ctx, ids)
			if len(found) == 0 {
				fmt.Fprintln(w, "No devices found")
				return nil
			}
			for _, d := range found {
				fmt.Fprintln(w, d.ID())
			}
			if s.device == nil && len(found) == 1 {
				s.selectDevice(found[0])
			}
			return nil
		},
	},
	{
		name:    "use",
		aliases: []string{"u"},
		usage:   "ID",
		help:    "Select the device the other commands talk to.",
		minArgs: 1,
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			id, err := parseUint8(args[0])
			if err != nil {
				return err
			}
			d, err := s.client.TryFindDevice(ctx, id)
			if err != nil {
				return err
			}
			s.selectDevice(d)
			return nil
		},
	},
	{
		name:        "ids",
		help:        "List registered parameter IDs.",
		needsDevice: true,
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			ids, err := s.device.RegisteredParameterIDs(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(w, id)
			}
			return nil
		},
	},
	{
		name:        "params",
		aliases:     []string{"ls"},
		help:        "List parameters with their metadata.",
		needsDevice: true,
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			metas, err := s.device.Parameters(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tACCESS\tNAME")
			for _, m := range metas {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ID, m.Type, m.Access, m.Name)
			}
			return tw.Flush()
		},
	},
	{
		name:        "meta",
		usage:       "ID",
		help:        "Show the metadata of parameter ID.",
		minArgs:     1,
		needsDevice: true,
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			id, err := parseUint8(args[0])
			if err != nil {
				return err
			}
			m, err := s.metaData(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id=%d type=%s access=%s name=%q\n", m.ID, m.Type, m.Access, m.Name)
			return nil
		},
	},
	{
		name:        "read",
		aliases:     []string{"r", "get"},
		usage:       "ID...",
		help:        "Read parameter values.",
		minArgs:     1,
		needsDevice: true,
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			for _, arg := range args {
				id, err := parseUint8(arg)
				if err != nil {
					return err
				}
				m, err := s.metaData(ctx, id)
				if err != nil {
					return err
				}
				v, err := client.ReadParameterValueAny(ctx, s.device, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s = %v\n", m.Name, v)
			}
			return nil
		},
	},
	{
		name:        "write",
		aliases:     []string{"w", "set"},
		usage:       "ID VALUE",
		help:        "Write a parameter value.",
		minArgs:     2,
		needsDevice: true,
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			id, err := parseUint8(args[0])
			if err != nil {
				return err
			}
			m, err := s.metaData(ctx, id)
			if err != nil {
				return err
			}
			if err := client.WriteParameterValueAny(ctx, s.device, m, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(w, "OK")
			return nil
		},
	},
	{
		name: "stats",
		help: "Show master link statistics.",
		run: func(ctx context.Context, s *session, args []string, w io.Writer) error {
			st := s.client.Master().Statistics()
			fmt.Fprintf(w, "total=%d valid=%d corrupted=%d timed_out=%d\n",
				st.TotalPacketsReceived, st.ValidPacketsReceived, st.CorruptedPacketsReceived, st.TimedOutPackets)
			return nil
		},
	},
}

// exec runs c with args after checking its preconditions.
func (c *command) exec(ctx context.Context, s *session, args []string, w io.Writer) error {
	if len(args) < c.minArgs {
		return fmt.Errorf("usage: %s %s", c.name, c.usage)
	}
	if c.needsDevice && s.device == nil {
		return errNoDevice
	}
	return c.run(ctx, s, args, w)
}

func parseUint8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return uint8(v), nil
}
