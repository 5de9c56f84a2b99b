// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/ffutop/servocomm/client"
)

const (
	sessionKey       = "$session"
	unselectedPrompt = "[none] > "
)

// Shell provides the ishell backed command line.
type Shell struct {
	Shell  *ishell.Shell
	failed bool
}

func NewShell(sess *session) *Shell {
	s := &Shell{
		Shell: ishell.New(),
	}
	s.Shell.Set(sessionKey, sess)
	s.Shell.SetPrompt(unselectedPrompt)
	sess.onSelect = func(d *client.Device) {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", d))
	}
	for _, c := range commands {
		s.Shell.AddCmd(s.wrap(c))
	}
	return s
}

func (s *Shell) wrap(c *command) *ishell.Cmd {
	help := c.help
	if c.usage != "" {
		help = c.usage + "  " + help
	}
	return &ishell.Cmd{
		Name:    c.name,
		Aliases: c.aliases,
		Help:    help,
		Func: func(ctx *ishell.Context) {
			var out bytes.Buffer
			err := c.exec(context.Background(), ctx.Get(sessionKey).(*session), ctx.Args, &out)
			if out.Len() > 0 {
				ctx.Print(out.String())
			}
			if err != nil {
				s.failed = true
				ctx.Err(err)
			}
		},
	}
}

// Run processes args as a single command, or starts the interactive
// shell when args is empty. It reports whether every command succeeded.
func (s *Shell) Run(args ...string) bool {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			s.Shell.Println(err)
			return false
		}
		return !s.failed
	}
	s.Shell.Println("servoctl, type 'help' for commands: " + strings.Join(commandNames(), ", "))
	s.Shell.Run()
	return true
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}
