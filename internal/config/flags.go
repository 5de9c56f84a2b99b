// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"link":           "link.type",
	"driver":         "link.driver",
	"port":           "link.serial.device",
	"baud_rate":      "link.serial.baud_rate",
	"parity":         "link.serial.parity",
	"address":        "link.tcp.address",
	"master_timeout": "protocol.master_timeout",
	"log_level":      "log.level",
	"log_file":       "log.file",
}

// BindFlags defines the flags shared by the daemon and servoctl on fs and
// binds them to v. Flag defaults are taken from v, so NewViper must have
// run first. Values from fs win over the config file once fs is parsed.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.StringP("link", "l", v.GetString("link.type"), "Link type (serial, tcp).")
	fs.String("driver", v.GetString("link.driver"), "Serial driver (grid-x, tarm).")
	fs.StringP("port", "p", v.GetString("link.serial.device"), "Serial port device name.")
	fs.IntP("baud_rate", "s", v.GetInt("link.serial.baud_rate"), "Serial port speed.")
	fs.String("parity", v.GetString("link.serial.parity"), "Serial parity (N, E, O).")
	fs.StringP("address", "a", v.GetString("link.tcp.address"), "TCP address of the serial-over-TCP link.")
	fs.DurationP("master_timeout", "W", v.GetDuration("protocol.master_timeout"), "Master response wait time.")
	fs.StringP("log_level", "v", v.GetString("log.level"), "Log verbosity level (debug, info, warn, error).")
	fs.StringP("log_file", "L", v.GetString("log.file"), "Log file name ('-' for logging to STDOUT only).")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}
