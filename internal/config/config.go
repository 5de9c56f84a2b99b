// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ffutop/servocomm/params"
	"github.com/ffutop/servocomm/protocol"
	"github.com/ffutop/servocomm/protocol/packet"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config defines the global configuration structure
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Link     LinkConfig     `mapstructure:"link"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Device   DeviceConfig   `mapstructure:"device"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// LinkConfig selects the byte link between master and slave
type LinkConfig struct {
	Type   string       `mapstructure:"type"`   // "serial", "tcp"
	Driver string       `mapstructure:"driver"` // serial driver: "grid-x", "tarm"
	Serial SerialConfig `mapstructure:"serial"` // Used if Type is "serial"
	Tcp    TcpConfig    `mapstructure:"tcp"`    // Used if Type is "tcp"
}

// TcpConfig defines a serial-over-TCP link, e.g. a serial device server
type TcpConfig struct {
	Address string        `mapstructure:"address"` // e.g. "192.168.1.100:4001"
	Timeout time.Duration `mapstructure:"timeout"` // Dial timeout
}

// SerialConfig defines UART settings
type SerialConfig struct {
	Device   string        `mapstructure:"device"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"`
	StopBits int           `mapstructure:"stop_bits"`
	Timeout  time.Duration `mapstructure:"timeout"` // Driver read timeout

	// RS485 specific, grid-x driver only
	RS485              bool          `mapstructure:"rs485"`
	DelayRtsBeforeSend time.Duration `mapstructure:"delay_rts_before_send"`
	DelayRtsAfterSend  time.Duration `mapstructure:"delay_rts_after_send"`
	RtsHighDuringSend  bool          `mapstructure:"rts_high_during_send"`
	RtsHighAfterSend   bool          `mapstructure:"rts_high_after_send"`
	RxDuringTx         bool          `mapstructure:"rx_during_tx"`
}

// ProtocolConfig defines the exchange timeouts
type ProtocolConfig struct {
	MasterTimeout   time.Duration `mapstructure:"master_timeout"`
	SlaveTimeout    time.Duration `mapstructure:"slave_timeout"`
	DisableTimeouts bool          `mapstructure:"disable_timeouts"` // For links with flow control
	PollInterval    time.Duration `mapstructure:"poll_interval"`    // Idle sleep between empty polls
	FrameTimeout    time.Duration `mapstructure:"frame_timeout"`    // Slave drops partial frames older than this
}

// DeviceConfig defines the slave device served by the daemon
type DeviceConfig struct {
	ID              uint8             `mapstructure:"id"`
	Capacity        int               `mapstructure:"capacity"`
	HandlerCapacity int               `mapstructure:"handler_capacity"`
	Arena           ArenaConfig       `mapstructure:"arena"`
	Parameters      []ParameterConfig `mapstructure:"parameters"`
}

// ArenaConfig defines where parameter values live
type ArenaConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap"
	Path string `mapstructure:"path"` // File path for "file/mmap" type
}

// ParameterConfig declares one parameter of the device
type ParameterConfig struct {
	ID     uint8  `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	Type   string `mapstructure:"type"`   // uint8 ... floating_point, double_float, boolean
	Access string `mapstructure:"access"` // read_only, write_only, read_write
	Value  any    `mapstructure:"value"`  // Initial value
}

// NewViper returns a viper instance with all defaults set.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("link.type", "serial")
	v.SetDefault("link.driver", "grid-x")
	v.SetDefault("link.serial.device", "/dev/ttyUSB0")
	v.SetDefault("link.serial.baud_rate", 115200)
	v.SetDefault("link.serial.data_bits", 8)
	v.SetDefault("link.serial.parity", "N")
	v.SetDefault("link.serial.stop_bits", 1)
	v.SetDefault("link.serial.timeout", 10*time.Millisecond)
	v.SetDefault("link.tcp.address", "127.0.0.1:4001")
	v.SetDefault("link.tcp.timeout", 5*time.Second)
	v.SetDefault("protocol.master_timeout", protocol.DefaultMasterTimeout)
	v.SetDefault("protocol.slave_timeout", protocol.DefaultSlaveTimeout)
	v.SetDefault("protocol.poll_interval", 200*time.Microsecond)
	v.SetDefault("device.id", 1)
	v.SetDefault("device.capacity", 64)
	v.SetDefault("device.handler_capacity", 16)
	v.SetDefault("device.arena.type", "memory")

	return v
}

// LoadConfig loads configuration from file
func LoadConfig(configFile string) (*Config, error) {
	return Load(NewViper(), configFile)
}

// Load reads configFile into v and decodes the result. With an empty
// configFile the usual locations are searched and a missing file is not an
// error, so flags bound to v can carry the whole configuration.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/servocomm/")
		v.AddConfigPath("$HOME/.servocomm")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate / Fixups
	fixupSerial(&config.Link.Serial)
	fixupProtocol(&config.Protocol)
	fixupDevice(&config.Device)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.Timeout == 0 {
		s.Timeout = 10 * time.Millisecond
	}
}

func fixupProtocol(p *ProtocolConfig) {
	if p.MasterTimeout == 0 {
		p.MasterTimeout = protocol.DefaultMasterTimeout
	}
	if p.SlaveTimeout == 0 {
		p.SlaveTimeout = p.MasterTimeout / 2
	}
	if p.FrameTimeout == 0 {
		p.FrameTimeout = p.MasterTimeout
	}
}

func fixupDevice(d *DeviceConfig) {
	if d.Capacity < len(d.Parameters) {
		d.Capacity = len(d.Parameters)
	}
	d.Arena.Type = strings.ToLower(d.Arena.Type)
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	switch c.Link.Type {
	case "serial", "tcp":
	default:
		return fmt.Errorf("%w: unknown link type %q", ErrInvalidConfig, c.Link.Type)
	}
	switch c.Link.Driver {
	case "grid-x", "tarm":
	default:
		return fmt.Errorf("%w: unknown serial driver %q", ErrInvalidConfig, c.Link.Driver)
	}
	switch c.Link.Serial.Parity {
	case "N", "E", "O":
	default:
		return fmt.Errorf("%w: unknown parity %q", ErrInvalidConfig, c.Link.Serial.Parity)
	}

	if !c.Protocol.DisableTimeouts {
		if err := protocol.ValidateTimeouts(c.Protocol.MasterTimeout, c.Protocol.SlaveTimeout); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	switch c.Device.Arena.Type {
	case "memory":
	case "file", "mmap":
		if c.Device.Arena.Path == "" {
			return fmt.Errorf("%w: arena type %q needs a path", ErrInvalidConfig, c.Device.Arena.Type)
		}
	default:
		return fmt.Errorf("%w: unknown arena type %q", ErrInvalidConfig, c.Device.Arena.Type)
	}

	// get_all_registered_parameter_ids answers with one byte per id.
	if c.Device.Capacity > packet.MaxPayloadSize {
		return fmt.Errorf("%w: device capacity %d exceeds %d", ErrInvalidConfig, c.Device.Capacity, packet.MaxPayloadSize)
	}

	seen := make(map[uint8]bool, len(c.Device.Parameters))
	for i := range c.Device.Parameters {
		p := &c.Device.Parameters[i]
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate parameter id %d", ErrInvalidConfig, p.ID)
		}
		seen[p.ID] = true
		if _, err := p.Parse(); err != nil {
			return fmt.Errorf("%w: parameter %d: %w", ErrInvalidConfig, p.ID, err)
		}
	}
	return nil
}

// ParsedParameter is a ParameterConfig with its strings resolved.
type ParsedParameter struct {
	Meta params.MetaData
	// Value has the Go type matching Meta.Type, or is nil if none was given.
	Value any
}

// Parse resolves type, access and initial value.
func (p *ParameterConfig) Parse() (ParsedParameter, error) {
	typ, err := params.ParseType(p.Type)
	if err != nil {
		return ParsedParameter{}, err
	}
	access, err := params.ParseAccess(p.Access)
	if err != nil {
		return ParsedParameter{}, err
	}
	if len(p.Name) > params.MaxNameLength {
		return ParsedParameter{}, fmt.Errorf("%w: %q", params.ErrNameTooLong, p.Name)
	}

	out := ParsedParameter{
		Meta: params.MetaData{ID: p.ID, Type: typ, Access: access, Name: p.Name},
	}
	if p.Value != nil {
		if out.Value, err = params.Coerce(typ, p.Value); err != nil {
			return ParsedParameter{}, err
		}
	}
	return out, nil
}
