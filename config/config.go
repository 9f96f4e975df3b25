// Package config handles the hf2 YAML configuration file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-hf2/hid"
)

// Config is the top-level configuration file.
//
//	devices:
//	  - vendor: 0x239A
//	    products: [0x0035, 0x002D]
//	replace_defaults: false
//	timeout: 5s
//	command_delay: 0s
//	log_level: info
type Config struct {
	// Devices extends (or replaces) the built-in allow-list
	Devices []DeviceEntry `yaml:"devices,omitempty"`

	// ReplaceDefaults drops the built-in allow-list when set
	ReplaceDefaults bool `yaml:"replace_defaults,omitempty"`

	// Timeout bounds the wait for each HID report
	Timeout Duration `yaml:"timeout,omitempty"`

	// CommandDelay pauses after every command
	CommandDelay Duration `yaml:"command_delay,omitempty"`

	// LogLevel is a zap level name (debug, info, warn, error)
	LogLevel string `yaml:"log_level,omitempty"`
}

// DeviceEntry lists the product IDs accepted for one vendor.
type DeviceEntry struct {
	Vendor   Uint16   `yaml:"vendor"`
	Products []Uint16 `yaml:"products"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Timeout:  Duration{hid.DefaultReadTimeout},
		LogLevel: "info",
	}
}

// AllowList builds the effective device allow-list.
func (c *Config) AllowList() hid.AllowList {
	extra := make(hid.AllowList, len(c.Devices))
	for _, d := range c.Devices {
		for _, p := range d.Products {
			extra[uint16(d.Vendor)] = append(extra[uint16(d.Vendor)], uint16(p))
		}
	}

	if c.ReplaceDefaults {
		return extra
	}
	return hid.DefaultAllowList.Merge(extra)
}

// Level returns the parsed log level.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(c.LogLevel)
}

// Validate checks field values that YAML decoding cannot.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.CommandDelay.Duration < 0 {
		return fmt.Errorf("command_delay must not be negative")
	}
	for _, d := range c.Devices {
		if len(d.Products) == 0 {
			return fmt.Errorf("vendor 0x%04X lists no products", uint16(d.Vendor))
		}
	}
	return nil
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "500ms".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = parsed
	return nil
}

// Uint16 is a 16-bit value written in hex ("0x239A") or decimal.
type Uint16 uint16

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Uint16) UnmarshalText(text []byte) error {
	v, err := parseUint(string(text), 16)
	if err != nil {
		return err
	}
	*u = Uint16(v)
	return nil
}

// UnmarshalYAML accepts YAML integers and strings alike.
func (u *Uint16) UnmarshalYAML(value *yaml.Node) error {
	return u.UnmarshalText([]byte(value.Value))
}

func (u Uint16) String() string {
	return fmt.Sprintf("0x%04X", uint16(u))
}

// Uint32 is a 32-bit value written in hex ("0x4000") or decimal.
type Uint32 uint32

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Uint32) UnmarshalText(text []byte) error {
	v, err := parseUint(string(text), 32)
	if err != nil {
		return err
	}
	*u = Uint32(v)
	return nil
}

// UnmarshalYAML accepts YAML integers and strings alike.
func (u *Uint32) UnmarshalYAML(value *yaml.Node) error {
	return u.UnmarshalText([]byte(value.Value))
}

func (u Uint32) String() string {
	return fmt.Sprintf("0x%08X", uint32(u))
}

func parseUint(s string, bits int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	// "0X" is accepted like "0x"
	if strings.HasPrefix(s, "0X") {
		s = "0x" + s[2:]
	}
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %d-bit number %q", bits, s)
	}
	return v, nil
}
