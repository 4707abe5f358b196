// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2gbs/internal/options"
)

// File represents a vgm2gbs.toml configuration file.
type File struct {
	Template  string `toml:"template"`
	Rate      int    `toml:"rate"`
	TMAOffset int    `toml:"tma_offset"`
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadFile applies the settings of the configuration file at path to opts.
// Settings that are not defined in the file keep their current value.
func LoadFile(path string, opts *options.Program) error {
	var file File
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown setting %q in config file %s", undecoded[0].String(), path)
	}

	if md.IsDefined("template") {
		opts.Template = file.Template
	}
	if md.IsDefined("rate") {
		opts.EngineRate = file.Rate
	}
	if md.IsDefined("tma_offset") {
		opts.TMAOffset = file.TMAOffset
	}
	return nil
}

// ApplyEnv applies the settings of set environment variables to opts.
func ApplyEnv(opts *options.Program) error {
	if err := env.Parse(opts); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}
