// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger for the requested verbosity. Debug wins over
// quiet when both are set.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// Options holds the command line settings of a run.
type Options struct {
	Input  string // unheadered cartridge image
	Output string // rebuilt image, empty to skip saving

	RenderDir string // directory for PNG output, empty to skip rendering
	Area      int    // area to composite, -1 for none
	Room      uint32 // single room to render, 0 for every loaded room

	Relocate bool // recompress palettes and levels before writing Output

	Debug bool
	Quiet bool
}
