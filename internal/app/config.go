package app

import (
	"errors"
	"fmt"

	"github.com/vk/stladder/internal/report"
)

// StdinSource selects standard input as the source.
const StdinSource = "-"

// Config holds everything an App needs to run.
type Config struct {
	// Source is a .st file, StdinSource or a directory for batch mode.
	Source string
	// ConfigPath is an optional HCL settings file or directory.
	ConfigPath string
	Format     report.Format
	// PLCType overrides the configured default family when set.
	PLCType string

	Serve bool
	// Port overrides the configured server port when positive.
	Port   int
	REPL   bool
	Remote string

	OutDir         string
	Workers        int
	UnwrapPrograms bool

	LogFormat string
	LogLevel  string
}

// Mode is what Run does.
type Mode int

const (
	ModeFile Mode = iota
	ModeBatch
	ModeRemote
	ModeREPL
	ModeServe
)

func (m Mode) String() string {
	return [...]string{"file", "batch", "remote", "repl", "serve"}[m]
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Serve && cfg.REPL {
		return nil, errors.New("choose only one of -serve and -repl")
	}
	if (cfg.Serve || cfg.REPL) && cfg.Source != "" {
		return nil, errors.New("a SOURCE cannot be combined with -serve or -repl")
	}
	if !cfg.Serve && !cfg.REPL && cfg.Source == "" {
		return nil, errors.New("SOURCE is required unless -serve or -repl is given")
	}
	if cfg.Remote != "" && (cfg.Serve || cfg.REPL) {
		return nil, errors.New("-remote only applies to a SOURCE file")
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d is out of range", cfg.Port)
	}
	if cfg.Format == "" {
		cfg.Format = report.FormatText
	}
	if _, err := report.ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Mode derives the run mode. Whether a source is a directory is decided at
// run time.
func (c *Config) Mode() Mode {
	switch {
	case c.Serve:
		return ModeServe
	case c.REPL:
		return ModeREPL
	case c.Remote != "":
		return ModeRemote
	default:
		return ModeFile
	}
}
