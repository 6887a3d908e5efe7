package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// File holds the optional YAML defaults file. Every field may be
// overridden by a command-line flag.
type File struct {
	Client   string `yaml:"client"`
	CacheDir string `yaml:"cacheDir"`
	CacheTTL string `yaml:"cacheTTL"`
	Timeout  string `yaml:"timeout"`
	Color    string `yaml:"color"`
	Format   string `yaml:"format"`
}

// DefaultPath is the per-user config location, empty when the user
// config dir cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tablestruct", "config.yaml")
}

// LoadFile reads the config file at path, or the default location when
// path is empty. A missing default file is not an error; a missing
// explicit file is.
func LoadFile(path string) (*File, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return &File{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &f, nil
}

// Options is the fully resolved run configuration, passed explicitly
// everywhere instead of living in package state.
type Options struct {
	Database string
	Tables   []string
	Columns  []string
	Format   string
	Stats    bool
	Output   string
	NoCache  bool
	Verbose  bool

	Client    string
	CacheDir  string
	CacheTTL  time.Duration
	Timeout   time.Duration
	ColorMode string
}

// PipeMode reports whether input comes from stdin instead of the client.
func (o *Options) PipeMode() bool { return o.Database == "" }

// ApplyFile fills unset options from the defaults file.
func (o *Options) ApplyFile(f *File) error {
	if o.Client == "" {
		o.Client = f.Client
	}
	if o.CacheDir == "" {
		o.CacheDir = f.CacheDir
	}
	if o.Format == "" && f.Format != "" {
		o.Format = f.Format
	}
	if o.ColorMode == "" && f.Color != "" {
		o.ColorMode = f.Color
	}
	if o.CacheTTL == 0 && f.CacheTTL != "" {
		d, err := time.ParseDuration(f.CacheTTL)
		if err != nil {
			return fmt.Errorf("config cacheTTL: %w", err)
		}
		o.CacheTTL = d
	}
	if o.Timeout == 0 && f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		o.Timeout = d
	}
	return nil
}

func (o *Options) Validate() error {
	switch o.Format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("invalid format %q (want table, json or csv)", o.Format)
	}
	switch o.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", o.ColorMode)
	}
	if o.Database != "" && len(o.Tables) == 0 {
		return errors.New("at least one table name is required")
	}
	if o.PipeMode() && o.Stats {
		return errors.New("--stats requires a database and table, not piped input")
	}
	if o.CacheTTL < 0 {
		return errors.New("cache TTL must not be negative")
	}
	return nil
}

// SplitColumns parses the --columns value into trimmed names,
// dropping empty entries.
func SplitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
