// Package options holds the option set of one compiler instance.
//
// Values come from, in increasing priority: defaults, the nearest c2c.toml,
// command-line flags or the option string of a service request.
package options

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"golang.org/x/text/unicode/norm"

	"c2c/internal/abi"
	"c2c/internal/diag"
	"c2c/internal/emit"
	"c2c/internal/trace"
)

// FileName is the configuration file searched upward from the working
// directory.
const FileName = "c2c.toml"

// Options is the option set of one compiler instance.
type Options struct {
	Device  string `toml:"device"`
	Dialect string `toml:"dialect"`

	Reentrant    bool   `toml:"reentrant"`
	LinkRequired bool   `toml:"link_required"`
	Header       string `toml:"header"`
	OutputDir    string `toml:"output_dir"`

	// AllowFunctionRedefinition keeps the last of two definitions of a
	// function in one module instead of reporting an error.
	AllowFunctionRedefinition bool `toml:"allow_function_redefinition"`

	MaxErrors int `toml:"max_errors"`
	Verbosity int `toml:"verbosity"`
	Jobs      int `toml:"jobs"`

	TraceLevel  string `toml:"trace_level"`
	TraceOutput string `toml:"trace_output"`
}

// fileConfig is the layout of c2c.toml.
type fileConfig struct {
	Target struct {
		Device  string `toml:"device"`
		Dialect string `toml:"dialect"`
	} `toml:"target"`
	Link struct {
		Required                  bool   `toml:"required"`
		Reentrant                 bool   `toml:"reentrant"`
		Header                    string `toml:"header"`
		OutputDir                 string `toml:"output_dir"`
		AllowFunctionRedefinition bool   `toml:"allow_function_redefinition"`
	} `toml:"link"`
	Diagnostics struct {
		MaxErrors int `toml:"max_errors"`
		Verbosity int `toml:"verbosity"`
	} `toml:"diagnostics"`
	Build struct {
		Jobs int `toml:"jobs"`
	} `toml:"build"`
	Trace struct {
		Level  string `toml:"level"`
		Output string `toml:"output"`
	} `toml:"trace"`
}

func Default() Options {
	return Options{
		Device:       abi.DeviceC64.String(),
		Dialect:      abi.DialectC.String(),
		LinkRequired: true,
		Header:       emit.DefaultHeader,
		OutputDir:    ".",
		MaxErrors:    diag.DefaultMaxErrors,
		TraceLevel:   trace.LevelOff.String(),
		TraceOutput:  "-",
	}
}

// Find walks up from startDir to locate c2c.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load returns the defaults overlaid with the nearest c2c.toml, if any.
func Load(startDir string) (Options, string, error) {
	o := Default()
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return o, "", err
	}
	if err := o.LoadFile(path); err != nil {
		return o, path, err
	}
	return o, path, nil
}

// LoadFile overlays the keys defined in path; absent keys keep their value.
func (o *Options) LoadFile(path string) error {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		return fmt.Errorf("%s: unknown key %s", path, keys[0])
	}
	set := func(dst *string, v string, key ...string) {
		if meta.IsDefined(key...) {
			*dst = strings.TrimSpace(v)
		}
	}
	setBool := func(dst *bool, v bool, key ...string) {
		if meta.IsDefined(key...) {
			*dst = v
		}
	}
	setInt := func(dst *int, v int, key ...string) {
		if meta.IsDefined(key...) {
			*dst = v
		}
	}
	set(&o.Device, cfg.Target.Device, "target", "device")
	set(&o.Dialect, cfg.Target.Dialect, "target", "dialect")
	setBool(&o.LinkRequired, cfg.Link.Required, "link", "required")
	setBool(&o.Reentrant, cfg.Link.Reentrant, "link", "reentrant")
	set(&o.Header, cfg.Link.Header, "link", "header")
	set(&o.OutputDir, cfg.Link.OutputDir, "link", "output_dir")
	setBool(&o.AllowFunctionRedefinition, cfg.Link.AllowFunctionRedefinition, "link", "allow_function_redefinition")
	setInt(&o.MaxErrors, cfg.Diagnostics.MaxErrors, "diagnostics", "max_errors")
	setInt(&o.Verbosity, cfg.Diagnostics.Verbosity, "diagnostics", "verbosity")
	setInt(&o.Jobs, cfg.Build.Jobs, "build", "jobs")
	set(&o.TraceLevel, cfg.Trace.Level, "trace", "level")
	set(&o.TraceOutput, cfg.Trace.Output, "trace", "output")
	if err := o.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// RegisterFlags binds the options to fs; current values become the defaults.
func (o *Options) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Device, "device", o.Device, "target device profile (ilp32|lp64)")
	fs.StringVar(&o.Dialect, "dialect", o.Dialect, "source dialect (c|opencl)")
	fs.BoolVar(&o.Reentrant, "reentrant", o.Reentrant, "extract file-scope state into shared instance data")
	fs.BoolVar(&o.LinkRequired, "link-required", o.LinkRequired, "report unresolved externs and multiple definitions as errors")
	fs.StringVar(&o.Header, "header", o.Header, "name of the generated instance-data header")
	fs.StringVarP(&o.OutputDir, "output", "o", o.OutputDir, "directory for generated files")
	fs.BoolVar(&o.AllowFunctionRedefinition, "allow-function-redefinition", o.AllowFunctionRedefinition, "accept a second definition of a function in one module")
	fs.IntVar(&o.MaxErrors, "max-errors", o.MaxErrors, "abort after this many errors")
	fs.IntVarP(&o.Verbosity, "verbose", "v", o.Verbosity, "verbosity (-1 hides warnings, 1 shows messages)")
	fs.IntVarP(&o.Jobs, "jobs", "j", o.Jobs, "parallel module builds (0 = GOMAXPROCS)")
	fs.StringVar(&o.TraceLevel, "trace-level", o.TraceLevel, "trace level (off|error|phase|detail|debug)")
	fs.StringVar(&o.TraceOutput, "trace", o.TraceOutput, "trace output path (- for stderr)")
}

// ParseArgs parses the option string of a service request on top of base.
// It returns the updated options and the positional arguments.
func ParseArgs(base Options, s string) (Options, []string, error) {
	o := base
	fs := pflag.NewFlagSet("request", pflag.ContinueOnError)
	fs.SetOutput(discard{})
	o.RegisterFlags(fs)
	if err := fs.Parse(strings.Fields(norm.NFC.String(s))); err != nil {
		return base, nil, fmt.Errorf("invalid option string: %w", err)
	}
	if err := o.Validate(); err != nil {
		return base, nil, err
	}
	return o, fs.Args(), nil
}

// Validate checks the enumerated values.
func (o *Options) Validate() error {
	if _, err := abi.ParseDevice(o.Device); err != nil {
		return err
	}
	if dev, _ := abi.ParseDevice(o.Device); dev == abi.DeviceOCL {
		return fmt.Errorf("device %q is a source profile, not a target", o.Device)
	}
	if _, err := abi.ParseDialect(o.Dialect); err != nil {
		return err
	}
	if _, err := trace.ParseLevel(o.TraceLevel); err != nil {
		return err
	}
	if o.MaxErrors < 0 {
		return fmt.Errorf("max_errors must not be negative, got %d", o.MaxErrors)
	}
	if o.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", o.Jobs)
	}
	if strings.ContainsAny(o.Header, `/\`) {
		return fmt.Errorf("header %q must be a file name", o.Header)
	}
	return nil
}

// ABIPair resolves the source and target ABIs.
func (o *Options) ABIPair() (abi.Pair, abi.Dialect) {
	dev, _ := abi.ParseDevice(o.Device)
	dialect, _ := abi.ParseDialect(o.Dialect)
	return abi.PairFor(dialect, dev), dialect
}

// Trace builds the trace configuration.
func (o *Options) Trace() trace.Config {
	level, _ := trace.ParseLevel(o.TraceLevel)
	return trace.Config{Level: level, OutputPath: o.TraceOutput}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
