// Package config resolves the probe configuration from defaults, the
// environment (optionally seeded from a .env file) and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application identifier.
	AppName = "netrate"

	// DefaultPrefix is the alternate output directory.
	DefaultPrefix = "/tmp"
	// DefaultIntervalSeconds is the default time between samples.
	DefaultIntervalSeconds = 5

	DefaultSendTotalFilename    = "netrate_send_total"
	DefaultRecvTotalFilename    = "netrate_recv_total"
	DefaultSendIntervalFilename = "netrate_send_interval"
	DefaultRecvIntervalFilename = "netrate_recv_interval"
	DefaultPIDFilename          = "netrate_pid"

	// DefaultProcNetDev is the kernel interface statistics table.
	DefaultProcNetDev = "/proc/net/dev"

	// RuntimeDirEnv names the directory used when the alternate prefix is off.
	RuntimeDirEnv = "XDG_RUNTIME_DIR"

	envPrefix  = "NETRATE_"
	dotEnvFile = ".env"
)

// ErrRuntimeDirUnset is returned when neither XDG_RUNTIME_DIR nor an alternate
// prefix provides an output directory.
var ErrRuntimeDirUnset = errors.New(RuntimeDirEnv + " is not set; use --enable-alt-prefix or --prefix")

// Config is the complete probe configuration.
type Config struct {
	Interface string

	// DisableScaling writes raw byte counts to the interval files.
	// Scaling is on by default.
	DisableScaling bool

	EnableAltPrefix bool
	Prefix          string

	SendTotalFilename    string
	RecvTotalFilename    string
	SendIntervalFilename string
	RecvIntervalFilename string
	// PIDFilename may be empty to skip writing a PID file.
	PIDFilename string

	IntervalSeconds int
	ProcNetDev      string

	ShowVersion bool
}

// DefaultConfig returns a configuration with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Prefix:               DefaultPrefix,
		SendTotalFilename:    DefaultSendTotalFilename,
		RecvTotalFilename:    DefaultRecvTotalFilename,
		SendIntervalFilename: DefaultSendIntervalFilename,
		RecvIntervalFilename: DefaultRecvIntervalFilename,
		PIDFilename:          DefaultPIDFilename,
		IntervalSeconds:      DefaultIntervalSeconds,
		ProcNetDev:           DefaultProcNetDev,
	}
}

// Load builds the configuration from args (without the program name).
// A .env file in the working directory, if present, seeds the environment
// without overriding variables that are already set. Flags win over the
// environment. flag.ErrHelp is returned unchanged when -h is given.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvFile, err)
	}
	return parse(args, os.LookupEnv, os.Stderr)
}

func parse(args []string, lookup func(string) (string, bool), output io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	fset := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fset.SetOutput(output)
	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), "Usage: %s [flags] INTERFACE\n\nFlags:\n", AppName)
		fset.PrintDefaults()
	}
	cfg.registerFlags(fset)

	// The interface may appear before, between or after the flags.
	var positional []string
	rest := args
	for {
		if err := fset.Parse(rest); err != nil {
			return nil, err
		}
		rest = fset.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		rest = rest[1:]
	}

	fset.Visit(func(f *flag.Flag) {
		if f.Name == "p" || f.Name == "prefix" {
			cfg.EnableAltPrefix = true
		}
	})

	switch len(positional) {
	case 0:
	case 1:
		cfg.Interface = positional[0]
	default:
		return nil, fmt.Errorf("expected one interface argument, got %d: %s", len(positional), strings.Join(positional, " "))
	}

	if cfg.ShowVersion {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) registerFlags(fset *flag.FlagSet) {
	boolFlag := func(p *bool, short, long, usage string) {
		fset.BoolVar(p, short, *p, usage+" (shorthand)")
		fset.BoolVar(p, long, *p, usage)
	}
	stringFlag := func(p *string, short, long, usage string) {
		if short != "" {
			fset.StringVar(p, short, *p, usage+" (shorthand)")
		}
		fset.StringVar(p, long, *p, usage)
	}

	boolFlag(&c.DisableScaling, "c", "disable-scaling", "Disables byte scaling into interval files")
	boolFlag(&c.EnableAltPrefix, "e", "enable-alt-prefix", "Enable use of alternate prefix instead of "+RuntimeDirEnv)
	stringFlag(&c.Prefix, "p", "prefix", "Prefix to use instead of "+RuntimeDirEnv+"; setting it enables it")
	stringFlag(&c.SendTotalFilename, "u", "send-total", "Filename of total bytes sent (in prefix dir)")
	stringFlag(&c.RecvTotalFilename, "d", "recv-total", "Filename of total bytes received (in prefix dir)")
	stringFlag(&c.SendIntervalFilename, "s", "send-interval", "Filename of interval bytes sent (in prefix dir)")
	stringFlag(&c.RecvIntervalFilename, "r", "recv-interval", "Filename of interval bytes received (in prefix dir)")
	stringFlag(&c.PIDFilename, "i", "pid-filename", "Filename to write pid to (in prefix dir), empty to disable")
	fset.IntVar(&c.IntervalSeconds, "v", c.IntervalSeconds, "Interval in seconds between checking network rate (shorthand)")
	fset.IntVar(&c.IntervalSeconds, "interval-seconds", c.IntervalSeconds, "Interval in seconds between checking network rate")
	stringFlag(&c.ProcNetDev, "", "proc-net-dev", "Path of the kernel interface statistics table")
	fset.BoolVar(&c.ShowVersion, "version", false, "Show version and exit")
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return strings.TrimSpace(v), ok
	}

	if v, ok := env("INTERFACE"); ok && v != "" {
		c.Interface = v
	}
	for name, p := range map[string]*string{
		"SEND_TOTAL":    &c.SendTotalFilename,
		"RECV_TOTAL":    &c.RecvTotalFilename,
		"SEND_INTERVAL": &c.SendIntervalFilename,
		"RECV_INTERVAL": &c.RecvIntervalFilename,
		"PROC_NET_DEV":  &c.ProcNetDev,
	} {
		if v, ok := env(name); ok && v != "" {
			*p = v
		}
	}
	// An explicitly empty PID filename disables the PID file.
	if v, ok := env("PID_FILENAME"); ok {
		c.PIDFilename = v
	}

	for name, p := range map[string]*bool{
		"DISABLE_SCALING":   &c.DisableScaling,
		"ENABLE_ALT_PREFIX": &c.EnableAltPrefix,
	} {
		v, ok := env(name)
		if !ok || v == "" {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
		}
		*p = b
	}

	// Naming a prefix implies using it.
	if v, ok := env("PREFIX"); ok && v != "" {
		c.Prefix = v
		c.EnableAltPrefix = true
	}

	if v, ok := env("INTERVAL_SECONDS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sINTERVAL_SECONDS: %w", envPrefix, err)
		}
		c.IntervalSeconds = n
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", v)
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Interface) == "" {
		return fmt.Errorf("interface name is required")
	}
	if c.IntervalSeconds < 1 {
		return fmt.Errorf("interval seconds must be at least 1, got %d", c.IntervalSeconds)
	}
	if c.EnableAltPrefix && c.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if c.ProcNetDev == "" {
		return fmt.Errorf("statistics table path must not be empty")
	}
	for _, f := range []struct{ flag, name string }{
		{"send-total", c.SendTotalFilename},
		{"recv-total", c.RecvTotalFilename},
		{"send-interval", c.SendIntervalFilename},
		{"recv-interval", c.RecvIntervalFilename},
	} {
		if err := validateFilename(f.name); err != nil {
			return fmt.Errorf("%s: %w", f.flag, err)
		}
	}
	if c.PIDFilename != "" {
		if err := validateFilename(c.PIDFilename); err != nil {
			return fmt.Errorf("pid-filename: %w", err)
		}
	}
	return nil
}

func validateFilename(name string) error {
	switch {
	case name == "":
		return errors.New("filename must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid filename %q", name)
	case strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("filename %q must not contain a path separator", name)
	}
	return nil
}

// Interval returns the sampling interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ScalingEnabled reports whether interval files get B/KB/MB values.
func (c *Config) ScalingEnabled() bool {
	return !c.DisableScaling
}
