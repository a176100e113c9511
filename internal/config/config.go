package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jhau/s7150duo/internal/errors"
)

const (
	defaultAddress1 = 16
	defaultAddress2 = 12
	defaultDelay    = 10 // in 0.1 s units
	defaultFlush    = 100
	defaultGnuplot  = "gnuplot"
	defaultPort1    = "/dev/ttyUSB0"
	defaultPort2    = "/dev/ttyUSB1"

	maxAddress = 30
	maxDelay   = 600

	DefaultLogLevel = "info"
)

// Config holds the session configuration. It is constructed once from the
// command line (optionally seeded from a TOML file) and read-only thereafter.
type Config struct {
	Port1       string  `mapstructure:"port1"`
	Port2       string  `mapstructure:"port2"`
	Address1    int     `mapstructure:"address1"`
	Address2    int     `mapstructure:"address2"`
	Mode1       int     `mapstructure:"mode1"`
	Mode2       int     `mapstructure:"mode2"`
	Delay       int     `mapstructure:"delay"`
	Display     bool    `mapstructure:"display"`
	FlushEvery  int     `mapstructure:"flush"`
	Overwrite   bool    `mapstructure:"overwrite"`
	StopAfter   float64 `mapstructure:"stop"`
	Comment     string  `mapstructure:"comment"`
	Gnuplot     string  `mapstructure:"gnuplot"`
	NoGraph     bool    `mapstructure:"nograph"`
	Telemetry   bool    `mapstructure:"telemetry"`
	TelemetryDB string  `mapstructure:"database"`
	LogLevel    string  `mapstructure:"log_level"`
	Debug       bool    `mapstructure:"debug"`
	Verbose     bool    `mapstructure:"verbose"`

	// DataFile is the positional output file argument.
	DataFile string `mapstructure:"-"`
}

// Load parses the given command line (normally os.Args[1:]), merges in the
// optional config file and returns the validated session configuration.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("s7150duo", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() { printUsage(fs) }

	fs.StringP("port1", "p", defaultPort1, "serial port of the GPIB adapter for instrument 1")
	fs.StringP("port2", "P", defaultPort2, "serial port of the GPIB adapter for instrument 2")
	fs.IntP("address1", "a", defaultAddress1, "GPIB address of instrument 1")
	fs.IntP("address2", "A", defaultAddress2, "GPIB address of instrument 2")
	fs.IntP("mode1", "m", ModeDCV, "measurement mode instrument 1 (0=DCV 1=ACV 2=Ohm 3=DCA 4=ACA 5=Diode 6=DegC 7=DegF)")
	fs.IntP("mode2", "M", ModeDCA, "measurement mode instrument 2")
	fs.IntP("delay", "t", defaultDelay, "delay between measurements in 0.1 s (0 = free-running)")
	fs.BoolP("no-display", "d", false, "disable the instrument displays")
	fs.IntP("flush", "w", defaultFlush, "force write to disk every N samples")
	fs.BoolP("force", "f", false, "force overwriting of an existing data file")
	fs.Float64P("stop", "T", 0, "stop acquisition after this many minutes (0 = endless)")
	fs.StringP("comment", "c", "", "comment text for the data file header")
	fs.StringP("gnuplot", "g", defaultGnuplot, "path to the gnuplot executable")
	fs.BoolP("no-graph", "n", false, "disable the live plot")
	fs.Bool("telemetry", false, "mirror samples into a SQLite database")
	fs.String("database", "", "path to the telemetry database")
	fs.String("log-level", "", "log level (debug, info, warning, error)")
	fs.Bool("debug", false, "enable debugging mode")
	fs.Bool("verbose", false, "enable verbose logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	v := viper.New()
	v.SetDefault("display", true)
	v.SetDefault("log_level", DefaultLogLevel)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	if err := v.BindPFlags(fs); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	// The "no-display" and "no-graph" flags carry inverted sense.
	cfg.Display = !v.GetBool("no-display")
	cfg.NoGraph = v.GetBool("no-graph")
	cfg.Overwrite = v.GetBool("force")
	cfg.LogLevel = v.GetString("log-level")
	if cfg.LogLevel == "" {
		cfg.LogLevel = v.GetString("log_level")
	}

	if fs.NArg() < 1 {
		return nil, errFactory.New(errors.ErrMissingFile)
	}
	cfg.DataFile = fs.Arg(0)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readConfigFile merges the optional TOML config file into v. A missing file
// is not an error; an unreadable or malformed one is.
func readConfigFile(v *viper.Viper) error {
	errFactory := errors.New()

	if path := os.Getenv("S7150DUO_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("s7150duo")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
	}

	return nil
}

// Validate checks the configuration against the instrument and bus limits.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Address1 < 0 || c.Address1 > maxAddress || c.Address2 < 0 || c.Address2 > maxAddress {
		return errFactory.WithMessage(ErrInvalidAddress,
			fmt.Sprintf("primary address must be between 0 and %d", maxAddress))
	}
	if c.Port1 == c.Port2 {
		return errFactory.New(ErrPortConflict)
	}
	if c.Mode1 < ModeDCV || c.Mode1 > ModeDegF {
		return errFactory.WithData(ErrInvalidMode, c.Mode1)
	}
	if c.Mode2 < ModeDCV || c.Mode2 > ModeDegF {
		return errFactory.WithData(ErrInvalidMode, c.Mode2)
	}
	if c.Delay < 0 || c.Delay > maxDelay {
		return errFactory.WithMessage(ErrInvalidDelay,
			fmt.Sprintf("delay must be 0 ... %d (1/10 s)", maxDelay))
	}
	if c.FlushEvery < 1 {
		return errFactory.WithData(ErrInvalidFlush, c.FlushEvery)
	}
	if c.StopAfter < 0 {
		return errFactory.New(ErrInvalidStop)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.New(ErrMissingDatabase)
	}
	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errors.New().WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

func printUsage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "\nSyntax: s7150duo [flags] datafile\n\n%s\n", fs.FlagUsages())
}
