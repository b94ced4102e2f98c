package options

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wuxler/rregistry/pkg/cmdhelper"
	"github.com/wuxler/rregistry/pkg/xlog"
)

// LogFlagCategory is the category of the logging flags.
const LogFlagCategory = "[Log]"

// NewCommonOptions returns a *CommonOptions with default values.
func NewCommonOptions() *CommonOptions {
	return &CommonOptions{
		LogLevel:  "info",
		LogFormat: xlog.FormatText,
	}
}

// CommonOptions are options that are common to all commands.
type CommonOptions struct {
	Debug     bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
	LogFile   string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// Flags returns the []cli.Flag related to current options.
func (o *CommonOptions) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Sources:     cli.EnvVars("RREGISTRY_DEBUG"),
			Usage:       "enable debug mode, same as --log-level=debug",
			Destination: &o.Debug,
			Category:    LogFlagCategory,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Sources:     cli.EnvVars("RREGISTRY_LOG_LEVEL"),
			Usage:       `log level, oneof ["debug", "info", "warn", "error"]`,
			Value:       o.LogLevel,
			Destination: &o.LogLevel,
			Category:    LogFlagCategory,
			Validator: func(s string) error {
				_, err := xlog.ParseLevel(s)
				return err
			},
		},
		&cli.StringFlag{
			Name:        "log-format",
			Sources:     cli.EnvVars("RREGISTRY_LOG_FORMAT"),
			Usage:       `log format of the standard error output, oneof ["text", "json"]`,
			Value:       o.LogFormat,
			Destination: &o.LogFormat,
			Category:    LogFlagCategory,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Sources:     cli.EnvVars("RREGISTRY_LOG_FILE"),
			Usage:       "also write json logs to the file, rotated by size",
			Value:       o.LogFile,
			Destination: &o.LogFile,
			Category:    LogFlagCategory,
		},
	}
}

// LogConfig builds the logger configuration from the options.
func (o *CommonOptions) LogConfig() (xlog.Config, error) {
	c := xlog.NewConfig()
	lvl, err := xlog.ParseLevel(o.LogLevel)
	if err != nil {
		return c, err
	}
	if o.Debug {
		lvl = xlog.LevelDebug
	}
	c.Level = lvl
	c.AddSource = lvl <= xlog.LevelDebug
	c.StdFormat = o.LogFormat
	c.StdWriter = os.Stderr
	if c.Path, err = cmdhelper.ExpandHome(o.LogFile); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid log options: %w", err)
	}
	return c, nil
}

// SetupLogger replaces the default logger according to the options.
func (o *CommonOptions) SetupLogger() error {
	c, err := o.LogConfig()
	if err != nil {
		return err
	}
	xlog.SetDefault(xlog.New(c))
	return nil
}
