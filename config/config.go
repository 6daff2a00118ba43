package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gitlab.com/accumulatenetwork/overlay/internal/logging"
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
	"gitlab.com/accumulatenetwork/overlay/pkg/message"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

// EnvPrefix is the prefix of environment variables that override the
// configuration, for example OVERLAY_BLOCK_SIZE.
const EnvPrefix = "OVERLAY"

type LogFormat string

const (
	LogFormatPlain LogFormat = "plain"
	LogFormatJSON  LogFormat = "json"
)

// LogLevel defines the default and per-module log level.
type LogLevel struct {
	Default string
	Modules [][2]string
}

// Parse parses a string such as "error;message=info" into a LogLevel.
func (l LogLevel) Parse(s string) LogLevel {
	for _, s := range strings.Split(s, ";") {
		s := strings.SplitN(s, "=", 2)
		if len(s) == 1 {
			l.Default = s[0]
		} else {
			l.Modules = append(l.Modules, *(*[2]string)(s))
		}
	}
	return l
}

// SetDefault sets the default log level.
func (l LogLevel) SetDefault(level string) LogLevel {
	l.Default = level
	return l
}

// SetModule sets the log level for a module.
func (l LogLevel) SetModule(module, level string) LogLevel {
	l.Modules = append(l.Modules, [2]string{module, level})
	return l
}

// String converts the log level into a string, for example
// "error;message=debug".
func (l LogLevel) String() string {
	s := new(strings.Builder)
	s.WriteString(l.Default)
	for _, m := range l.Modules {
		fmt.Fprintf(s, ";%s=%s", m[0], m[1]) //nolint:rangevarref
	}
	return s.String()
}

var DefaultLogLevels = LogLevel{}.
	SetDefault("error").
	// SetModule("message", "debug").
	SetModule("overlay-frame", "info").
	String()

// Config configures how frames are written and read.
type Config struct {
	// BlockSize is the amount of sink capacity prepared at a time when
	// writing.
	BlockSize int `toml:"block-size" mapstructure:"block-size"`

	// ReadSize is the largest single read when filling a receive buffer.
	ReadSize int `toml:"read-size" mapstructure:"read-size"`

	// CompressThreshold is the payload size at which frames are
	// compressed. Zero disables compression.
	CompressThreshold int `toml:"compress-threshold" mapstructure:"compress-threshold"`

	MaxMessageSize int       `toml:"max-message-size" mapstructure:"max-message-size"`
	LogLevel       string    `toml:"log-level" mapstructure:"log-level"`
	LogFormat      LogFormat `toml:"log-format" mapstructure:"log-format"`
}

func Default() *Config {
	return &Config{
		BlockSize:         zerocopy.DefaultBlockSize,
		ReadSize:          16 << 10,
		CompressThreshold: 0,
		MaxMessageSize:    message.MaxMessageSize,
		LogLevel:          DefaultLogLevels,
		LogFormat:         LogFormatPlain,
	}
}

// Flags returns a flag set for the configuration, with the defaults of c.
func (c *Config) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("config", pflag.ContinueOnError)
	flags.Int("block-size", c.BlockSize, "Bytes of buffer capacity to prepare at a time when writing")
	flags.Int("read-size", c.ReadSize, "Largest single read when reading frames")
	flags.Int("compress-threshold", c.CompressThreshold, "Compress payloads of at least this many bytes (0 disables compression)")
	flags.Int("max-message-size", c.MaxMessageSize, "Largest payload to accept or produce")
	flags.String("log-level", c.LogLevel, "Log levels, for example error;message=debug")
	flags.String("log-format", string(c.LogFormat), "Log format, plain or json")
	return flags
}

// Load loads the configuration. Values are taken from flags that were set,
// then environment variables, then the file (if not empty), then the flag
// defaults.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(flags)
	if err != nil {
		return nil, errors.InternalError.WithFormat("bind flags: %w", err)
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
		err = v.ReadInConfig()
		if err != nil {
			return nil, errors.BadRequest.WithFormat("read %s: %w", file, err)
		}
	}

	c := new(Config)
	err = v.Unmarshal(c)
	if err != nil {
		return nil, errors.BadRequest.WithFormat("unmarshal: %w", err)
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.BlockSize < 0 {
		return errors.BadRequest.WithFormat("invalid block size %d", c.BlockSize)
	}
	if c.ReadSize <= 0 {
		return errors.BadRequest.WithFormat("invalid read size %d", c.ReadSize)
	}
	if c.CompressThreshold < 0 {
		return errors.BadRequest.WithFormat("invalid compression threshold %d", c.CompressThreshold)
	}
	if c.MaxMessageSize <= 0 || c.MaxMessageSize > message.MaxMessageSize {
		return errors.BadRequest.WithFormat("max message size must be between 1 and %d", message.MaxMessageSize)
	}
	switch c.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.BadRequest.WithFormat("invalid log format %q", c.LogFormat)
	}
	_, err := logging.ParseLogLevel(c.LogLevel)
	return err
}

// Store writes the configuration to a file as TOML.
func Store(file string, c *Config) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Write(f)
}

// Write writes the configuration to w as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(*c)
}

// FrameOptions returns the frame codec options for the configuration.
func (c *Config) FrameOptions(logger *slog.Logger) []message.Option {
	return []message.Option{
		message.WithLogger(logger),
		message.WithCompression(c.CompressThreshold),
		message.WithMaxSize(c.MaxMessageSize),
	}
}

// NewLogger creates a logger that writes to w in the configured format.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	levels, err := logging.ParseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	if c.LogFormat != LogFormatJSON {
		w = logging.ConsoleSlogWriter(w, !color.NoColor)
	}
	h, err := logging.NewSlogHandler(levels, w)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}
