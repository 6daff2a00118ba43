package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
)

func TestPersistence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "overlay.toml")

	// Create
	cfg := Default()
	cfg.BlockSize = 512
	cfg.CompressThreshold = 1024
	cfg.LogFormat = LogFormatJSON

	// Store
	require.NoError(t, Store(file, cfg))

	// Load
	lcfg, err := Load(file, Default().Flags())
	require.NoError(t, err)

	// Should be equal
	require.Equal(t, cfg, lcfg)
}

func TestPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "overlay.toml")
	cfg := Default()
	cfg.BlockSize = 512
	cfg.ReadSize = 100
	require.NoError(t, Store(file, cfg))

	t.Setenv(EnvPrefix+"_READ_SIZE", "200")
	t.Setenv(EnvPrefix+"_MAX_MESSAGE_SIZE", "300")

	flags := Default().Flags()
	require.NoError(t, flags.Parse([]string{"--max-message-size=400"}))

	lcfg, err := Load(file, flags)
	require.NoError(t, err)
	require.Equal(t, 512, lcfg.BlockSize, "file")
	require.Equal(t, 200, lcfg.ReadSize, "environment overrides file")
	require.Equal(t, 400, lcfg.MaxMessageSize, "flag overrides environment")
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("", Default().Flags())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	buf := new(bytes.Buffer)
	require.NoError(t, cfg.Write(buf))
	require.Contains(t, buf.String(), "block-size = 4096")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"BlockSize": func(c *Config) { c.BlockSize = -1 },
		"ReadSize":  func(c *Config) { c.ReadSize = 0 },
		"Threshold": func(c *Config) { c.CompressThreshold = -1 },
		"MaxSize":   func(c *Config) { c.MaxMessageSize = 1 << 30 },
		"LogFormat": func(c *Config) { c.LogFormat = "xml" },
		"LogLevel":  func(c *Config) { c.LogLevel = "loud" },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			fn(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Equal(t, errors.BadRequest, errors.Code(err))
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), Default().Flags())
	require.Error(t, err)
	require.Equal(t, errors.BadRequest, errors.Code(err))
}

func TestLogLevel(t *testing.T) {
	l := LogLevel{}.Parse("error;message=debug")
	require.Equal(t, "error", l.Default)
	require.Equal(t, [][2]string{{"message", "debug"}}, l.Modules)
	require.Equal(t, "error;message=debug", l.String())
	require.Equal(t, "info;message=debug", l.SetDefault("info").String())
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = LogFormatJSON
	cfg.LogLevel = "info"

	buf := new(bytes.Buffer)
	logger, err := cfg.NewLogger(buf)
	require.NoError(t, err)
	logger.Info("Hello world")
	logger.Debug("Hidden")
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
	require.Contains(t, buf.String(), `"message":"Hello world"`)
}
