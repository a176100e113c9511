package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhau/s7150duo/internal/config"
	"github.com/jhau/s7150duo/internal/errors"
)

// isolate points the config file lookup at a path that does not exist,
// so a developer's /etc/s7150duo.toml cannot leak into the tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("S7150DUO_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load([]string{"out.dat"})
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Port1)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Port2)
	assert.Equal(t, 16, cfg.Address1)
	assert.Equal(t, 12, cfg.Address2)
	assert.Equal(t, config.ModeDCV, cfg.Mode1)
	assert.Equal(t, config.ModeDCA, cfg.Mode2)
	assert.Equal(t, 10, cfg.Delay)
	assert.True(t, cfg.Display)
	assert.Equal(t, 100, cfg.FlushEvery)
	assert.False(t, cfg.Overwrite)
	assert.Zero(t, cfg.StopAfter)
	assert.Equal(t, "gnuplot", cfg.Gnuplot)
	assert.False(t, cfg.NoGraph)
	assert.False(t, cfg.Telemetry)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "out.dat", cfg.DataFile)
}

func TestLoadFlags(t *testing.T) {
	isolate(t)

	cfg, err := config.Load([]string{
		"-p", "/dev/ttyUSB2",
		"-P", "/dev/ttyUSB3",
		"-a", "20",
		"-A", "21",
		"-m", "1",
		"-M", "2",
		"-t", "30",
		"-d",
		"-w", "10",
		"-f",
		"-T", "12.5",
		"-c", "cell discharge",
		"-n",
		"run.dat",
	})
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB2", cfg.Port1)
	assert.Equal(t, "/dev/ttyUSB3", cfg.Port2)
	assert.Equal(t, 20, cfg.Address1)
	assert.Equal(t, 21, cfg.Address2)
	assert.Equal(t, config.ModeACV, cfg.Mode1)
	assert.Equal(t, config.ModeOhm, cfg.Mode2)
	assert.Equal(t, 30, cfg.Delay)
	assert.False(t, cfg.Display, "-d turns the instrument displays off")
	assert.Equal(t, 10, cfg.FlushEvery)
	assert.True(t, cfg.Overwrite)
	assert.InDelta(t, 12.5, cfg.StopAfter, 1e-9)
	assert.Equal(t, "cell discharge", cfg.Comment)
	assert.True(t, cfg.NoGraph)
	assert.Equal(t, "run.dat", cfg.DataFile)
}

func TestLoadMissingDataFile(t *testing.T) {
	isolate(t)

	_, err := config.Load([]string{"-a", "20"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrMissingFile, errors.CodeOf(err))
}

func TestLoadUnknownFlag(t *testing.T) {
	isolate(t)

	_, err := config.Load([]string{"--bogus", "out.dat"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidArgument, errors.CodeOf(err))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s7150duo.toml")
	content := "address1 = 20\nmode2 = 5\ncomment = \"from file\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("S7150DUO_CONFIG", path)

	cfg, err := config.Load([]string{"out.dat"})
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Address1)
	assert.Equal(t, config.ModeDiode, cfg.Mode2)
	assert.Equal(t, "from file", cfg.Comment)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s7150duo.toml")
	require.NoError(t, os.WriteFile(path, []byte("comment = \"from file\"\n"), 0o600))
	t.Setenv("S7150DUO_CONFIG", path)

	cfg, err := config.Load([]string{"-c", "from flag", "out.dat"})
	require.NoError(t, err)
	assert.Equal(t, "from flag", cfg.Comment)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s7150duo.toml")
	require.NoError(t, os.WriteFile(path, []byte("comment = unterminated\n"), 0o600))
	t.Setenv("S7150DUO_CONFIG", path)

	_, err := config.Load([]string{"out.dat"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrReadConfig, errors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want errors.ErrorCode
	}{
		{"address too high", []string{"-a", "31"}, config.ErrInvalidAddress},
		{"address negative", []string{"--address2=-1"}, config.ErrInvalidAddress},
		{"port conflict", []string{"-p", "/dev/ttyUSB0", "-P", "/dev/ttyUSB0"}, config.ErrPortConflict},
		{"mode too high", []string{"-m", "8"}, config.ErrInvalidMode},
		{"mode negative", []string{"--mode2=-1"}, config.ErrInvalidMode},
		{"delay too long", []string{"-t", "601"}, config.ErrInvalidDelay},
		{"delay negative", []string{"--delay=-1"}, config.ErrInvalidDelay},
		{"flush zero", []string{"-w", "0"}, config.ErrInvalidFlush},
		{"stop negative", []string{"--stop=-1"}, config.ErrInvalidStop},
		{"telemetry without database", []string{"--telemetry"}, config.ErrMissingDatabase},
		{"bad log level", []string{"--log-level", "chatty"}, errors.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			_, err := config.Load(append(tt.args, "out.dat"))
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.CodeOf(err))
		})
	}
}

func TestLogLevelIsValid(t *testing.T) {
	assert.True(t, config.LogLevel("debug").IsValid())
	assert.True(t, config.LogLevel("warning").IsValid())
	assert.False(t, config.LogLevel("trace").IsValid())
	assert.False(t, config.LogLevel("").IsValid())
}
