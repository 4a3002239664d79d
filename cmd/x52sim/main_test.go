package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"x52link/types"
	"x52link/x52/pro"
	"x52link/x52/std"
)

func TestConfigInitFormatsLoadBack(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			dest := filepath.Join(dir, "throttle."+format)
			ci := ConfigInit{Variant: "std", Role: "throttle", Format: format, Output: dest}
			require.NoError(t, ci.Run())
			assert.Error(t, ci.Run(), "refuses to overwrite")

			cfg, err := readLinkConfig(dest)
			require.NoError(t, err)
			assert.Equal(t, types.VariantStd, cfg.Variant)
			assert.Equal(t, types.RoleThrottle, cfg.Role)
			require.NotNil(t, cfg.Bridge)
			require.NotNil(t, cfg.Bridge.UART)
			assert.Equal(t, 115200, cfg.Bridge.UART.Baud)
			assert.Equal(t, types.PinsConfig{C01: 2, C02: 3, C03: 4, C04: 5}, cfg.Pins)

			require.NoError(t, (&ConfigCheck{File: dest}).Run())
		})
	}
}

func TestConfigCheckRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variant: x56\n"), 0o644))
	assert.Error(t, (&ConfigCheck{File: path}).Run())
}

func TestSynthStateStaysInRange(t *testing.T) {
	for step := uint32(0); step < 1024; step++ {
		s, ok := pro.StateFromBytes(synthState(types.VariantPro, step))
		require.True(t, ok)
		require.NoError(t, s.Validate())
		require.True(t, s.POV1.Valid())

		d, ok := std.StateFromBytes(synthState(types.VariantStd, step))
		require.True(t, ok, "step %d", step)
		require.NoError(t, d.Validate())
	}
}

func TestThrottleConfigClampsBrightness(t *testing.T) {
	c, ok := std.ConfigFromBytes(throttleConfig(types.VariantStd, 255))
	require.True(t, ok)
	assert.Equal(t, uint8(std.MaxLEDBrightness), c.LEDBrightness)

	p, ok := pro.ConfigFromBytes(throttleConfig(types.VariantPro, 255))
	require.True(t, ok)
	assert.Equal(t, uint8(pro.MaxLEDBrightness), p.LEDBrightness)
	assert.Equal(t, pro.Red, p.ButtonALED)
}

func TestConfigCandidates(t *testing.T) {
	j, y, tm := configCandidates("/etc/x52.yml")
	assert.Empty(t, j)
	assert.Equal(t, []string{"/etc/x52.yml"}, y)
	assert.Empty(t, tm)

	assert.Equal(t, "a.toml", findUserConfig([]string{"loopback", "--config", "a.toml"}))
	assert.Equal(t, "b.json", findUserConfig([]string{"--config=b.json"}))
}

func TestParseCommandLine(t *testing.T) {
	var cli CLI
	p, err := kong.New(&cli, kong.Name("x52sim"), kong.Exit(func(int) {}))
	require.NoError(t, err)
	_, err = p.Parse([]string{"relay", "--variant=std", "--transport=tcp", "--max-rate=0", "--duration=2s"})
	require.NoError(t, err)
	assert.Equal(t, "std", cli.Relay.Variant)
	assert.Equal(t, "tcp", cli.Relay.Transport)
	assert.Zero(t, cli.Relay.MaxRate)
	assert.Equal(t, 2*time.Second, cli.Relay.Duration)
	assert.Equal(t, "info", cli.Log.Level)
}

func TestLinkFlagsWithoutFile(t *testing.T) {
	for _, v := range []string{"pro", "std"} {
		f := LinkFlags{Variant: v, MaxRate: 100, PulseWaiter: "interrupt"}
		cfg, err := f.linkConfig()
		require.NoError(t, err, v)
		assert.Equal(t, types.Variant(v), cfg.Variant)
		assert.Equal(t, types.PinsConfig{C01: 2, C02: 3, C03: 4, C04: 5}, cfg.Pins)
		assert.Equal(t, 100, cfg.MaxUpdatesPerSecond)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoopbackRuns(t *testing.T) {
	for _, v := range []string{"pro", "std"} {
		t.Run(v, func(t *testing.T) {
			var out bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&out, nil))
			cmd := LoopbackCmd{LinkFlags{Variant: v, MaxRate: 100, PulseWaiter: "interrupt",
				Duration: 400 * time.Millisecond, Brightness: 5, Heartbeat: 100 * time.Millisecond}}
			require.NoError(t, cmd.Run(logger))
			assert.Contains(t, out.String(), "config_matches=true")
			assert.Contains(t, out.String(), "msg=heartbeat")
		})
	}
}

func TestRelayRunsOverPipe(t *testing.T) {
	cmd := RelayCmd{
		LinkFlags: LinkFlags{Variant: "pro", MaxRate: 100, PulseWaiter: "interrupt",
			Duration: 500 * time.Millisecond, Brightness: 5, Heartbeat: time.Second},
		Transport: "pipe",
		Address:   t.Name(),
	}
	require.NoError(t, cmd.Run(quietLogger()))
}
