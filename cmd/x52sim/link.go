package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"x52link/hal"
	"x52link/services/bridge"
	"x52link/services/config"
	"x52link/services/heartbeat"
	"x52link/services/link"
	"x52link/types"
	"x52link/x52"
)

// LinkFlags are shared by the commands that run links.
type LinkFlags struct {
	Variant        string        `help:"Protocol variant" enum:"pro,std" default:"pro"`
	LinkFile       string        `name:"link" help:"LinkConfig file (.json, .yaml or .toml); replaces the link flags" placeholder:"FILE"`
	MaxRate        int           `help:"Polls per second, 0 for unlimited" default:"100"`
	ImprovedDesync bool          `help:"Pro: stricter desync detection, untested on real hardware"`
	PulseWaiter    string        `help:"Std: how the first two C04 pulses are caught" enum:"interrupt,poll" default:"interrupt"`
	BusyWait       bool          `help:"Spin instead of sleeping between pin reads"`
	Duration       time.Duration `help:"How long to run" default:"5s"`
	Brightness     uint8         `help:"LED brightness the emulated throttle sends" default:"20"`
	Heartbeat      time.Duration `help:"Status log period" default:"1s"`
}

func (f *LinkFlags) linkConfig() (types.LinkConfig, error) {
	var c types.LinkConfig
	if f.LinkFile != "" {
		var err error
		if c, err = readLinkConfig(f.LinkFile); err != nil {
			return c, err
		}
	} else {
		// Pin numbers only label the cable lines here, but must be distinct.
		c = types.LinkConfig{
			Variant:                 types.Variant(f.Variant),
			Pins:                    config.Default().Pins,
			MaxUpdatesPerSecond:     f.MaxRate,
			ImprovedDesyncDetection: f.ImprovedDesync,
			PulseWaiter:             f.PulseWaiter,
			BusyWait:                f.BusyWait,
		}
	}
	config.ApplyDefaults(&c)
	return c, config.Validate(&c)
}

// readLinkConfig decodes a LinkConfig by file extension.
func readLinkConfig(path string) (types.LinkConfig, error) {
	var c types.LinkConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	case ".toml":
		err = toml.Unmarshal(data, &c)
	default:
		err = errors.New("unknown config extension: " + path)
	}
	return c, err
}

func withRole(c types.LinkConfig, r types.Role) types.LinkConfig {
	c.Role = r
	return c
}

func cablePins(c *hal.Cable) x52.Pins {
	return x52.Pins{C01: c.C01, C02: c.C02, C03: c.C03, C04: c.C04}
}

// half is one runner with the name it logs under.
type half struct {
	name   string
	runner *link.Runner
}

func newHalf(name string, cfg types.LinkConfig, cable *hal.Cable, clk hal.Clock, relay link.Relay, logger *slog.Logger) (half, error) {
	l := logger.With("half", name)
	side, err := link.NewSide(cfg, cablePins(cable), clk, relay, l)
	if err != nil {
		return half{}, err
	}
	return half{name: name, runner: link.NewRunner(cfg, side, clk, l)}, nil
}

// runHalves runs every half until ctx ends, with a heartbeat for each.
func runHalves(ctx context.Context, logger *slog.Logger, every time.Duration, bridges map[string]*bridge.Service, halves ...half) error {
	var wg sync.WaitGroup
	errs := make([]error, len(halves))
	for i, h := range halves {
		hb := heartbeat.New(h.runner, logger.With("half", h.name))
		if b, ok := bridges[h.name]; ok {
			hb.Bridge = b
		}
		hb.Start(ctx, every)

		wg.Add(1)
		go func(i int, h half) {
			defer wg.Done()
			errs[i] = h.runner.Run(ctx)
		}(i, h)
	}
	wg.Wait()

	var failed []error
	for i, h := range halves {
		st := h.runner.Status()
		logger.Info("half finished", "half", h.name, "link", string(st.Link), "frames", st.Frames, "failures", st.Failures)
		if errs[i] != nil {
			failed = append(failed, errs[i])
		} else if st.Frames == 0 {
			failed = append(failed, errors.New(h.name+": no frames exchanged"))
		}
	}
	return errors.Join(failed...)
}
