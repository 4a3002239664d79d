package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"x52link/services/config"
	"x52link/types"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init  ConfigInit  `cmd:"" help:"Write a LinkConfig template"`
	Check ConfigCheck `cmd:"" help:"Validate a LinkConfig file"`
}

// ConfigInit scaffolds a LinkConfig for one half of a bridged link.
type ConfigInit struct {
	Variant string `help:"Protocol variant" enum:"pro,std" default:"pro"`
	Role    string `help:"Device on this half's cable" enum:"joystick,throttle" default:"joystick"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <role>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

func (c *ConfigInit) Run() error {
	cfg := config.Default()
	cfg.Variant = types.Variant(c.Variant)
	cfg.Role = types.Role(c.Role)
	cfg.Bridge = &types.BridgeConfig{
		Transport: "uart",
		UART:      &types.UARTConfig{Baud: config.DefaultUARTBaud, TxPin: 0, RxPin: 1},
	}
	config.ApplyDefaults(&cfg)

	data, err := marshalLinkConfig(cfg, c.Format)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = c.Role + "." + c.Format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(dest, data, 0o644)
}

func marshalLinkConfig(cfg types.LinkConfig, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml":
		return toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ConfigCheck loads a LinkConfig like the firmware would.
type ConfigCheck struct {
	File string `arg:"" help:"LinkConfig file (.json, .yaml or .toml)"`
}

func (c *ConfigCheck) Run() error {
	cfg, err := readLinkConfig(c.File)
	if err != nil {
		return err
	}
	config.ApplyDefaults(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return err
	}
	fmt.Printf("%s: %s %s link on C01..C04 = %d %d %d %d\n", c.File, cfg.Variant, cfg.Role,
		cfg.Pins.C01, cfg.Pins.C02, cfg.Pins.C03, cfg.Pins.C04)
	return nil
}
