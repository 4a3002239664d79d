// Command x52sim runs X52 links on emulated cables: both halves in one
// process, or split across a bridge.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"x52link/internal/log"
)

type CLI struct {
	Config string `help:"Flag defaults file (.json, .yaml or .toml)" placeholder:"FILE"`
	Log    struct {
		Level  string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info"`
		Format string `help:"Log format" enum:"text,json" default:"text"`
		File   string `help:"Log file; console then only gets stderr" placeholder:"FILE"`
	} `embed:"" prefix:"log."`

	Loopback LoopbackCmd   `cmd:"" help:"Run an emulated joystick and throttle on one cable"`
	Relay    RelayCmd      `cmd:"" help:"Run two cables joined by a bridge"`
	Cfg      ConfigCommand `cmd:"" name:"config" help:"Link configuration files"`
}

func main() {
	jsonPaths, yamlPaths, tomlPaths := configCandidates(findUserConfig(os.Args[1:]))

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("x52sim"),
		kong.Description("X52 / X52 Pro joystick-throttle link simulator"),
		kong.UsageOnError(),
		// Flags and env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.Format, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

// findUserConfig looks for --config before kong parses, since the loaders
// must be known up front.
func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("X52SIM_CONFIG")
}

// configCandidates sorts the user file, or the per-user defaults, by loader.
func configCandidates(user string) (jsonPaths, yamlPaths, tomlPaths []string) {
	var all []string
	if user != "" {
		all = []string{user}
	} else if dir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(dir, "x52sim", "config")
		all = []string{base + ".json", base + ".yaml", base + ".yml", base + ".toml"}
	}
	for _, p := range all {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, p)
		case ".toml":
			tomlPaths = append(tomlPaths, p)
		default:
			jsonPaths = append(jsonPaths, p)
		}
	}
	return
}
