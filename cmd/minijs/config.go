package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

// config holds the REPL/script-runner's tunable knobs loaded from YAML:
// the prompt strings (PS1/PS2) and GC verbosity. Grounded on the teacher's
// flag-driven cmd/io/main.go, extended with a config file since that
// program took all of its configuration from Lobby slots set by script
// code rather than a file.
type config struct {
	PS1 string `yaml:"ps1"`
	PS2 string `yaml:"ps2"`

	// GCVerbose logs a line every time the collector's mark-sweep pass
	// runs, for diagnosing reference-cycle buildup.
	GCVerbose bool `yaml:"gc_verbose"`
}

func defaultConfig() config {
	return config{PS1: "minijs> ", PS2: "... "}
}

// loadConfig reads a YAML config file if path is non-empty and exists,
// overlaying its fields onto the defaults. A missing path is not an error:
// most invocations run with no config file at all.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
