package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// config is the sottod settings file. Every field has a working
// default; a missing file is not an error.
type config struct {
	Addr  string `toml:"addr"`
	DB    string `toml:"db"`
	Debug bool   `toml:"debug"`
}

func defaultConfig() config {
	return config{
		Addr: ":4000",
		DB:   "sotto.db",
	}
}

// loadConfig reads the TOML file at path over the defaults. An empty
// path skips the file entirely.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
