package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerURL string `envconfig:"PROBE_SERVER_URL" default:"ws://localhost:8080/ws"`
	// PROBE_ORIGIN must be listed in the server's ALLOWED_ORIGINS
	Origin   string `envconfig:"PROBE_ORIGIN" default:"http://localhost:8080"`
	Username string `envconfig:"PROBE_USERNAME" required:"true"`
	Room     string `envconfig:"PROBE_ROOM" required:"true"`
	// PROBE_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"PROBE_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
