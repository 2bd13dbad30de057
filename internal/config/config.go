package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr          string        `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	DefaultMode       string        `yaml:"default-mode" env:"DEFAULT_MODE" env-default:"two"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"HEARTBEAT_INTERVAL" env-default:"15s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Load reads the yaml file at path with environment overrides. A missing
// file is not an error; the environment and defaults are used instead.
func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}
