package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Game       Game   `yaml:"game"`
}

type Game struct {
	MaxSessions           int `yaml:"max-sessions" env-default:"6"`
	RematchTimeoutSeconds int `yaml:"rematch-timeout-seconds" env-default:"30"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// RematchTimeout - how long a lone rematch vote waits for the second one.
func (that *Game) RematchTimeout() time.Duration {
	return time.Duration(that.RematchTimeoutSeconds) * time.Second
}
