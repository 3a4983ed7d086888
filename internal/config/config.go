package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis       Redis       `yaml:"redis"`
	Telegram    Telegram    `yaml:"telegram"`
	Matchmaking Matchmaking `yaml:"matchmaking"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Telegram struct {
	Token string `yaml:"token" env:"TELEGRAM_TOKEN"`
}

// Matchmaking - cadence and pairing policy of the matchmaking sweep.
type Matchmaking struct {
	IntervalSeconds int    `yaml:"interval-seconds" env:"MATCHMAKING_INTERVAL_SECONDS" env-default:"1"`
	PairingOrder    string `yaml:"pairing-order" env:"MATCHMAKING_PAIRING_ORDER" env-default:"fifo"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Matchmaking) GetInterval() time.Duration {
	return time.Duration(that.IntervalSeconds) * time.Second
}
