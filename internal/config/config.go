package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrEmptyPort      = errors.New("port must not be empty")
	ErrEmptyChannel   = errors.New("broker channel must not be empty")
	ErrNegativeTTL    = errors.New("session durations must not be negative")
	ErrEmptyRedisHost = errors.New("redis host must not be empty")
)

type Config struct {
	LogLevel   string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	SocketPort string   `yaml:"socket-port" env:"PORT" env-default:"3001"`
	HTTPPort   string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis      Redis    `yaml:"redis"`
	Broker     Broker   `yaml:"broker"`
	Sessions   Sessions `yaml:"sessions"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Broker struct {
	Channel string `yaml:"channel" env:"BROKER_CHANNEL" env-default:"tic-tac-toe"`
}

type Sessions struct {
	IdleTTL       time.Duration `yaml:"idle-ttl" env:"SESSION_IDLE_TTL" env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"SESSION_SWEEP_INTERVAL" env-default:"1m"`
}

// Load reads the yaml file at path, then applies environment overrides.
// A missing file is not an error: environment and defaults are used.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.SocketPort == "" || that.HTTPPort == "" || that.Redis.Port == "" {
		return ErrEmptyPort
	}

	if that.Redis.Host == "" {
		return ErrEmptyRedisHost
	}

	if that.Broker.Channel == "" {
		return ErrEmptyChannel
	}

	if that.Sessions.IdleTTL < 0 || that.Sessions.SweepInterval < 0 {
		return ErrNegativeTTL
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// SetRedisAddr splits a host:port address into the Redis settings.
func (that *Redis) SetRedisAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid redis address %q: %w", addr, err)
	}

	that.Host = host
	that.Port = port

	return nil
}
