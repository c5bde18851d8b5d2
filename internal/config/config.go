package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Game struct {
	BoardWidth         int `yaml:"board-width" env-default:"5"`
	BoardHeight        int `yaml:"board-height" env-default:"5"`
	MinPlayers         int `yaml:"min-players" env-default:"2"`
	MaxPlayers         int `yaml:"max-players" env-default:"2"`
	IdleTimeoutMinutes int `yaml:"idle-timeout-minutes" env-default:"5"`
	JoinCodeLength     int `yaml:"join-code-length" env-default:"4"`
	JoinCodeAttempts   int `yaml:"join-code-attempts" env-default:"100"`
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
