package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// PortOverrideEnv overrides server.port when set to a parseable integer.
// Unparseable values are ignored rather than failing startup.
const PortOverrideEnv = "BABBLE_WHISPER_PORT"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Model  ModelConfig  `mapstructure:"model"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type ModelConfig struct {
	// Name is a catalog model name ("base", "small", ...) or a path to a
	// ggml model file.
	Name string `mapstructure:"name"`
	// Language is the default transcription language when a request does
	// not carry one.
	Language string `mapstructure:"language"`
	// Dir is where downloaded model files are stored.
	Dir string `mapstructure:"dir"`
}

// Load reads the config file at path. A missing or malformed file is an
// error; the caller decides whether that is fatal.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if raw := os.Getenv(PortOverrideEnv); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			cfg.Server.Port = port
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("model.name", "base")
	v.SetDefault("model.language", "en")
	v.SetDefault("model.dir", "./models")
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
