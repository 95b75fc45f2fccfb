package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/Adri-2310/chatMulti/pkg/config"
	"github.com/Adri-2310/chatMulti/pkg/log"
)

// Protocol profile names.
const (
	ProfileClassic  = "classic"
	ProfileEnvelope = "envelope"
)

type Config struct {
	Server ServerConfig
	HTTP   HTTPConfig
	Chat   ChatConfig
	Log    log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type HTTPConfig struct {
	Enabled bool
	Host    string
	Port    int
}

type ChatConfig struct {
	Profile         string
	DefaultRoom     string        `mapstructure:"default_room"`
	MaxFrameSize    int           `mapstructure:"max_frame_size"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8888)
	v.SetDefault("http.enabled", true)
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8088)
	v.SetDefault("chat.profile", ProfileClassic)
	v.SetDefault("chat.default_room", "general")
	v.SetDefault("chat.max_frame_size", 4096)
	v.SetDefault("chat.send_buffer", 256)
	v.SetDefault("chat.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "chat-relay")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("chat.profile", "CHAT_PROFILE")
	v.BindEnv("chat.default_room", "CHAT_DEFAULT_ROOM")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Chat.ShutdownTimeout = parseDuration(v, "chat.shutdown_timeout", 10*time.Second)

	if cfg.Chat.Profile != ProfileClassic && cfg.Chat.Profile != ProfileEnvelope {
		return nil, fmt.Errorf("unknown chat profile %q (want %q or %q)",
			cfg.Chat.Profile, ProfileClassic, ProfileEnvelope)
	}

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
