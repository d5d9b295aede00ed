package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Addr     string
	MaxConns int    `mapstructure:"max_conns"`
	LogLevel string `mapstructure:"log_level"`

	Storage struct {
		Driver string // sqlite or memory
		DSN    string
	}

	Auth struct {
		Secret   string
		TokenTTL time.Duration `mapstructure:"token_ttl"`
		Admins   []string
	}

	Roster struct {
		MaxAttempts int `mapstructure:"max_attempts"`
	}

	Media struct {
		Dir     string
		BaseURL string `mapstructure:"base_url"`
	}

	Cache struct {
		DisplayNames int `mapstructure:"display_names"`
	}

	CORS struct {
		Origins []string
	}

	Seed struct {
		Enabled bool
		File    string
	}
}

func defaults(v *viper.Viper) {
	v.SetDefault("addr", "0.0.0.0:8080")
	v.SetDefault("max_conns", 1024)
	v.SetDefault("log_level", "info")
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "play4peace.db")
	v.SetDefault("auth.secret", "secret-key")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.admins", []string{})
	v.SetDefault("roster.max_attempts", 3)
	v.SetDefault("media.dir", "media")
	v.SetDefault("media.base_url", "/media")
	v.SetDefault("cache.display_names", 512)
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.file", "")
}

// Load reads configuration from defaults, an optional config file, P4P_*
// environment variables and command line flags, in increasing priority.
func Load(args []string) (*Config, *viper.Viper, error) {
	v := viper.New()
	defaults(v)

	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	fs.String("config", "", "config file path")
	fs.String("addr", v.GetString("addr"), "api service address")
	fs.String("log_level", v.GetString("log_level"), "log level")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := v.BindPFlag("addr", fs.Lookup("addr")); err != nil {
		return nil, nil, err
	}
	if err := v.BindPFlag("log_level", fs.Lookup("log_level")); err != nil {
		return nil, nil, err
	}

	v.SetEnvPrefix("P4P")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("play4peace")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, err
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Driver != "sqlite" && cfg.Storage.Driver != "memory" {
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return &cfg, nil
}

// SetupLogging applies the configured level to the global logger.
func SetupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Watch reloads the log level when the config file changes. Other settings
// need a restart.
func Watch(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("config changed")
		SetupLogging(v.GetString("log_level"))
	})
	v.WatchConfig()
}
