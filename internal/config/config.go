package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverBadger    = "badger"
	DriverFirestore = "firestore"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	UI       UIConfig       `mapstructure:"ui"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
}

type StoreConfig struct {
	Driver    string          `mapstructure:"driver" validate:"required|in:badger,firestore"`
	Badger    BadgerConfig    `mapstructure:"badger"`
	Firestore FirestoreConfig `mapstructure:"firestore"`
}

type BadgerConfig struct {
	Path string `mapstructure:"path"`
}

type FirestoreConfig struct {
	Project string `mapstructure:"project"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// CacheConfig sizes the page cache. TTL is in seconds; 0 keeps entries
// until they are invalidated or evicted.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	SizeMB  int  `mapstructure:"sizeMB" validate:"min:1"`
	TTL     int  `mapstructure:"ttl" validate:"min:0"`
}

// TelegramConfig enables the bot when Token is set.
type TelegramConfig struct {
	Token             string `mapstructure:"token"`
	DefaultCollection string `mapstructure:"defaultCollection" validate:"required"`
}

type ScraperConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
}

// UIConfig carries presentation preferences exposed to clients.
type UIConfig struct {
	Theme string `mapstructure:"theme" validate:"required|in:modern,neobrutalism"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", DriverBadger)
	v.SetDefault("store.badger.path", "./badger_data")
	v.SetDefault("store.firestore.project", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.sizeMB", 16)
	v.SetDefault("cache.ttl", 300)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.defaultCollection", "videostowatch")
	v.SetDefault("scraper.timeout", 20*time.Second)
	v.SetDefault("ui.theme", "modern")
}

// LoadConfig reads config.yaml from path, overlaid by TUBETRACK_*
// environment variables (e.g. TUBETRACK_STORE_DRIVER).
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TUBETRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env vars still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks field rules and the driver specific settings.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	switch c.Store.Driver {
	case DriverBadger:
		if c.Store.Badger.Path == "" {
			return errors.New("invalid config: store.badger.path is required for the badger driver")
		}
	case DriverFirestore:
		if c.Store.Firestore.Project == "" {
			return errors.New("invalid config: store.firestore.project is required for the firestore driver")
		}
	}
	return nil
}
