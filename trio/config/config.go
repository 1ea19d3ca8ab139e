package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/Hanaasagi/trio/trio"

	"github.com/spf13/viper"
)

// Config stores all configuration of the library.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Trio TrioConfig `mapstructure:"trio"`
}

// TrioConfig stores trio specific configurations.
type TrioConfig struct {
	Workers WorkersConfig `mapstructure:"workers"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Fs      FsConfig      `mapstructure:"fs"`
}

// WorkersConfig sizes the offload runner.
type WorkersConfig struct {
	Count         int `mapstructure:"count"`
	QueueCapacity int `mapstructure:"queueCapacity"`
}

// WatcherConfig stores watcher related configurations.
type WatcherConfig struct {
	QueueCapacity int `mapstructure:"queueCapacity"`
	DebounceMs    int `mapstructure:"debounceMs"`
}

// FsConfig selects the filesystem backend: "os" or "memory".
type FsConfig struct {
	Backend string `mapstructure:"backend"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("trio.workers.count", internal.DefaultWorkerCount())
	viper.SetDefault("trio.workers.queueCapacity", internal.DefaultQueueCapacity)
	viper.SetDefault("trio.watcher.queueCapacity", internal.DefaultWatcherQueueCapacity)
	viper.SetDefault("trio.watcher.debounceMs", internal.DefaultWatcherDebounceMs)
	viper.SetDefault("trio.fs.backend", internal.DefaultFsBackend)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. trio.workers.count becomes TRIO_WORKERS_COUNT

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. Not an error
			// for the library to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
