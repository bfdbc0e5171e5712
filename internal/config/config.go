package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug or release
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ImportConfig tunes the ingestion pipeline. RateDelayMS is the minimum pause
// between calls to the same provider; SyncThreshold is the catalog size above
// which the quick-sync job becomes a no-op.
type ImportConfig struct {
	PageSize        int    `mapstructure:"page_size"`
	RateDelayMS     int    `mapstructure:"rate_delay_ms"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"`
	SyncThreshold   int    `mapstructure:"sync_threshold"`
	SampleVideos    bool   `mapstructure:"sample_videos"` // attach placeholder clips when a source has none
	UserAgent       string `mapstructure:"user_agent"`
	ScheduleHours   int    `mapstructure:"schedule_hours"` // 0 disables the scheduler
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var AppConfig *Config

func LoadConfig(configPath string) error {
	v := viper.New()

	// 默认值
	v.SetDefault("server.port", 8410)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/anistream.db")
	v.SetDefault("import.page_size", 50)
	v.SetDefault("import.rate_delay_ms", 1000)
	v.SetDefault("import.cache_ttl_minutes", 60)
	v.SetDefault("import.sync_threshold", 30)
	v.SetDefault("import.sample_videos", true)
	v.SetDefault("import.user_agent", "kpetrov-dev/anistream/1.0 (https://github.com/kpetrov-dev/anistream)")
	v.SetDefault("import.schedule_hours", 24)
	v.SetDefault("log.level", "info")

	// 配置文件路径
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	// 环境变量替换 (使用 ANISTREAM_ 前缀)
	// 比如 ANISTREAM_SERVER_PORT=9090
	v.SetEnvPrefix("ANISTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay, use defaults
	}

	AppConfig = &Config{}
	if err := v.Unmarshal(AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// RateDelay returns the configured inter-call delay as a duration.
func (c *ImportConfig) RateDelay() time.Duration {
	return time.Duration(c.RateDelayMS) * time.Millisecond
}

// CacheTTL returns the configured response-cache lifetime.
func (c *ImportConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}
