package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "fingerprint_editor.cfg.json"

// StorageConfig holds storage backend settings
type StorageConfig struct {
	Type    string        `json:"type" mapstructure:"type"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	SQLite  SQLiteConfig  `json:"sqlite" mapstructure:"sqlite"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// FloorConfig describes the floors of the building.
type FloorConfig struct {
	Count   int               `json:"count" mapstructure:"count"`
	Images  []string          `json:"images" mapstructure:"images"`
	Palette map[string]string `json:"palette" mapstructure:"palette"` // floor number -> color name or #rrggbb
}

// InfluxConfig holds capture telemetry settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL returns the server address of the InfluxDB instance.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// SetDefaults registers every default value.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("floors.count", 3)
	viper.SetDefault("floors.images", []string{"../level_one.jpg", "../level_two.jpg", "../level_three.jpg"})
	viper.SetDefault("floors.palette", map[string]string{})

	viper.SetDefault("markers.radius", 5.0)
	viper.SetDefault("view.zoom", 100)

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.timeout", "5s")
	viper.SetDefault("storage.sqlite.path", "./fingerprints.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "fingerprints")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "fingerprint-editor")
	viper.SetDefault("influx.bucket", "captures")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
// Defaults stay in effect when the file cannot be read.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:    viper.GetString("storage.type"),
		Timeout: viper.GetDuration("storage.timeout"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetFloorConfig returns the floor layout.
func GetFloorConfig() FloorConfig {
	return FloorConfig{
		Count:   viper.GetInt("floors.count"),
		Images:  viper.GetStringSlice("floors.images"),
		Palette: viper.GetStringMapString("floors.palette"),
	}
}

// GetInfluxConfig returns the capture telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}
