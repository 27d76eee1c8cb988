package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the Samudrayan backend.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Verification VerificationConfig `mapstructure:"verification"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Identity     IdentityConfig     `mapstructure:"identity"`
	Maintenance  MaintenanceConfig  `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options. The URL carries host,
// credentials and database in redis://[:password@]host:port/db form.
type RedisCacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// AuthConfig captures authentication settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures the access and refresh token pair. The two secrets
// must differ so a refresh token can never pass as an access token.
type JWTSettings struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	Issuer        string        `mapstructure:"issuer"`
	AccessTTL     time.Duration `mapstructure:"access_token_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_token_ttl"`
}

// VerificationConfig configures the Aadhar verification pipeline.
type VerificationConfig struct {
	// MasterSecret seeds the key derivation for the number codec. It is
	// accepted in hex, base64 or raw form and must never be logged.
	MasterSecret string             `mapstructure:"master_secret"`
	UIDAI        UIDAISettings      `mapstructure:"uidai"`
	DigiLocker   DigiLockerSettings `mapstructure:"digilocker"`
}

// UIDAISettings configures the primary verification provider.
type UIDAISettings struct {
	BaseURL    string `mapstructure:"base_url"`
	LicenseKey string `mapstructure:"license_key"`
	Mock       bool   `mapstructure:"mock"`
}

// DigiLockerSettings configures the fallback verification provider.
type DigiLockerSettings struct {
	BaseURL      string `mapstructure:"base_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Mock         bool   `mapstructure:"mock"`
}

// StorageConfig selects the document storage backend.
type StorageConfig struct {
	Backend    string               `mapstructure:"backend"`
	Local      LocalStorageSettings `mapstructure:"local"`
	Cloudinary CloudinarySettings   `mapstructure:"cloudinary"`
}

// LocalStorageSettings configures filesystem-backed document storage.
type LocalStorageSettings struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

// CloudinarySettings holds Cloudinary account credentials.
type CloudinarySettings struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// IdentityConfig selects the identity provider consulted during registration
// and login. Mode "static" accepts any UID and is meant for development.
type IdentityConfig struct {
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// MaintenanceConfig tunes the background maintenance scheduler.
type MaintenanceConfig struct {
	BookingMaxAge   time.Duration `mapstructure:"booking_max_age"`
	BookingSchedule string        `mapstructure:"booking_schedule"`
	CacheSchedule   string        `mapstructure:"cache_schedule"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("SAMUDRAYAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/samudrayan.sqlite")

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.url", "redis://127.0.0.1:6379/0")

	v.SetDefault("auth.jwt.access_token_ttl", "24h")
	v.SetDefault("auth.jwt.refresh_token_ttl", "168h") // 7 days

	v.SetDefault("verification.uidai.mock", true)
	v.SetDefault("verification.digilocker.mock", true)

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.dir", "./data/uploads")
	v.SetDefault("storage.local.base_url", "/uploads")

	v.SetDefault("identity.mode", "static")

	v.SetDefault("maintenance.booking_max_age", "30m")
	v.SetDefault("maintenance.booking_schedule", "@every 15m")
	v.SetDefault("maintenance.cache_schedule", "@hourly")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
