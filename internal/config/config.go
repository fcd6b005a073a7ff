// Package config loads server settings from defaults, an optional sprout.*
// config file and the environment (which wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultOrigins = "http://localhost:80,http://localhost:5173"

type Config struct {
	Port                string
	DBPath              string
	DBEncryptionKey     string
	AllowedOrigins      string
	DisableRegistration bool
	RunMigrations       bool

	JWTSecret           string
	JWTRefreshSecret    string
	AccessTokenMinutes  int
	RefreshTokenDays    int
	RememberRefreshDays int
	CookieSecure        bool

	TaskHorizonDays   int
	EventLookbackDays int
	NeglectDays       int
	DemoNeglectDays   int
	Location          *time.Location

	WeatherBaseURL string
	WeatherTimeout time.Duration

	SpeciesBaseURL   string
	SpeciesAPIKey    string
	SpeciesCacheSize int

	CareplanBaseURL string
	CareplanAPIKey  string
	CareplanModel   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_PATH", "./data/sprout.db")
	v.SetDefault("ALLOWED_ORIGINS", defaultOrigins)
	v.SetDefault("DISABLE_REGISTRATION", false)
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("ACCESS_TOKEN_MINUTES", 15)
	v.SetDefault("REFRESH_TOKEN_DAYS", 7)
	v.SetDefault("REMEMBER_REFRESH_DAYS", 30)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("TASK_HORIZON_DAYS", 14)
	v.SetDefault("EVENT_LOOKBACK_DAYS", 180)
	v.SetDefault("NEGLECT_DAYS", 14)
	v.SetDefault("DEMO_NEGLECT_DAYS", 5)
	v.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("WEATHER_TIMEOUT", "5s")
	v.SetDefault("SPECIES_BASE_URL", "https://perenual.com/api")
	v.SetDefault("SPECIES_CACHE_SIZE", 100)
	v.SetDefault("CAREPLAN_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("CAREPLAN_MODEL", "gpt-4o-mini")
}

// keys lists every setting so AutomaticEnv also sees the ones without defaults.
var keys = []string{
	"DB_ENCRYPTION_KEY", "JWT_SECRET", "JWT_REFRESH_SECRET",
	"SPECIES_API_KEY", "CAREPLAN_API_KEY", "TZ_NAME",
}

// Load reads configuration. It fails when JWT_SECRET is missing or shorter
// than 32 characters, or when TZ_NAME is not a known zone.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("sprout")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "sprout"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{
		Port:                v.GetString("PORT"),
		DBPath:              v.GetString("DB_PATH"),
		DBEncryptionKey:     v.GetString("DB_ENCRYPTION_KEY"),
		AllowedOrigins:      normalizeOrigins(v.GetString("ALLOWED_ORIGINS")),
		DisableRegistration: v.GetBool("DISABLE_REGISTRATION"),
		RunMigrations:       v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTRefreshSecret:    v.GetString("JWT_REFRESH_SECRET"),
		AccessTokenMinutes:  positive(v.GetInt("ACCESS_TOKEN_MINUTES"), 15),
		RefreshTokenDays:    positive(v.GetInt("REFRESH_TOKEN_DAYS"), 7),
		RememberRefreshDays: positive(v.GetInt("REMEMBER_REFRESH_DAYS"), 30),
		CookieSecure:        v.GetBool("COOKIE_SECURE"),
		TaskHorizonDays:     positive(v.GetInt("TASK_HORIZON_DAYS"), 14),
		EventLookbackDays:   positive(v.GetInt("EVENT_LOOKBACK_DAYS"), 180),
		NeglectDays:         positive(v.GetInt("NEGLECT_DAYS"), 14),
		DemoNeglectDays:     positive(v.GetInt("DEMO_NEGLECT_DAYS"), 5),
		WeatherBaseURL:      v.GetString("WEATHER_BASE_URL"),
		WeatherTimeout:      v.GetDuration("WEATHER_TIMEOUT"),
		SpeciesBaseURL:      v.GetString("SPECIES_BASE_URL"),
		SpeciesAPIKey:       v.GetString("SPECIES_API_KEY"),
		SpeciesCacheSize:    positive(v.GetInt("SPECIES_CACHE_SIZE"), 100),
		CareplanBaseURL:     v.GetString("CAREPLAN_BASE_URL"),
		CareplanAPIKey:      v.GetString("CAREPLAN_API_KEY"),
		CareplanModel:       v.GetString("CAREPLAN_MODEL"),
		Location:            time.Local,
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required and must not be empty")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters long")
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = cfg.JWTSecret + "-refresh"
	}
	if name := v.GetString("TZ_NAME"); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("TZ_NAME: %w", err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

// normalizeOrigins trims whitespace around comma-separated entries.
func normalizeOrigins(raw string) string {
	origins := strings.TrimSpace(raw)
	if origins == "" {
		return defaultOrigins
	}
	if origins == "*" {
		return origins
	}
	parts := strings.Split(origins, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}

func positive(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
