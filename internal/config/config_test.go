package config

import (
	"strings"
	"testing"
	"time"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("TZ_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "3000" || cfg.DBPath != "./data/sprout.db" {
		t.Fatalf("unexpected server defaults %+v", cfg)
	}
	if cfg.TaskHorizonDays != 14 || cfg.EventLookbackDays != 180 || cfg.NeglectDays != 14 || cfg.DemoNeglectDays != 5 {
		t.Fatalf("unexpected schedule defaults %+v", cfg)
	}
	if cfg.WeatherTimeout != 5*time.Second || cfg.SpeciesCacheSize != 100 {
		t.Fatalf("unexpected client defaults %+v", cfg)
	}
	if !cfg.CookieSecure || cfg.RunMigrations {
		t.Fatalf("unexpected flags %+v", cfg)
	}
	if cfg.JWTRefreshSecret != secret+"-refresh" {
		t.Fatalf("refresh secret not derived: %q", cfg.JWTRefreshSecret)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("PORT", "8080")
	t.Setenv("TASK_HORIZON_DAYS", "21")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , https://b.example ")
	t.Setenv("TZ_NAME", "Europe/Amsterdam")
	t.Setenv("SPECIES_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.TaskHorizonDays != 21 || cfg.CookieSecure {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.AllowedOrigins != "https://a.example,https://b.example" {
		t.Fatalf("origins = %q", cfg.AllowedOrigins)
	}
	if cfg.Location.String() != "Europe/Amsterdam" || cfg.SpeciesAPIKey != "k" {
		t.Fatalf("unexpected location/key %+v", cfg)
	}
}

func TestLoadRejectsWeakSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "32 characters") {
		t.Fatalf("expected secret length error, got %v", err)
	}
}

func TestLoadRejectsUnknownZone(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("TZ_NAME", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
