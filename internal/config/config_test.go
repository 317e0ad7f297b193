package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("DB_HOST", "")
	t.Setenv("PORT", "")
	t.Setenv("MIGRATE_DOWN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("DB host = %s, want localhost", cfg.Database.Host)
	}
	if cfg.Auth.AccessTTL != 4*time.Hour {
		t.Errorf("AccessTTL = %v", cfg.Auth.AccessTTL)
	}
	if cfg.Notification.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d", cfg.Notification.MaxAttempts)
	}
	if cfg.Server.MigrateDown {
		t.Error("rollback should be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("NOTIFY_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("MIGRATE_DOWN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %s", cfg.Server.Port)
	}
	if cfg.Auth.AccessTTL != 30*time.Minute {
		t.Errorf("AccessTTL = %v", cfg.Auth.AccessTTL)
	}
	if cfg.Notification.Enabled {
		t.Error("notifications should be disabled")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.MigrateDown {
		t.Error("MIGRATE_DOWN=true should enable rollback")
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("malformed int should fall back to default, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	if _, err := Load(); err == nil {
		t.Error("expected error for short JWT secret")
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=n sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("GetDSN = %q, want %q", got, want)
	}
}
