package config

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"kasa/internal/logger"
)

func init() {
	logger.Set(zap.NewNop().Sugar())
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "STORE_PATH", "RECOMPUTE_DEBOUNCE", "SEED_DEFAULTS", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("expected sqlite store, got %s", cfg.StoreDriver)
	}
	if cfg.RecomputeDebounce != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %v", cfg.RecomputeDebounce)
	}
	if !cfg.SeedDefaults {
		t.Error("expected seeding enabled by default")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected wildcard origin, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("RECOMPUTE_DEBOUNCE", "50ms")
	t.Setenv("SEED_DEFAULTS", "false")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.StoreDriver != StoreMemory {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.RecomputeDebounce != 50*time.Millisecond {
		t.Errorf("expected 50ms, got %v", cfg.RecomputeDebounce)
	}
	if cfg.SeedDefaults {
		t.Error("expected seeding disabled")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid memory", Config{Port: "8080", StoreDriver: StoreMemory}, ""},
		{"bad port", Config{Port: "abc", StoreDriver: StoreMemory}, "invalid port"},
		{"port out of range", Config{Port: "70000", StoreDriver: StoreMemory}, "between 1 and 65535"},
		{"unknown driver", Config{Port: "8080", StoreDriver: "redis"}, "invalid store driver"},
		{"sqlite without path", Config{Port: "8080", StoreDriver: StoreSQLite}, "STORE_PATH"},
		{"postgres without host", Config{Port: "8080", StoreDriver: StorePostgres}, "DB_HOST"},
		{"negative debounce", Config{Port: "8080", StoreDriver: StoreMemory, RecomputeDebounce: -time.Second}, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
