package config

import "testing"

func TestLoad_RequiresCatalogBaseURL(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "")
	t.Setenv("DB_DSN", "user:pw@tcp(localhost:3306)/gateway")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error when CATALOG_BASE_URL is unset")
	}
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "http://localhost:3001/api/v1")
	t.Setenv("DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error when DB_DSN is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "http://localhost:3001/api/v1")
	t.Setenv("DB_DSN", "user:pw@tcp(localhost:3306)/gateway")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr should default empty, got %q", cfg.Redis.Addr)
	}
	if cfg.Sync.PollInitial.Seconds() != 1 {
		t.Errorf("Sync.PollInitial = %v, want 1s", cfg.Sync.PollInitial)
	}
}
