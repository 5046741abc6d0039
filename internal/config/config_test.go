package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.FOVDegrees != 60 {
		t.Fatalf("expected default fov 60, got %v", cfg.FOVDegrees)
	}
	if cfg.CatalogSource != "file" {
		t.Fatalf("expected file catalog source, got %q", cfg.CatalogSource)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CATALOG_SOURCE", "minio")
	t.Setenv("FOV_DEGREES", "75")
	t.Setenv("MAX_VISIBLE", "12")
	t.Setenv("RUN_MIGRATIONS", "true")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.CatalogSource != "minio" {
		t.Fatalf("expected override catalog source")
	}
	if cfg.FOVDegrees != 75 || cfg.MaxVisible != 12 {
		t.Fatalf("expected override view settings, got %v/%v", cfg.FOVDegrees, cfg.MaxVisible)
	}
	if !cfg.RunMigrations {
		t.Fatalf("expected migrations enabled")
	}
}
