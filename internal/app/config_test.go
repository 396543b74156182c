package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("AGENT_MAX_TOOL_CALLS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Database.Driver != "sqlite" || cfg.AgentMaxToolCalls != 8 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contentd.yaml")
	body := []byte(`
http_addr: ":9000"
database:
  driver: postgres
  postgres_name: authoring
redis:
  addr: "localhost:6379"
access_token_ttl: 30m
agent_max_tool_calls: 3
cors_origins: ["https://editor.example.com"]
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("AGENT_MAX_TOOL_CALLS", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":9100" {
		t.Fatalf("env should override file: got %q", cfg.HTTPAddr)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.PostgresName != "authoring" {
		t.Fatalf("database from file not applied: %+v", cfg.Database)
	}
	if cfg.Database.PostgresHost != "localhost" {
		t.Fatalf("defaults should survive a partial file: %+v", cfg.Database)
	}
	if cfg.AccessTokenTTL != 30*time.Minute || cfg.AgentMaxToolCalls != 3 {
		t.Fatalf("unexpected ttl/max calls: %v %d", cfg.AccessTokenTTL, cfg.AgentMaxToolCalls)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected cors/redis: %+v %+v", cfg.CORSOrigins, cfg.Redis)
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("http_addr: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected a parse error")
	}
}
