package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("port: got %s", cfg.Port)
	}
	if cfg.DatabaseDSN != "file:efactura.db" {
		t.Errorf("dsn: got %s", cfg.DatabaseDSN)
	}
	if cfg.VATAIModel != "gpt-4o-mini" {
		t.Errorf("model: got %s", cfg.VATAIModel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DSN", "file:other.db")
	cfg := Load()
	if cfg.Port != "9090" || cfg.DatabaseDSN != "file:other.db" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestParseBool(t *testing.T) {
	t.Setenv("FLAG", "true")
	if !ParseBool("FLAG", false) {
		t.Error("true not parsed")
	}
	t.Setenv("FLAG", "garbage")
	if ParseBool("FLAG", false) {
		t.Error("garbage should fall back to default")
	}
	if ParseBool("UNSET_FLAG", true) != true {
		t.Error("default ignored for unset var")
	}
}
