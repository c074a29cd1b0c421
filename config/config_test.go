package config

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.DBName != "citrus_link" {
		t.Errorf("Expected default DB name citrus_link, got %s", cfg.DBName)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("Expected default HTTP addr :8000, got %s", cfg.HTTPAddr)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("Expected default MQTT broker, got %s", cfg.MQTTBroker)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()

	if cfg.DBHost != "db.internal" {
		t.Errorf("Expected DB host from environment, got %s", cfg.DBHost)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("Expected Redis DB 3, got %d", cfg.RedisDB)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
}
