package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(body), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadAppliesFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9090"
database:
  dsn: "postgres://app@localhost/app"
jwt:
  secret: "abc"
kafka:
  brokers: ["k1:9092", "k2:9092"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.HTTP.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected http config %+v", cfg.HTTP)
	}
	if cfg.OTP.Secret != "abc" || cfg.OTP.Period != 300*time.Second {
		t.Fatalf("expected otp defaults derived from jwt, got %+v", cfg.OTP)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Topic != "orders.events" {
		t.Fatalf("unexpected kafka config %+v", cfg.Kafka)
	}
	if errValidate := cfg.Validate(); errValidate != nil {
		t.Fatalf("validate: %v", errValidate)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret\n")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("KAFKA_BROKERS", " a:1, ,b:2 ")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("expected env secret, got %q", cfg.JWT.Secret)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:2" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.HTTP.RequestTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.HTTP.RequestTimeout)
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "data/streamticket.db" {
		t.Fatalf("unexpected dsn %q", cfg.Database.DSN)
	}
	if errValidate := cfg.Validate(); errValidate == nil {
		t.Fatalf("expected missing jwt secret to fail validation")
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(ConfigPathEnv, "/etc/streamticket.yaml")
	if got := ResolveConfigPath(" custom.yaml "); got != "custom.yaml" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolveConfigPath(""); got != "/etc/streamticket.yaml" {
		t.Fatalf("env should be used, got %q", got)
	}
	t.Setenv(ConfigPathEnv, "")
	if got := ResolveConfigPath(""); got != DefaultConfigPath {
		t.Fatalf("expected default, got %q", got)
	}
}
