package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDatabaseConfig_Driver(t *testing.T) {
	for _, driver := range []string{"sqlite3", "sqlite", "pgx"} {
		cfg := DatabaseConfig{Driver: driver, DSN: "x", Table: "t"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("driver %q should pass: %v", driver, err)
		}
	}
	cfg := DatabaseConfig{Driver: "mongodb", DSN: "x", Table: "t"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown driver should fail")
	}
}

func TestDatabaseConfig_Table(t *testing.T) {
	for _, table := range []string{"projecttaxonomies", "_t1", "Tax_2"} {
		cfg := DatabaseConfig{Driver: "sqlite3", DSN: "x", Table: table}
		if err := cfg.Validate(); err != nil {
			t.Errorf("table %q should pass: %v", table, err)
		}
	}
	for _, table := range []string{"", "1abc", "drop table;", "a-b", "a.b"} {
		cfg := DatabaseConfig{Driver: "sqlite3", DSN: "x", Table: table}
		if err := cfg.Validate(); err == nil {
			t.Errorf("table %q should fail", table)
		}
	}
}

func TestDatabaseConfig_DSNRequired(t *testing.T) {
	cfg := DatabaseConfig{Driver: "sqlite3", Table: "t"}
	if err := cfg.Validate(); err == nil {
		t.Error("empty dsn should fail")
	}
}

func TestWatchConfig(t *testing.T) {
	disabled := WatchConfig{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled watch should pass: %v", err)
	}
	if disabled.Enabled() {
		t.Error("empty path should disable watching")
	}

	ok := WatchConfig{Path: "taxonomy.yaml", Format: "yaml"}
	if err := ok.Validate(); err != nil {
		t.Errorf("yaml watch should pass: %v", err)
	}
	if !ok.Enabled() {
		t.Error("watch with path should be enabled")
	}

	for _, format := range []string{"yml", "YAML", "Json", "toml"} {
		alias := WatchConfig{Path: "taxonomy.doc", Format: format}
		if err := alias.Validate(); err != nil {
			t.Errorf("watch format %q should pass: %v", format, err)
		}
	}

	bad := WatchConfig{Path: "taxonomy.xml", Format: "xml"}
	if err := bad.Validate(); err == nil {
		t.Error("unknown watch format should fail")
	}
}
