package backend

import (
	"testing"

	"finanzas/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:  "postgres",
		DatabaseURL:  "postgres://localhost/finanzas",
		SQLiteDBPath: "./data/finanzas.db",
	}

	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig failed: %v", err)
	}
	if cfg.Type != PostgresBackend {
		t.Errorf("Type = %s, want postgres", cfg.Type)
	}
	if cfg.DatabaseURL != appCfg.DatabaseURL {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestFromAppConfig_InvalidType(t *testing.T) {
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend type")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid memory", Config{Type: MemoryBackend}, false},
		{"valid sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "./x.db"}, false},
		{"valid postgres", Config{Type: PostgresBackend, DatabaseURL: "postgres://x"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
