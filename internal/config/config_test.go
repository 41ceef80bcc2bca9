package config

import (
	"strings"
	"testing"
	"time"
)

// resetEnv blanks every config key so values from the host do not leak into tests.
// Viper treats empty env vars as unset, so defaults apply.
func resetEnv(t *testing.T) {
	t.Helper()
	for k := range defaults {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	resetEnv(t)
	t.Setenv("FIREBASE_DATABASE_URL", "https://demo.firebaseio.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":3001" {
		t.Errorf("HTTPAddr = %q, want :3001", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want :8080", cfg.GRPCAddr)
	}
	if cfg.DirectoryDriver != DirectoryRTDB || cfg.NotifyDriver != NotifyFonnte {
		t.Errorf("drivers = %q/%q", cfg.DirectoryDriver, cfg.NotifyDriver)
	}
	if cfg.UsersPath != "users" || cfg.OperatorsPath != "operator" {
		t.Errorf("paths = %q/%q", cfg.UsersPath, cfg.OperatorsPath)
	}
	if cfg.FonnteBaseURL != "https://api.fonnte.com" || cfg.FonnteAuthScheme != "Bearer" || cfg.FonnteCountryCode != "62" {
		t.Errorf("fonnte defaults = %q %q %q", cfg.FonnteBaseURL, cfg.FonnteAuthScheme, cfg.FonnteCountryCode)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout())
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
	if cfg.TelemetryKafkaBrokersList() != nil {
		t.Error("Kafka should be disabled by default")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	resetEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DIRECTORY_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/planner")
	t.Setenv("NOTIFY_DRIVER", "outbox")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.DirectoryDriver != DirectoryPostgres {
		t.Errorf("DirectoryDriver = %q, want postgres", cfg.DirectoryDriver)
	}
	if cfg.NotifyDriver != NotifyOutbox {
		t.Errorf("NotifyDriver = %q", cfg.NotifyDriver)
	}
	if cfg.Timeout() != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout())
	}
	if !cfg.OTLPInsecure {
		t.Error("OTLPInsecure should be true")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "rtdb without url",
			env:     map[string]string{"DIRECTORY_DRIVER": "rtdb"},
			wantErr: "FIREBASE_DATABASE_URL",
		},
		{
			name:    "postgres without dsn",
			env:     map[string]string{"DIRECTORY_DRIVER": "postgres"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown directory driver",
			env:     map[string]string{"DIRECTORY_DRIVER": "mongo"},
			wantErr: "DIRECTORY_DRIVER",
		},
		{
			name:    "memory directory in production",
			env:     map[string]string{"DIRECTORY_DRIVER": "memory", "APP_ENV": "production"},
			wantErr: "DIRECTORY_DRIVER=memory",
		},
		{
			name:    "outbox in production",
			env:     map[string]string{"DIRECTORY_DRIVER": "rtdb", "FIREBASE_DATABASE_URL": "https://x", "NOTIFY_DRIVER": "outbox", "APP_ENV": "Production"},
			wantErr: "NOTIFY_DRIVER=outbox",
		},
		{
			name:    "unknown notify driver",
			env:     map[string]string{"DIRECTORY_DRIVER": "memory", "NOTIFY_DRIVER": "sms"},
			wantErr: "NOTIFY_DRIVER",
		},
		{
			name:    "bad timeout",
			env:     map[string]string{"DIRECTORY_DRIVER": "memory", "UPSTREAM_TIMEOUT": "soon"},
			wantErr: "UPSTREAM_TIMEOUT",
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"DIRECTORY_DRIVER": "memory", "UPSTREAM_TIMEOUT": "-1s"},
			wantErr: "UPSTREAM_TIMEOUT",
		},
		{
			name:    "blank users path",
			env:     map[string]string{"DIRECTORY_DRIVER": "memory", "USERS_PATH": "/"},
			wantErr: "USERS_PATH",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("Load should fail (%s)", tt.wantErr)
			}
			if !strings.HasPrefix(err.Error(), "config:") || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %q, want config error mentioning %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad_OutboxAllowedInDevelopment(t *testing.T) {
	resetEnv(t)
	t.Setenv("DIRECTORY_DRIVER", "memory")
	t.Setenv("NOTIFY_DRIVER", "outbox")
	t.Setenv("APP_ENV", "development")

	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_NotifyRelayFlag(t *testing.T) {
	resetEnv(t)
	t.Setenv("DIRECTORY_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NotifyRelayEnabled {
		t.Error("relay enabled by default")
	}

	t.Setenv("NOTIFY_RELAY_ENABLED", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.NotifyRelayEnabled {
		t.Error("NOTIFY_RELAY_ENABLED=true not applied")
	}
}

func TestTimeout_Fallback(t *testing.T) {
	for _, raw := range []string{"", "abc", "0s", "-5s"} {
		c := &Config{UpstreamTimeout: raw}
		if got := c.Timeout(); got != 10*time.Second {
			t.Errorf("Timeout(%q) = %v, want 10s", raw, got)
		}
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"localhost:9092", []string{"localhost:9092"}},
		{" a:9092 , ,b:9092,", []string{"a:9092", "b:9092"}},
	}
	for _, tt := range tests {
		got := (&Config{TelemetryKafkaBrokers: tt.raw}).TelemetryKafkaBrokersList()
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q: got %v, want %v", tt.raw, got, tt.want)
			}
		}
	}

	var nilCfg *Config
	if nilCfg.TelemetryKafkaBrokersList() != nil {
		t.Error("nil config should return nil")
	}
}
