package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/lead-ledger/internal/policy"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestConfigLoadDefaultPath(t *testing.T) {
	testEnv(t)
	home := os.Getenv("HOME")

	writeConfig(t, filepath.Join(home, ".config", "leadctl", "config.yaml"), `
db_path: /data/leads.db
cooldown_days: 90
same_owner_always_allowed: false
quiet_hours: "21-8"
dev_mode: true
`)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	no := false
	want := Config{
		DBPath:                 "/data/leads.db",
		CooldownDays:           90,
		SameOwnerAlwaysAllowed: &no,
		QuietHours:             "21-8",
		DevMode:                true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	testEnv(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if diff := cmp.Diff(Config{}, cfg); diff != "" {
		t.Errorf("expected zero-value config for missing file (-want +got):\n%s", diff)
	}
}

func TestConfigExplicitPathMissing(t *testing.T) {
	testEnv(t)

	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestConfigInvalidYAML(t *testing.T) {
	testEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "cooldown_days: [not a number")

	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	testEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "db_path: /from/file.db\ncooldown_days: 90\n")

	t.Setenv("LEADCTL_DB", "/from/env.db")
	t.Setenv("LEADCTL_COOLDOWN_DAYS", "30")
	t.Setenv("LEADCTL_QUIET_HOURS", "22-7")
	t.Setenv("LEADCTL_PATTERNS_FILE", "/etc/patterns.yaml")
	t.Setenv("LEADCTL_DEV_MODE", "true")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		DBPath:       "/from/env.db",
		CooldownDays: 30,
		QuietHours:   "22-7",
		PatternsFile: "/etc/patterns.yaml",
		DevMode:      true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LEADCTL_COOLDOWN_DAYS", "soon"},
		{"LEADCTL_DEV_MODE", "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			testEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := loadConfig(""); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestConfigPolicy(t *testing.T) {
	no := false
	tests := []struct {
		name    string
		cfg     Config
		want    policy.Config
		wantErr bool
	}{
		{
			name: "defaults",
			cfg:  Config{},
			want: policy.DefaultConfig(),
		},
		{
			name: "overrides",
			cfg:  Config{CooldownDays: 30, SameOwnerAlwaysAllowed: &no, QuietHours: "21-8"},
			want: policy.Config{
				Cooldown:          30 * 24 * time.Hour,
				SameOwnerCooldown: true,
				QuietHours:        policy.QuietHours{Start: 21, End: 8},
			},
		},
		{name: "negative cooldown", cfg: Config{CooldownDays: -1}, wantErr: true},
		{name: "bad quiet hours", cfg: Config{QuietHours: "late"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Policy()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Policy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("policy config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
