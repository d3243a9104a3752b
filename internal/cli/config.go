package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/lead-ledger/internal/policy"
)

// Config holds leadctl settings read from the config file and environment.
type Config struct {
	DBPath                 string `yaml:"db_path,omitempty"`
	CooldownDays           int    `yaml:"cooldown_days,omitempty"`
	SameOwnerAlwaysAllowed *bool  `yaml:"same_owner_always_allowed,omitempty"`
	QuietHours             string `yaml:"quiet_hours,omitempty"`
	PatternsFile           string `yaml:"patterns_file,omitempty"`
	DevMode                bool   `yaml:"dev_mode,omitempty"`
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "leadctl", "config.yaml"), nil
}

// loadConfig reads the config file at path, or the default path when empty,
// then applies environment overrides. A missing default file yields the zero
// config; a missing explicit file is an error.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = configPath()
		if err != nil {
			return Config{}, err
		}
	}

	var c Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
	case err != nil:
		return Config{}, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// applyEnv overrides fields from LEADCTL_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("LEADCTL_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LEADCTL_COOLDOWN_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEADCTL_COOLDOWN_DAYS: invalid number %q", v)
		}
		c.CooldownDays = days
	}
	if v := os.Getenv("LEADCTL_QUIET_HOURS"); v != "" {
		c.QuietHours = v
	}
	if v := os.Getenv("LEADCTL_PATTERNS_FILE"); v != "" {
		c.PatternsFile = v
	}
	if v := os.Getenv("LEADCTL_DEV_MODE"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LEADCTL_DEV_MODE: invalid bool %q", v)
		}
		c.DevMode = dev
	}
	return nil
}

// Policy returns the outreach policy rules for this config.
func (c Config) Policy() (policy.Config, error) {
	pc := policy.DefaultConfig()
	if c.CooldownDays < 0 {
		return pc, fmt.Errorf("cooldown_days must not be negative, got %d", c.CooldownDays)
	}
	if c.CooldownDays > 0 {
		pc.Cooldown = time.Duration(c.CooldownDays) * 24 * time.Hour
	}
	if c.SameOwnerAlwaysAllowed != nil {
		pc.SameOwnerCooldown = !*c.SameOwnerAlwaysAllowed
	}
	q, err := policy.ParseQuietHours(c.QuietHours)
	if err != nil {
		return pc, err
	}
	pc.QuietHours = q
	return pc, nil
}

// newPolicy builds the policy from the loaded config.
func newPolicy() (*policy.Policy, error) {
	pc, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return policy.New(pc), nil
}
