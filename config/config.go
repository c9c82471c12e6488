package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/monover/monover/domain"
)

// Config is the top-level configuration for monover.
type Config struct {
	// Adapter pins the build-system adapter instead of auto-detection.
	Adapter string `yaml:"adapter"`

	// CommitTypes maps conventional commit types to bump kinds per track.
	CommitTypes map[string]BumpPair `yaml:"commit_types"`

	// BreakingChange overrides the type mapping for breaking commits.
	BreakingChange BumpPair `yaml:"breaking_change"`

	// UnknownType is the fallback for unknown or unmapped commit types.
	UnknownType BumpPair `yaml:"unknown_type"`

	// Cascade controls how a dependency's bump propagates to dependents.
	Cascade CascadeConfig `yaml:"cascade"`

	// Prerelease holds pre-release identifier defaults.
	Prerelease PrereleaseConfig `yaml:"prerelease"`
}

// BumpPair is a bump kind per release track. "ignore" is accepted as an
// alias of "none".
type BumpPair struct {
	Stable     string `yaml:"stable"`
	Prerelease string `yaml:"prerelease"`
}

// CascadeConfig describes the dependency cascade tables. When Match is set
// a dependency's bump kind propagates unchanged and the tables are ignored.
type CascadeConfig struct {
	Match      bool              `yaml:"match"`
	Stable     map[string]string `yaml:"stable"`
	Prerelease map[string]string `yaml:"prerelease"`
}

// PrereleaseConfig holds defaults for pre-release runs.
type PrereleaseConfig struct {
	// ID is the base pre-release identifier (e.g. "alpha"). Supports
	// ${ENV_VAR} placeholders so CI can inject it.
	ID string `yaml:"id"`

	// Timestamp derives the identifier as {id}.{YYYYMMDD}.{HHMM} in UTC.
	Timestamp bool `yaml:"timestamp"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Default returns the configuration implied by the Conventional Commits
// convention: feat is a minor bump, fix and perf are patches, everything
// else is ignored, and a breaking marker always wins.
func Default() *Config {
	return &Config{
		CommitTypes: map[string]BumpPair{
			"feat":     {Stable: "minor", Prerelease: "preminor"},
			"fix":      {Stable: "patch", Prerelease: "prepatch"},
			"perf":     {Stable: "patch", Prerelease: "prepatch"},
			"revert":   {Stable: "patch", Prerelease: "prepatch"},
			"docs":     {Stable: "ignore", Prerelease: "ignore"},
			"style":    {Stable: "ignore", Prerelease: "ignore"},
			"refactor": {Stable: "ignore", Prerelease: "ignore"},
			"test":     {Stable: "ignore", Prerelease: "ignore"},
			"build":    {Stable: "ignore", Prerelease: "ignore"},
			"ci":       {Stable: "ignore", Prerelease: "ignore"},
			"chore":    {Stable: "ignore", Prerelease: "ignore"},
		},
		BreakingChange: BumpPair{Stable: "major", Prerelease: "premajor"},
		UnknownType:    BumpPair{Stable: "ignore", Prerelease: "ignore"},
		Cascade: CascadeConfig{
			Stable: map[string]string{
				"major": "patch",
				"minor": "patch",
				"patch": "patch",
			},
			Prerelease: map[string]string{
				"premajor":   "prerelease",
				"preminor":   "prerelease",
				"prepatch":   "prerelease",
				"prerelease": "prerelease",
			},
		},
		Prerelease: PrereleaseConfig{ID: "alpha"},
	}
}

// Load reads and parses a configuration file on top of the defaults,
// expanding environment variable placeholders.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := Default()
	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Prerelease.ID = expandEnv(cfg.Prerelease.ID)

	if validateErr := Validate(cfg); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".monover.yaml",
		".monover.yml",
		"monover.yaml",
		"monover.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// expandEnv replaces ${ENV_VAR} placeholders with their values, warning
// about unset variables.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// Validate checks that every configured bump kind parses and that the
// cascade tables are usable.
func Validate(cfg *Config) error {
	for commitType, pair := range cfg.CommitTypes {
		if err := validatePair(pair); err != nil {
			return fmt.Errorf("commit_types[%s]: %w", commitType, err)
		}
	}
	if err := validatePair(cfg.BreakingChange); err != nil {
		return fmt.Errorf("breaking_change: %w", err)
	}
	if err := validatePair(cfg.UnknownType); err != nil {
		return fmt.Errorf("unknown_type: %w", err)
	}

	if !cfg.Cascade.Match {
		if len(cfg.Cascade.Stable) == 0 && len(cfg.Cascade.Prerelease) == 0 {
			return errors.New("cascade: either match or at least one table must be set")
		}
		for _, table := range []map[string]string{cfg.Cascade.Stable, cfg.Cascade.Prerelease} {
			for from, to := range table {
				if _, err := domain.ParseBumpKind(from); err != nil {
					return fmt.Errorf("cascade: %w", err)
				}
				if _, err := domain.ParseBumpKind(to); err != nil {
					return fmt.Errorf("cascade: %w", err)
				}
			}
		}
	}

	return nil
}

func validatePair(pair BumpPair) error {
	if pair.Stable != "" {
		if _, err := domain.ParseBumpKind(pair.Stable); err != nil {
			return err
		}
	}
	if pair.Prerelease != "" {
		if _, err := domain.ParseBumpKind(pair.Prerelease); err != nil {
			return err
		}
	}
	return nil
}

// Rules resolves the configuration into the domain rule set. Validate must
// have passed; unparsable kinds are treated as none at this point.
func (c *Config) Rules() domain.BumpRules {
	rules := domain.BumpRules{
		CommitTypes: make(map[string]domain.TrackBumps, len(c.CommitTypes)),
		Breaking:    toTrackBumps(c.BreakingChange),
		UnknownType: toTrackBumps(c.UnknownType),
		Cascade: domain.CascadeRules{
			Match:      c.Cascade.Match,
			Stable:     toCascadeTable(c.Cascade.Stable),
			Prerelease: toCascadeTable(c.Cascade.Prerelease),
		},
	}
	for commitType, pair := range c.CommitTypes {
		rules.CommitTypes[commitType] = toTrackBumps(pair)
	}
	return rules
}

func toTrackBumps(pair BumpPair) domain.TrackBumps {
	return domain.TrackBumps{
		Stable:     parseOrNone(pair.Stable),
		Prerelease: parseOrNone(pair.Prerelease),
	}
}

func toCascadeTable(table map[string]string) map[domain.BumpKind]domain.BumpKind {
	result := make(map[domain.BumpKind]domain.BumpKind, len(table))
	for from, to := range table {
		fromKind := parseOrNone(from)
		toKind := parseOrNone(to)
		if fromKind == domain.BumpNone {
			continue
		}
		result[fromKind] = toKind
	}
	return result
}

func parseOrNone(s string) domain.BumpKind {
	kind, err := domain.ParseBumpKind(s)
	if err != nil {
		return domain.BumpNone
	}
	return kind
}
