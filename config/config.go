// Package config handles loading/saving TOML search configuration files,
// with fallback to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// MethodRef names one method entry pulled from the library by code, in
// the order it should be enumerated and spliced (spec §6: "order affects
// enumeration and naming").
type MethodRef struct {
	Code string `toml:"code"`
}

// MusicRule is one named, scored music pattern rule (spec §6's "music
// (ordered list of name, score, pattern-set)").
type MusicRule struct {
	Name     string   `toml:"name"`
	Score    int      `toml:"score"`
	Patterns []string `toml:"patterns"`
}

// SearchConfig holds all tunable search parameters (spec §6).
type SearchConfig struct {
	LibraryPath string      `toml:"library_path"`
	Methods     []MethodRef `toml:"methods"`
	Music       []MusicRule `toml:"music"`

	LeadsPerPart int `toml:"leads_per_part"`
	Parts        int `toml:"parts"`

	TenorsTogether bool `toml:"tenors_together"`
	NicePartEnds   bool `toml:"nice_part_ends"`
	OptimumBalance bool `toml:"optimum_balance"`
	LeadheadOnly   bool `toml:"leadhead_only"`

	// Calls selects 0 (none), 1 (bobs), or 2 (bobs+singles).
	Calls int `toml:"calls"`

	MinScore   int `toml:"min_score"`
	MinCOM     int `toml:"min_com"`
	MinBalance int `toml:"min_balance"`

	COMScoreWeight     int `toml:"com_score_weight"`
	BalanceScoreWeight int `toml:"balance_score_weight"`

	MinPartLength int `toml:"min_part_length"`
	MaxPartLength int `toml:"max_part_length"`

	// Seed is a whitespace-separated start-composition, per spec §6.
	Seed string `toml:"seed"`

	TopK int `toml:"top_k"`
}

// GetConfigPath returns the default config file path: current directory
// first, then ~/.config/touch-composer/config.toml.
func GetConfigPath() string {
	if _, err := os.Stat("./touch-composer.toml"); err == nil {
		return "./touch-composer.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./touch-composer.toml"
	}

	return filepath.Join(home, ".config", "touch-composer", "config.toml")
}

// LoadConfig loads configuration from a TOML file. If the file doesn't
// exist, it returns defaults.
func LoadConfig(path string) (SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg SearchConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a TOML file, creating its directory
// if needed.
func SaveConfig(path string, cfg SearchConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default search configuration (spec §6's
// stated defaults: comScoreWeight=2, balanceScoreWeight=1).
func DefaultConfig() SearchConfig {
	return SearchConfig{
		LeadsPerPart:       1,
		Parts:              1,
		Calls:              0,
		COMScoreWeight:     2,
		BalanceScoreWeight: 1,
		TopK:               10,
	}
}
