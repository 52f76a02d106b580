// Package config holds the parameters that configure a Tomasulo engine run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Mode selects which recovery scheme the engine runs.
type Mode int

const (
	// ModeBaseline runs no recovery scheme at all.
	ModeBaseline Mode = 0
	// ModeROB retires in program order via a reorder buffer and squashes
	// to the exception point on a synthetic exception.
	ModeROB Mode = 1
	// ModeCPR retires out of order and recovers via checkpoint-repair,
	// rolling back to the older of two register-file snapshots.
	ModeCPR Mode = 2
)

// String renders the mode the way the log and CLI report it.
func (m Mode) String() string {
	switch m {
	case ModeBaseline:
		return "baseline"
	case ModeROB:
		return "rob"
	case ModeCPR:
		return "cpr"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// DefaultCheckpointInterval is the first-checkpoint threshold used by CPR
// mode when no checkpoint has been established yet. The source hardcodes
// this as the literal 20; here it is a configurable parameter defaulting
// to the same value.
const DefaultCheckpointInterval = 20

// Config holds the parameters of a single simulator run.
type Config struct {
	// R is the number of result (CDB) buses, >= 1.
	R int `json:"result_buses"`
	// K0, K1, K2 are the per-class function-unit counts, each >= 1.
	K0 int `json:"fu_count_class0"`
	K1 int `json:"fu_count_class1"`
	K2 int `json:"fu_count_class2"`
	// F is the fetch width, >= 1.
	F int `json:"fetch_width"`
	// E is the exception period; every E-th fetched instruction raises a
	// synthetic exception in ROB/CPR mode. Zero disables exceptions.
	E uint64 `json:"exception_period"`
	// Mode selects the recovery scheme.
	Mode Mode `json:"mode"`
	// CheckpointInterval is CPR's first-checkpoint threshold (see
	// DefaultCheckpointInterval).
	CheckpointInterval uint64 `json:"checkpoint_interval"`
}

// DefaultConfig returns a Config matching the source's own defaults
// (DEFAULT_R, DEFAULT_K0..K2, DEFAULT_F, DEFAULT_E).
func DefaultConfig() *Config {
	return &Config{
		R:                  2,
		K0:                 3,
		K1:                 2,
		K2:                 1,
		F:                  4,
		E:                  250,
		Mode:               ModeBaseline,
		CheckpointInterval: DefaultCheckpointInterval,
	}
}

// SQCapacity returns the scheduling queue capacity, always 2*(K0+K1+K2).
func (c *Config) SQCapacity() int {
	return 2 * (c.K0 + c.K1 + c.K2)
}

// FUCapacity returns the capacity of function-unit class fu (0, 1, or 2).
func (c *Config) FUCapacity(fu int) int {
	switch fu {
	case 0:
		return c.K0
	case 1:
		return c.K1
	case 2:
		return c.K2
	default:
		panic(fmt.Sprintf("config: invalid function-unit class %d", fu))
	}
}

// LoadConfig loads a Config from a JSON file, starting from DefaultConfig
// so that an omitted field keeps its default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulator config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse simulator config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize simulator config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write simulator config file: %w", err)
	}

	return nil
}

// Validate checks that all parameters are within their legal ranges.
func (c *Config) Validate() error {
	if c.R < 1 {
		return fmt.Errorf("result_buses must be >= 1")
	}
	if c.K0 < 1 || c.K1 < 1 || c.K2 < 1 {
		return fmt.Errorf("fu_count_class0/1/2 must each be >= 1")
	}
	if c.F < 1 {
		return fmt.Errorf("fetch_width must be >= 1")
	}
	if c.Mode != ModeBaseline && c.Mode != ModeROB && c.Mode != ModeCPR {
		return fmt.Errorf("mode must be 0 (baseline), 1 (rob), or 2 (cpr)")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
