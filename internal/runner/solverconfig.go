package runner

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SolverConfig is the optional --config file overriding the solver's search
// parameters; it is independent of the CLIDefaults persisted in config.go,
// which seed flag defaults rather than override an explicit run.
type SolverConfig struct {
	KMax             int    `yaml:"k-max"`
	ConflictStrategy string `yaml:"conflict-strategy"`
}

// LoadSolverConfig reads and parses a SolverConfig from filePath.
func LoadSolverConfig(filePath string) (*SolverConfig, error) {
	bin, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cfg SolverConfig
	if err := yaml.Unmarshal(bin, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyTo overrides opts with any non-zero fields from cfg.
func (cfg *SolverConfig) ApplyTo(opts *Options) {
	if cfg.KMax > 0 {
		opts.KMax = cfg.KMax
	}
	if cfg.ConflictStrategy != "" {
		opts.ConflictStrategy = cfg.ConflictStrategy
	}
}
