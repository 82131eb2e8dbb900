package config

// Config represents the full application configuration.
type Config struct {
	Output        OutputConfig        `yaml:"output"`
	Git           GitConfig           `yaml:"git"`
	Store         StoreConfig         `yaml:"store"`
	Redaction     RedactionConfig     `yaml:"redaction"`
	Gate          GateConfig          `yaml:"gate"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// OutputConfig controls where report artifacts are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// GitConfig locates the repository used by branch scans.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// StoreConfig configures the run-history persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RedactionConfig toggles snippet redaction in reports and the store.
type RedactionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GateConfig holds CI gate defaults.
type GateConfig struct {
	// Stage3Threshold fails the stage 3 gate when the forecast score
	// reaches it.
	Stage3Threshold float64 `yaml:"stage3Threshold"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the structured pipeline logger.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // json, human
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Git = chooseGit(base.Git, overlay.Git)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Redaction = chooseRedaction(base.Redaction, overlay.Redaction)
	result.Gate = chooseGate(base.Gate, overlay.Gate)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)
	return result
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseGit(base, overlay GitConfig) GitConfig {
	if overlay.RepositoryDir != "" {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseRedaction(base, overlay RedactionConfig) RedactionConfig {
	if overlay.Enabled {
		return overlay
	}
	return base
}

func chooseGate(base, overlay GateConfig) GateConfig {
	if overlay.Stage3Threshold != 0 {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
