package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/continuity/internal/foundation/errors"
)

// Load reads configuration from path, layered over Default().
//
// An empty path means DefaultPath if it exists, else the built-in defaults.
// A non-empty path that does not exist is a configuration error.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			cfg := Default()
			cfg.normalize()
			return cfg, nil
		}
		path = DefaultPath
	}

	// #nosec G304 -- path is the operator-supplied configuration file.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
			Fatal().
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		if classified, ok := errors.AsClassified(err); ok {
			return nil, classified.WithContext("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults, normalizes and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").Fatal().Build()
	}
	cfg.applyDefaults()
	cfg.normalize()
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes the default configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	// Workers is left out so every machine resolves it to its own CPU count.
	cfg := Default()
	cfg.Analysis.Workers = 0
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal default configuration").Build()
	}

	header := "# continuity configuration\n# Terminology rules fire only when the canonical term is absent from a document.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
