package config

import (
	"fmt"

	"github.com/yndnr/notechain-go/internal/infra/confloader"
)

// Load reads the configuration from defaults, the optional YAML file at
// path and NOTECHAIN_* environment variables, then verifies it.
// The returned loader can Reload the same sources.
func Load(path string) (*ServerConfig, *confloader.Loader, error) {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithDefaults(DefaultsMap()),
	)

	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}
