// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/patterneta/internal/core/domain"

// Settings is the resolved configuration of the duration service.
type Settings struct {
	PatternsDir   string
	CacheFile     string
	Extension     string
	DefaultSpeeds []int
	Watch         bool
	Machine       domain.MachineSnapshot
}

// ConfigLoader defines the interface for loading the service configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path. A missing file yields the defaults.
	Load(path string) (Settings, error)
}
