// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/patterneta/internal/adapters/config"
	_ "go.trai.ch/patterneta/internal/adapters/logger"
	_ "go.trai.ch/patterneta/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/patterneta/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/patterneta/internal/app"
)
