package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/patterneta/internal/adapters/logger"
	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
)

// NodeID is the unique identifier for the pattern watcher factory Graft node.
const NodeID graft.ID = "adapter.watcher"

// Factory creates a watcher for pattern files with the given extension.
type Factory func(extension string) (ports.Watcher, error)

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func(extension string) (ports.Watcher, error) {
				if extension == "" {
					extension = domain.DefaultPatternExtension
				}
				return NewWatcher(extension, log)
			}, nil
		},
	})
}
