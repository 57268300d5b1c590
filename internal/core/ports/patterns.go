package ports

import (
	"context"
	"iter"

	"go.trai.ch/patterneta/internal/core/domain"
)

// PatternSource reads pattern files.
type PatternSource interface {
	// Discover yields every pattern file under root, recursively.
	Discover(ctx context.Context, root string) iter.Seq2[domain.PatternFile, error]

	// ReadCoordinates parses the pattern file at path. Malformed lines are skipped.
	ReadCoordinates(path string) ([]domain.Coordinate, error)

	// ModTime returns the current modification time of the file at path.
	ModTime(path string) (domain.ModTime, error)
}
