package fs

import (
	"context"
	"iter"
	"os"

	"go.trai.ch/patterneta/internal/core/domain"
	"go.trai.ch/patterneta/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PatternSource = (*Source)(nil)

// Source implements ports.PatternSource on the local file system.
type Source struct {
	walker    *Walker
	extension string
}

// NewSource creates a Source that discovers files with the given extension.
func NewSource(walker *Walker, extension string) *Source {
	if extension == "" {
		extension = domain.DefaultPatternExtension
	}
	return &Source{walker: walker, extension: extension}
}

// Extension returns the pattern file extension this source matches.
func (s *Source) Extension() string {
	return s.extension
}

// Discover yields every pattern file under root.
// Discovery stops early when ctx is cancelled.
func (s *Source) Discover(ctx context.Context, root string) iter.Seq2[domain.PatternFile, error] {
	return func(yield func(domain.PatternFile, error) bool) {
		for path, err := range s.walker.WalkFiles(root, s.extension) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield(domain.PatternFile{}, ctxErr)
				return
			}
			if err != nil {
				wrapped := zerr.With(zerr.Wrap(err, domain.ErrPatternDiscoveryFailed.Error()), "root", root)
				if !yield(domain.PatternFile{}, wrapped) {
					return
				}
				continue
			}
			if !yield(domain.PatternFile{Key: domain.KeyFor(path), Path: path}, nil) {
				return
			}
		}
	}
}

// ReadCoordinates parses the pattern file at path.
func (s *Source) ReadCoordinates(path string) ([]domain.Coordinate, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from discovery under the patterns directory
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrPatternOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	coords, err := ParseCoordinates(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrPatternReadFailed.Error()), "path", path)
	}
	return coords, nil
}

// ModTime returns the current modification time of the file at path.
func (s *Source) ModTime(path string) (domain.ModTime, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrPatternStatFailed.Error()), "path", path)
	}
	return domain.ModTimeOf(info.ModTime()), nil
}
