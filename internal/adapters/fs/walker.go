// Package fs provides file system adapters for discovering and reading pattern files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skipDirectories are directories that never contain patterns.
var skipDirectories = map[string]bool{
	".git": true,
	".jj":  true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every file under root whose name ends with ext (case-insensitive),
// skipping VCS directories. Walk errors are yielded alongside an empty path.
func (w *Walker) WalkFiles(root, ext string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield("", err) {
					return filepath.SkipAll
				}
				// Unreadable subdirectories are skipped, the rest of the tree is still walked.
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if skipDirectories[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}

			if filepath.Ext(d.Name()) != ext {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
