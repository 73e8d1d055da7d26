package cli

import (
	"os"
	"path/filepath"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/processor"
)

// Cleaner removes a previously written artifact
type Cleaner struct{}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean removes the artifact named resource below output, then any parent
// directories it leaves empty, stopping at output. It returns the artifact
// path and whether a file was removed.
func (c *Cleaner) Clean(output, resource string) (string, bool, error) {
	dest := processor.DirDestination{Root: output}
	target, err := dest.Path(resource)
	if err != nil {
		return "", false, errors.WrapConfigurationError("resource", "validate", err)
	}

	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return target, false, nil
		}
		return target, false, errors.WrapFileSystemError("check", target, err)
	}

	if err := os.Remove(target); err != nil {
		return target, false, errors.WrapFileSystemError("remove", target, err)
	}

	root := filepath.Clean(output)
	for dir := filepath.Dir(target); dir != root && dir != "." && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
	}

	return target, true, nil
}
