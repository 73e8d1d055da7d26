package processor

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/properties"
)

const (
	// DefaultResourceName is the artifact's logical name under the output root
	DefaultResourceName = "META-INF-CUSTOM/curd-repos-mappings.properties"

	// GeneratorComment is written as the artifact's only comment line
	GeneratorComment = "Generated by repomap"
)

// Destination creates the artifact resource
type Destination interface {
	Create(resource string) (io.WriteCloser, error)
}

// DirDestination writes resources as files below Root, creating parent
// directories as needed.
type DirDestination struct {
	Root string
}

// Path returns the file path a resource is written to
func (d DirDestination) Path(resource string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(resource, "\\", "/"))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("resource name %q must be relative to the output root", resource)
	}
	return filepath.Join(d.Root, filepath.FromSlash(clean)), nil
}

// Create implements Destination
func (d DirDestination) Create(resource string) (io.WriteCloser, error) {
	target, err := d.Path(resource)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, err
	}
	return os.Create(target)
}

// WriterDestination streams every resource to W
type WriterDestination struct {
	W io.Writer
}

// Create implements Destination
func (d WriterDestination) Create(string) (io.WriteCloser, error) {
	return nopCloser{d.W}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type persistOptions struct {
	resource string
	comment  string
}

// PersistOption configures Flush
type PersistOption func(*persistOptions)

// ResourceName overrides the artifact's logical name. Empty keeps the default.
func ResourceName(name string) PersistOption {
	return func(o *persistOptions) {
		if name != "" {
			o.resource = name
		}
	}
}

// Comment overrides the generator comment line
func Comment(text string) PersistOption {
	return func(o *persistOptions) {
		o.comment = text
	}
}

// Flush writes m through dest: one generator comment line, then one
// key=value line per entry in order. Any failure is an ArtifactWriteError;
// nothing is retried.
func Flush(m *Metadata, dest Destination, opts ...PersistOption) error {
	o := persistOptions{resource: DefaultResourceName, comment: GeneratorComment}
	for _, opt := range opts {
		opt(&o)
	}
	resource := o.resource

	w, err := dest.Create(resource)
	if err != nil {
		return errors.ArtifactWriteError(resource, err)
	}

	if err := properties.Store(w, o.comment, m.Snapshot()); err != nil {
		if cerr := w.Close(); cerr != nil {
			err = stderrors.Join(err, cerr)
		}
		return errors.ArtifactWriteError(resource, err)
	}
	if err := w.Close(); err != nil {
		return errors.ArtifactWriteError(resource, err)
	}
	return nil
}
