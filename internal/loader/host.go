package loader

import (
	"context"
	"fmt"

	"github.com/toyz/repomap/internal/processor"
	"github.com/toyz/repomap/internal/typemodel"
)

// Host delivers one processor round per loaded package, in import path
// order. The last package's round is final; with no packages a single
// empty final round is delivered.
type Host struct {
	packages []*Package
	next     int
	done     bool
}

var _ processor.Host = (*Host)(nil)

// NewHost creates a host over already loaded packages
func NewHost(pkgs []*Package) *Host {
	return &Host{packages: pkgs}
}

// Packages returns the packages the host delivers
func (h *Host) Packages() []*Package {
	return h.packages
}

// Next implements processor.Host
func (h *Host) Next(ctx context.Context) (processor.Round, error) {
	if err := ctx.Err(); err != nil {
		return processor.Round{}, err
	}
	if h.done {
		return processor.Round{}, fmt.Errorf("all %d round(s) delivered", h.rounds())
	}

	if len(h.packages) == 0 {
		h.done = true
		return processor.Round{Final: true}, nil
	}

	pkg := h.packages[h.next]
	h.next++
	h.done = h.next == len(h.packages)

	types := make([]typemodel.DeclaredType, len(pkg.Types))
	for i, t := range pkg.Types {
		types[i] = t
	}
	return processor.Round{Types: types, Final: h.done}, nil
}

func (h *Host) rounds() int {
	if len(h.packages) == 0 {
		return 1
	}
	return len(h.packages)
}
