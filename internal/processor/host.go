package processor

import (
	"context"
	"fmt"

	"github.com/toyz/repomap/internal/typemodel"
)

// StaticHost replays prepared batches as rounds, marking the last one final.
// With no batches it yields a single empty final round.
type StaticHost struct {
	batches [][]typemodel.DeclaredType
	next    int
}

// NewStaticHost creates a host over the given batches
func NewStaticHost(batches ...[]typemodel.DeclaredType) *StaticHost {
	if len(batches) == 0 {
		batches = [][]typemodel.DeclaredType{nil}
	}
	return &StaticHost{batches: batches}
}

// Next implements Host
func (h *StaticHost) Next(ctx context.Context) (Round, error) {
	if err := ctx.Err(); err != nil {
		return Round{}, err
	}
	if h.next >= len(h.batches) {
		return Round{}, fmt.Errorf("no rounds left after %d", len(h.batches))
	}
	round := Round{
		Types: h.batches[h.next],
		Final: h.next == len(h.batches)-1,
	}
	h.next++
	return round, nil
}
