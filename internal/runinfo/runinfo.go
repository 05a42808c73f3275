// Package runinfo tags one compilation pass (spec 5's "Run") with an
// identity and a cooperative fuel counter, the same pattern the teacher
// uses to bound recursive evaluation. checker.Program charges the counter a
// flat fee per file before dispatching it; solver operations (lazy
// expansion, conditional resolution, template matching) do not charge it.
package runinfo

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Run identifies one invocation of the checker across all the files it
// processes in parallel, so logs and incremental-cache entries from
// concurrent runs never interleave.
type Run struct {
	ID      uuid.UUID
	fuel    atomic.Int64
}

// New starts a run with the given fuel budget (spec 5's "fuel counter",
// config.CompilerOptions.MaxFuel in practice).
func New(maxFuel int) *Run {
	r := &Run{ID: uuid.New()}
	r.fuel.Store(int64(maxFuel))
	return r
}

// ErrFuelExhausted is returned by Charge once the run's budget is spent.
type ErrFuelExhausted struct {
	RunID uuid.UUID
}

func (e *ErrFuelExhausted) Error() string {
	return fmt.Sprintf("run %s: fuel exhausted", e.RunID)
}

// Charge deducts n units from the run's remaining fuel, returning
// ErrFuelExhausted once the budget goes negative. Safe for concurrent use
// by the file-parallel work pool spec 5 describes.
func (r *Run) Charge(n int64) error {
	if r.fuel.Add(-n) < 0 {
		return &ErrFuelExhausted{RunID: r.ID}
	}
	return nil
}

// Remaining reports the fuel left, for diagnostics and metrics.
func (r *Run) Remaining() int64 {
	return r.fuel.Load()
}

// runKey is an unexported type so context values under it can't collide
// with keys set by other packages.
type runKey struct{}

// WithRun attaches a Run to ctx.
func WithRun(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runKey{}, r)
}

// FromContext retrieves the Run attached by WithRun, if any.
func FromContext(ctx context.Context) (*Run, bool) {
	r, ok := ctx.Value(runKey{}).(*Run)
	return r, ok
}
