package viewer

import (
	"context"

	"github.com/wudi/flipbook/book"
	"github.com/wudi/flipbook/observability"
)

// GoToPage navigates to the spread containing page, animating the
// turn. It reports whether the page actually changed. The request is
// dropped (false, no side effects) when page is out of range, already
// current, no document is loaded, or a transition is in flight.
// Concurrent requests are rejected, never queued.
func (v *Viewer) GoToPage(ctx context.Context, page int) bool {
	return v.goTo(ctx, page, true)
}

// JumpToPage navigates like GoToPage but always takes the discrete
// path: the spread swaps in one update with no animation.
func (v *Viewer) JumpToPage(ctx context.Context, page int) bool {
	return v.goTo(ctx, page, false)
}

// NextPage turns one spread forward. No-op at the last spread.
func (v *Viewer) NextPage(ctx context.Context) bool {
	v.mu.Lock()
	target := book.NextPage(v.current, v.total)
	v.mu.Unlock()
	return v.goTo(ctx, target, true)
}

// PreviousPage turns one spread backward. No-op at the cover.
func (v *Viewer) PreviousPage(ctx context.Context) bool {
	v.mu.Lock()
	target := book.PreviousPage(v.current, v.total)
	v.mu.Unlock()
	return v.goTo(ctx, target, true)
}

// goTo is the navigation state machine. It holds the Transitioning
// phase for exactly the duration of one transition and returns to Idle
// on success and failure alike.
func (v *Viewer) goTo(ctx context.Context, page int, animate bool) bool {
	v.mu.Lock()
	if v.destroyed || v.doc == nil {
		v.mu.Unlock()
		return false
	}
	if page < 1 || page > v.total || page == v.current {
		v.mu.Unlock()
		return false
	}
	if v.phase != phaseIdle {
		// Single-flight: drop, don't queue.
		v.mu.Unlock()
		v.log.Debug("navigation dropped, transition in flight",
			observability.Int("page", page))
		return false
	}
	oldPage := v.current
	v.phase = phaseTransitioning
	v.mu.Unlock()

	changed := v.transition(ctx, oldPage, page, animate)

	v.mu.Lock()
	v.phase = phaseIdle
	notify := v.onPageChange
	current, total := v.current, v.total
	v.mu.Unlock()

	if changed && notify != nil {
		notify(current, total)
	}
	return changed
}
