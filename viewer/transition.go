package viewer

import (
	"context"
	"time"

	"github.com/wudi/flipbook/book"
	"github.com/wudi/flipbook/observability"
	"github.com/wudi/flipbook/raster"
)

// transition moves the displayed spread from oldPage's to newPage's.
// It resolves both spreads, gathers their rasters, runs the animation
// driver, and commits the result, rolling back to the old spread when
// the driver rejects. The caller owns the Transitioning phase.
func (v *Viewer) transition(ctx context.Context, oldPage, newPage int, animate bool) bool {
	ctx, span := v.tracer.StartSpan(ctx, "viewer.transition")
	defer span.Finish()
	span.SetTag("from", oldPage)
	span.SetTag("to", newPage)

	v.mu.Lock()
	total := v.total
	driver := v.driver
	v.mu.Unlock()

	oldSpread := book.Resolve(oldPage, total)
	newSpread := book.Resolve(newPage, total)

	newLeft, newRight := v.spreadRasters(ctx, newSpread)

	if !animate {
		v.commit(newPage, newSpread, newLeft, newRight)
		return true
	}

	oldLeft, oldRight := v.spreadRasters(ctx, oldSpread)

	start := time.Now()
	var err error
	if newPage > oldPage {
		err = driver.FlipForward(ctx, oldLeft, oldRight, newLeft, newRight)
	} else {
		err = driver.FlipBackward(ctx, oldLeft, oldRight, newLeft, newRight)
	}
	if err != nil {
		terr := &TransitionError{From: oldPage, To: newPage, Err: err}
		span.SetError(terr)
		v.log.Error("flip rejected, rolling back",
			observability.Int("from", oldPage),
			observability.Int("to", newPage),
			observability.Error("err", err))
		// Re-render the pre-transition spread so no partial visual
		// state survives. currentPage never moved.
		left, right := v.spreadRasters(ctx, oldSpread)
		v.commit(oldPage, oldSpread, left, right)
		return false
	}

	v.log.Debug("flip complete",
		observability.Int("from", oldPage),
		observability.Int("to", newPage),
		observability.Duration("elapsed", time.Since(start)))

	v.commit(newPage, newSpread, newLeft, newRight)
	return true
}

// spreadRasters materializes both slots of a spread. An empty slot
// yields a blank placeholder; a page whose render fails yields an
// error placeholder so one bad page never blocks navigation.
func (v *Viewer) spreadRasters(ctx context.Context, s book.Spread) (*raster.PageRaster, *raster.PageRaster) {
	return v.slotRaster(ctx, s.Left), v.slotRaster(ctx, s.Right)
}

func (v *Viewer) slotRaster(ctx context.Context, page int) *raster.PageRaster {
	v.mu.Lock()
	c := v.cache
	pw, ph := v.pageWidth, v.pageHeight
	v.mu.Unlock()

	if page == book.NoPage || c == nil {
		return raster.Blank(pw, ph, v.quality)
	}
	r, err := c.Get(ctx, page)
	if err != nil {
		v.log.Warn("page render failed, using placeholder",
			observability.Int("page", page),
			observability.Error("err", err))
		return raster.ErrorPlaceholder(page, pw, ph, v.quality, err)
	}
	return r
}

// commit publishes a spread as the displayed one.
func (v *Viewer) commit(page int, s book.Spread, left, right *raster.PageRaster) {
	v.mu.Lock()
	v.current = page
	v.displayed = s
	v.shownLeft, v.shownRight = left, right
	v.mu.Unlock()
}
