// Package viewer drives a paginated document as a simulated book:
// spread-at-a-time navigation with single-flight animated transitions,
// an unbounded raster cache, and zoom. Pixels, meshes and UI chrome
// live behind the Rasterizer and Driver contracts; this package owns
// only state.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wudi/flipbook/anim"
	"github.com/wudi/flipbook/book"
	"github.com/wudi/flipbook/cache"
	"github.com/wudi/flipbook/document"
	"github.com/wudi/flipbook/observability"
	"github.com/wudi/flipbook/raster"
)

const (
	defaultQuality    = 2.0
	defaultPageWidth  = 420.0
	defaultPageHeight = 595.0
)

// ErrDestroyed is returned by Load after Destroy.
var ErrDestroyed = errors.New("viewer: viewer is destroyed")

// TransitionError reports that the animation driver rejected a flip.
// It never escapes the viewer: the transition rolls back and the error
// is logged, because a half-finished visual transition must not leave
// the state machine stuck.
type TransitionError struct {
	From int
	To   int
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("viewer: transition %d -> %d: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

type phase int

const (
	phaseIdle phase = iota
	phaseTransitioning
)

// Option configures a Viewer.
type Option func(*Viewer)

// WithRasterizer replaces the default text/image renderer.
func WithRasterizer(r raster.Rasterizer) Option {
	return func(v *Viewer) { v.rasterizer = r }
}

// WithDriver sets the animation driver. The default is anim.Discrete,
// the degraded path with no visual transition.
func WithDriver(d anim.Driver) Option {
	return func(v *Viewer) { v.driver = d }
}

// WithLogger sets the logger.
func WithLogger(log observability.Logger) Option {
	return func(v *Viewer) {
		if log != nil {
			v.log = log
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t observability.Tracer) Option {
	return func(v *Viewer) {
		if t != nil {
			v.tracer = t
		}
	}
}

// WithQuality sets the rendering quality factor (raster pixels per
// page point).
func WithQuality(q float64) Option {
	return func(v *Viewer) {
		if q > 0 {
			v.quality = q
		}
	}
}

// WithInitialPage sets the page shown after Load, clamped to the
// document.
func WithInitialPage(page int) Option {
	return func(v *Viewer) {
		if page >= 1 {
			v.initialPage = page
		}
	}
}

// WithInitialZoom sets the zoom level applied on every Load.
func WithInitialZoom(level float64) Option {
	return func(v *Viewer) { v.initialZoom = clampZoom(level) }
}

// Viewer is the navigation and zoom facade. Methods are safe for
// concurrent use; navigation is single-flight (a request during a
// transition is dropped, not queued) while zoom is never blocked by
// navigation.
type Viewer struct {
	loader     document.Loader
	rasterizer raster.Rasterizer
	driver     anim.Driver
	log        observability.Logger
	tracer     observability.Tracer

	quality     float64
	initialPage int
	initialZoom float64

	zoom zoomControl

	mu         sync.Mutex
	doc        document.Document
	cache      *cache.PageCache
	total      int
	current    int
	phase      phase
	displayed  book.Spread
	shownLeft  *raster.PageRaster
	shownRight *raster.PageRaster
	pageWidth  float64
	pageHeight float64
	destroyed  bool

	onPageChange func(page, total int)
	onLoad       func()
	onError      func(err error)
}

// New creates a viewer that opens sources through loader.
func New(loader document.Loader, opts ...Option) (*Viewer, error) {
	v := &Viewer{
		loader:      loader,
		log:         observability.NopLogger{},
		tracer:      observability.NopTracer(),
		quality:     defaultQuality,
		initialPage: 1,
		initialZoom: 1.0,
		pageWidth:   defaultPageWidth,
		pageHeight:  defaultPageHeight,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.rasterizer == nil {
		r, err := raster.NewRenderer()
		if err != nil {
			return nil, err
		}
		v.rasterizer = r
	}
	if v.driver == nil {
		v.driver = anim.Discrete{}
	}
	v.zoom.level = v.initialZoom
	return v, nil
}

// SetDriver replaces the animation driver. Intended for presenters
// that need the viewer to exist before they can build their driver;
// call it before navigation starts.
func (v *Viewer) SetDriver(d anim.Driver) {
	if d == nil {
		return
	}
	v.mu.Lock()
	v.driver = d
	v.mu.Unlock()
}

// OnPageChange registers the page-changed observer. It fires exactly
// once per successful transition with the new current page.
func (v *Viewer) OnPageChange(fn func(page, total int)) {
	v.mu.Lock()
	v.onPageChange = fn
	v.mu.Unlock()
}

// OnLoad registers the load observer.
func (v *Viewer) OnLoad(fn func()) {
	v.mu.Lock()
	v.onLoad = fn
	v.mu.Unlock()
}

// OnError registers the error observer. Only load failures reach it;
// render and transition failures degrade in place.
func (v *Viewer) OnError(fn func(err error)) {
	v.mu.Lock()
	v.onError = fn
	v.mu.Unlock()
}

// Load opens source and shows the configured initial spread. On
// failure the previous document, if any, stays displayed and the error
// is both returned and passed to the error observer.
func (v *Viewer) Load(ctx context.Context, source string) error {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return ErrDestroyed
	}
	onErr := v.onError
	v.mu.Unlock()

	ctx, span := v.tracer.StartSpan(ctx, "viewer.load")
	defer span.Finish()
	span.SetTag("source", source)
	start := time.Now()

	doc, err := v.loader.Load(ctx, source)
	if err != nil {
		span.SetError(err)
		v.log.Error("load failed",
			observability.String("source", source),
			observability.Error("err", err))
		if onErr != nil {
			onErr(err)
		}
		return err
	}

	total := doc.TotalPages()
	pw, ph := defaultPageWidth, defaultPageHeight
	if h, err := doc.Page(ctx, 1); err == nil {
		pw, ph = h.Size()
	}

	v.mu.Lock()
	if old := v.doc; old != nil {
		old.Close()
	}
	if v.cache != nil {
		v.cache.Clear()
	}
	v.doc = doc
	v.total = total
	v.pageWidth, v.pageHeight = pw, ph
	v.current = clampPage(v.initialPage, total)
	v.displayed = book.Resolve(v.current, total)
	v.phase = phaseIdle
	v.cache = cache.New(v.renderFunc(doc), v.log)
	onLoad := v.onLoad
	spread := v.displayed
	v.mu.Unlock()

	v.zoom.set(v.initialZoom)

	left, right := v.spreadRasters(ctx, spread)
	v.mu.Lock()
	v.shownLeft, v.shownRight = left, right
	v.mu.Unlock()

	v.log.Info("document loaded",
		observability.String("source", source),
		observability.Int("pages", total),
		observability.Duration("elapsed", time.Since(start)))

	if onLoad != nil {
		onLoad()
	}
	return nil
}

// renderFunc adapts the document and rasterizer into the cache's
// render callback.
func (v *Viewer) renderFunc(doc document.Document) cache.RenderFunc {
	return func(ctx context.Context, page int) (*raster.PageRaster, error) {
		handle, err := doc.Page(ctx, page)
		if err != nil {
			return nil, &raster.RenderError{Page: page, Err: err}
		}
		start := time.Now()
		r, err := v.rasterizer.Rasterize(ctx, handle, v.quality)
		if err != nil {
			return nil, err
		}
		v.log.Debug("page rasterized",
			observability.Int("page", page),
			observability.Duration("elapsed", time.Since(start)))
		return r, nil
	}
}

// CurrentPage returns the current page, or 0 before a load.
func (v *Viewer) CurrentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// TotalPages returns the loaded document's page count.
func (v *Viewer) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// IsAnimating reports whether a transition is in flight.
func (v *Viewer) IsAnimating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase == phaseTransitioning
}

// CurrentSpread returns the displayed spread.
func (v *Viewer) CurrentSpread() book.Spread {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.displayed
}

// CacheStats returns cumulative raster cache hits and misses.
func (v *Viewer) CacheStats() (hits, misses int) {
	v.mu.Lock()
	c := v.cache
	v.mu.Unlock()
	if c == nil {
		return 0, 0
	}
	return c.Stats()
}

// Destroy releases the document and the raster cache. The viewer
// accepts no further calls.
func (v *Viewer) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return
	}
	if v.doc != nil {
		v.doc.Close()
		v.doc = nil
	}
	if v.cache != nil {
		v.cache.Clear()
		v.cache = nil
	}
	v.shownLeft, v.shownRight = nil, nil
	v.total, v.current = 0, 0
	v.destroyed = true
}

func clampPage(page, total int) int {
	if total < 1 {
		return 0
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
