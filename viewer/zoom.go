package viewer

import (
	"image"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/wudi/flipbook/observability"
	"github.com/wudi/flipbook/raster"
)

// Zoom bounds and step size.
const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.2
)

// zoomControl owns the scale factor. It has its own lock: zoom is
// orthogonal to navigation and must never wait on an in-flight
// transition, or vice versa.
type zoomControl struct {
	mu    sync.Mutex
	level float64
}

func (z *zoomControl) get() float64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.level
}

func (z *zoomControl) set(level float64) float64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.level = clampZoom(level)
	return z.level
}

func (z *zoomControl) step(delta float64) float64 {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.level = clampZoom(z.level + delta)
	return z.level
}

func clampZoom(level float64) float64 {
	if level < MinZoom {
		return MinZoom
	}
	if level > MaxZoom {
		return MaxZoom
	}
	return level
}

// Zoom returns the current zoom level.
func (v *Viewer) Zoom() float64 { return v.zoom.get() }

// ZoomIn raises the zoom one step and returns the new level.
func (v *Viewer) ZoomIn() float64 {
	level := v.zoom.step(ZoomStep)
	v.log.Debug("zoom", observability.Float64("level", level))
	return level
}

// ZoomOut lowers the zoom one step and returns the new level.
func (v *Viewer) ZoomOut() float64 {
	level := v.zoom.step(-ZoomStep)
	v.log.Debug("zoom", observability.Float64("level", level))
	return level
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom], and
// returns the applied value.
func (v *Viewer) SetZoom(level float64) float64 {
	applied := v.zoom.set(level)
	v.log.Debug("zoom", observability.Float64("level", applied))
	return applied
}

// SpreadImages returns the displayed spread's images rescaled to the
// current zoom level, for the presentation layer to draw. Slots may be
// blank or error placeholders; they are never nil after a load.
func (v *Viewer) SpreadImages() (left, right image.Image) {
	v.mu.Lock()
	l, r := v.shownLeft, v.shownRight
	v.mu.Unlock()
	level := v.zoom.get()
	return scaleRaster(l, level), scaleRaster(r, level)
}

func scaleRaster(r *raster.PageRaster, level float64) image.Image {
	if r == nil || r.Image == nil {
		return nil
	}
	if level == 1.0 {
		return r.Image
	}
	b := r.Image.Bounds()
	w := int(float64(b.Dx())*level + 0.5)
	h := int(float64(b.Dy())*level + 0.5)
	if w < 1 || h < 1 {
		return r.Image
	}
	return imaging.Resize(r.Image, w, h, imaging.Lanczos)
}
