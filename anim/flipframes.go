package anim

import (
	"context"
	"errors"
	"image"

	"github.com/disintegration/imaging"

	"github.com/wudi/flipbook/raster"
)

const defaultFrameCount = 12

// FrameSink receives the composited frames of a flip, one at a time.
// Returning an error aborts the flip; the viewer rolls back.
type FrameSink interface {
	Frame(img image.Image) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(img image.Image) error

func (f FrameSinkFunc) Frame(img image.Image) error { return f(img) }

// FrameFlipOption configures the driver.
type FrameFlipOption func(*FrameFlip)

// WithFrameCount sets how many frames one flip produces.
func WithFrameCount(n int) FrameFlipOption {
	return func(f *FrameFlip) {
		if n > 0 {
			f.frames = n
		}
	}
}

// FrameFlip composites a page turn in software: the turning leaf is
// squeezed toward the spine, flips over at the midpoint, and widens
// again showing its back face. Frames go to the sink; presenting them
// is the sink's problem.
type FrameFlip struct {
	sink   FrameSink
	frames int
}

// NewFrameFlip creates a software flip driver writing to sink.
func NewFrameFlip(sink FrameSink, opts ...FrameFlipOption) *FrameFlip {
	f := &FrameFlip{sink: sink, frames: defaultFrameCount}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FrameFlip) FlipForward(ctx context.Context, oldLeft, oldRight, newLeft, newRight *raster.PageRaster) error {
	return f.flip(ctx, Forward, oldLeft, oldRight, newLeft, newRight)
}

func (f *FrameFlip) FlipBackward(ctx context.Context, oldLeft, oldRight, newLeft, newRight *raster.PageRaster) error {
	return f.flip(ctx, Backward, oldLeft, oldRight, newLeft, newRight)
}

func (f *FrameFlip) flip(ctx context.Context, dir Direction, oldLeft, oldRight, newLeft, newRight *raster.PageRaster) error {
	if f.sink == nil {
		return errors.New("anim: frame flip has no sink")
	}

	pageW, pageH := spreadDims(oldLeft, oldRight, newLeft, newRight)
	if pageW <= 0 || pageH <= 0 {
		return errors.New("anim: rasters have no area")
	}

	// While the leaf is in the air the exposed base differs per
	// direction. Forward: the leaf carries old-right on its front and
	// new-left on its back, over a base of old-left and new-right.
	var baseLeft, baseRight, front, back image.Image
	if dir == Forward {
		baseLeft, baseRight = rasterImage(oldLeft), rasterImage(newRight)
		front, back = rasterImage(oldRight), rasterImage(newLeft)
	} else {
		baseLeft, baseRight = rasterImage(newLeft), rasterImage(oldRight)
		front, back = rasterImage(oldLeft), rasterImage(newRight)
	}

	for i := 1; i <= f.frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := float64(i) / float64(f.frames)
		frame := f.compose(dir, t, pageW, pageH, baseLeft, baseRight, front, back)
		if err := f.sink.Frame(frame); err != nil {
			return err
		}
	}
	return nil
}

// compose renders one frame at progress t in (0, 1].
func (f *FrameFlip) compose(dir Direction, t float64, pageW, pageH int, baseLeft, baseRight, front, back image.Image) image.Image {
	canvas := imaging.New(2*pageW, pageH, image.Transparent.C)
	canvas = imaging.Paste(canvas, fitPage(baseLeft, pageW, pageH), image.Pt(0, 0))
	canvas = imaging.Paste(canvas, fitPage(baseRight, pageW, pageH), image.Pt(pageW, 0))

	// The leaf's apparent width follows the cosine of the turn angle:
	// full width at rest, zero edge-on at the midpoint.
	var leaf image.Image
	var leafW, leafX int
	if t < 0.5 {
		leafW = int(float64(pageW) * (1 - 2*t))
		leaf = front
	} else {
		leafW = int(float64(pageW) * (2*t - 1))
		leaf = back
	}
	if leafW > 0 {
		squeezed := imaging.Resize(fitPage(leaf, pageW, pageH), leafW, pageH, imaging.Linear)
		onRight := (dir == Forward) == (t < 0.5)
		if onRight {
			leafX = pageW // against the spine, extending right
		} else {
			leafX = pageW - leafW // against the spine, extending left
		}
		canvas = imaging.Paste(canvas, squeezed, image.Pt(leafX, 0))
	}
	return canvas
}

func rasterImage(r *raster.PageRaster) image.Image {
	if r == nil || r.Image == nil {
		return imaging.New(1, 1, image.White.C)
	}
	return r.Image
}

func fitPage(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

func spreadDims(rs ...*raster.PageRaster) (int, int) {
	var w, h int
	for _, r := range rs {
		b := r.Bounds()
		if b.Dx() > w {
			w = b.Dx()
		}
		if b.Dy() > h {
			h = b.Dy()
		}
	}
	return w, h
}
