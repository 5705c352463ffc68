// Package raster turns page handles into pixel representations. The
// viewer never draws; it asks a Rasterizer for a PageRaster and hands
// the result to the presentation side.
package raster

import (
	"context"
	"fmt"
	"image"

	"github.com/wudi/flipbook/document"
)

// PageRaster is one fully rendered page at a fixed quality factor.
// Identity is the page number; the cache guarantees at most one live
// raster per page.
type PageRaster struct {
	Page    int
	Quality float64
	Image   image.Image

	// Err is set when this raster is an error placeholder standing in
	// for a page that failed to render.
	Err error
}

// Bounds returns the pixel bounds of the raster image.
func (r *PageRaster) Bounds() image.Rectangle {
	if r == nil || r.Image == nil {
		return image.Rectangle{}
	}
	return r.Image.Bounds()
}

// IsPlaceholder reports whether this raster stands in for a page that
// could not be rendered, or for an empty spread slot.
func (r *PageRaster) IsPlaceholder() bool {
	return r == nil || r.Err != nil || r.Page == 0
}

// RenderError reports that one page's rasterization failed. The viewer
// recovers by substituting an error placeholder; a RenderError never
// blocks navigation of the rest of the document.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("raster: page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Rasterizer produces the pixels for one page. Quality scales the
// raster resolution: 1.0 renders one pixel per point. Rasterize may
// suspend; failures are reported as *RenderError.
type Rasterizer interface {
	Rasterize(ctx context.Context, page document.PageHandle, quality float64) (*PageRaster, error)
}
