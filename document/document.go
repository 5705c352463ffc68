// Package document defines the contracts between the viewer engine and
// whatever produces pages: a Loader opens a source, a Document hands
// out PageHandle values on demand. Decoding a concrete format lives in
// the loader implementations (markdowndoc, htmldoc, imagedoc), never in
// the engine.
package document

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// Loader-related errors.
var (
	ErrPageOutOfRange = errors.New("document: page number out of range")
	ErrEmptyDocument  = errors.New("document: source produced no pages")
	ErrClosed         = errors.New("document: document is closed")
)

// LoadError reports that a source could not be opened at all. It is the
// only error kind the viewer lets escape to its caller; everything
// downstream of a successful load degrades in place.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("document: load %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader opens a source and returns the document behind it. Load may
// suspend (file IO, network, parse) and fails with a *LoadError when
// the source cannot be opened; no partial document is returned.
type Loader interface {
	Load(ctx context.Context, source string) (Document, error)
}

// Document is an immutable, lazily-paged view of a loaded source.
// TotalPages is fixed at load time; Page may suspend while the
// underlying content is fetched or parsed.
type Document interface {
	// TotalPages returns the page count, >= 0.
	TotalPages() int

	// Page returns the handle for page n (1-based). It fails with
	// ErrPageOutOfRange when n is outside [1, TotalPages] and with
	// ErrClosed after Close.
	Page(ctx context.Context, n int) (PageHandle, error)

	// Close releases the source. Page handles already returned stay
	// valid; further Page calls fail.
	Close() error
}

// PageHandle is one page's content before rasterization. Rasterizers
// switch on the concrete type; unknown types rasterize to an error
// placeholder rather than failing navigation.
type PageHandle interface {
	// Number returns the 1-based page number.
	Number() int

	// Size returns the page dimensions in points.
	Size() (width, height float64)
}

// TextPage is a page of laid-out text lines. Lines are logical lines;
// the rasterizer re-wraps them to the raster width.
type TextPage struct {
	Num    int
	Width  float64
	Height float64
	Title  string
	Lines  []string
}

func (p *TextPage) Number() int              { return p.Num }
func (p *TextPage) Size() (float64, float64) { return p.Width, p.Height }

// ImagePage is a page backed by a decoded image.
type ImagePage struct {
	Num    int
	Width  float64
	Height float64
	Img    image.Image
}

func (p *ImagePage) Number() int              { return p.Num }
func (p *ImagePage) Size() (float64, float64) { return p.Width, p.Height }

// CheckPage validates a 1-based page number against total.
func CheckPage(n, total int) error {
	if n < 1 || n > total {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, total)
	}
	return nil
}
