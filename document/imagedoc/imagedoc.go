// Package imagedoc loads a directory of image files as a paged
// document, one image per page in filename order. Images decode
// lazily, when a page is first requested.
package imagedoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/wudi/flipbook/document"
)

const (
	defaultPageWidth  = 420.0
	defaultPageHeight = 595.0
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Loader implements document.Loader for image directories.
type Loader struct {
	pageWidth  float64
	pageHeight float64
}

// Option configures the loader.
type Option func(*Loader)

// WithPageSize sets the page dimensions in points.
func WithPageSize(width, height float64) Option {
	return func(l *Loader) {
		l.pageWidth = width
		l.pageHeight = height
	}
}

// New creates an image-directory loader.
func New(opts ...Option) *Loader {
	l := &Loader{pageWidth: defaultPageWidth, pageHeight: defaultPageHeight}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load lists the image files under the source directory. The listing
// is fixed at load time; decoding happens per page.
func (l *Loader) Load(ctx context.Context, source string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(source, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, &document.LoadError{Source: source, Err: document.ErrEmptyDocument}
	}

	return &Document{
		paths:      paths,
		pageWidth:  l.pageWidth,
		pageHeight: l.pageHeight,
	}, nil
}

// Document is an image-directory document.
type Document struct {
	paths      []string
	pageWidth  float64
	pageHeight float64
	closed     bool
}

func (d *Document) TotalPages() int { return len(d.paths) }

// Page decodes image n. Decoding honors EXIF orientation.
func (d *Document) Page(ctx context.Context, n int) (document.PageHandle, error) {
	if d.closed {
		return nil, document.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := document.CheckPage(n, len(d.paths)); err != nil {
		return nil, err
	}
	img, err := imaging.Open(d.paths[n-1], imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imagedoc: decode %s: %w", d.paths[n-1], err)
	}
	return &document.ImagePage{
		Num:    n,
		Width:  d.pageWidth,
		Height: d.pageHeight,
		Img:    img,
	}, nil
}

func (d *Document) Close() error {
	d.closed = true
	return nil
}
