package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/flipbook/document"
)

const (
	defaultFontSize   = 11.0 // points
	defaultLineHeight = 1.35
	defaultMargin     = 36.0 // points
	imageInset        = 16   // pixels kept clear around an image page
)

var paperWhite = color.RGBA{0xfd, 0xfc, 0xf7, 0xff}

// RendererOption configures the renderer.
type RendererOption func(*Renderer)

// WithFontSize sets the body font size in points.
func WithFontSize(size float64) RendererOption {
	return func(r *Renderer) {
		if size > 0 {
			r.fontSize = size
		}
	}
}

// WithLineHeight sets the line height multiplier.
func WithLineHeight(height float64) RendererOption {
	return func(r *Renderer) {
		if height > 0 {
			r.lineHeight = height
		}
	}
}

// WithMargin sets the page margin in points.
func WithMargin(margin float64) RendererOption {
	return func(r *Renderer) {
		if margin >= 0 {
			r.margin = margin
		}
	}
}

// Renderer is the default Rasterizer. Text pages are set in Go Regular
// with shaping-aware wrapping; image pages are fitted onto the page.
type Renderer struct {
	font       *sfnt.Font
	shaper     *shaper
	fontSize   float64
	lineHeight float64
	margin     float64
}

// NewRenderer creates the default renderer.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	s, err := newShaper()
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		font:       f,
		shaper:     s,
		fontSize:   defaultFontSize,
		lineHeight: defaultLineHeight,
		margin:     defaultMargin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Rasterize renders one page at the given quality factor (pixels per
// point).
func (r *Renderer) Rasterize(ctx context.Context, page document.PageHandle, quality float64) (*PageRaster, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Page: page.Number(), Err: err}
	}
	if quality <= 0 {
		quality = 1.0
	}
	w, h := pixelDims(page, quality)
	if w <= 0 || h <= 0 {
		return nil, &RenderError{Page: page.Number(), Err: errors.New("page has no area")}
	}

	switch p := page.(type) {
	case *document.TextPage:
		return r.renderText(p, quality, w, h)
	case *document.ImagePage:
		return r.renderImage(p, quality, w, h)
	default:
		return nil, &RenderError{Page: page.Number(), Err: errors.New("unsupported page content")}
	}
}

func (r *Renderer) renderText(p *document.TextPage, quality float64, w, h int) (*PageRaster, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(paperWhite), image.Point{}, draw.Src)

	sizePx := r.fontSize * quality
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, &RenderError{Page: p.Num, Err: err}
	}
	defer face.Close()

	drawer := &xfont.Drawer{Dst: img, Src: image.Black, Face: face}

	margin := r.margin * quality
	maxWidth := float64(w) - 2*margin
	lineAdvance := sizePx * r.lineHeight
	y := margin + sizePx
	bottom := float64(h) - margin - lineAdvance // keep room for the folio

	for _, line := range p.Lines {
		for _, wrapped := range r.wrap(line, sizePx, maxWidth) {
			if y > bottom {
				break
			}
			drawer.Dot = fixed.Point26_6{
				X: fixed.Int26_6(margin * 64),
				Y: fixed.Int26_6(y * 64),
			}
			drawer.DrawString(wrapped)
			y += lineAdvance
		}
		if y > bottom {
			break
		}
	}

	r.drawFolio(drawer, p.Num, w, h, sizePx)

	return &PageRaster{Page: p.Num, Quality: quality, Image: img}, nil
}

// drawFolio centers the page number near the bottom edge.
func (r *Renderer) drawFolio(drawer *xfont.Drawer, page, w, h int, sizePx float64) {
	folio := strconv.Itoa(page)
	width := xfont.MeasureString(drawer.Face, folio)
	drawer.Dot = fixed.Point26_6{
		X: fixed.Int26_6(w*64/2) - width/2,
		Y: fixed.Int26_6((float64(h) - sizePx) * 64),
	}
	drawer.DrawString(folio)
}

func (r *Renderer) renderImage(p *document.ImagePage, quality float64, w, h int) (*PageRaster, error) {
	if p.Img == nil {
		return nil, &RenderError{Page: p.Num, Err: errors.New("image page has no image")}
	}
	bg := imaging.New(w, h, paperWhite)
	fitted := imaging.Fit(p.Img, w-2*imageInset, h-2*imageInset, imaging.Lanczos)
	out := imaging.PasteCenter(bg, fitted)
	return &PageRaster{Page: p.Num, Quality: quality, Image: out}, nil
}

// wrap breaks a logical line into raster lines no wider than maxWidth
// pixels, measuring with the shaper. A single word wider than the page
// is split at rune granularity.
func (r *Renderer) wrap(line string, sizePx, maxWidth float64) []string {
	if line == "" {
		return []string{""}
	}
	if r.shaper.advance(line, sizePx) <= maxWidth {
		return []string{line}
	}

	var out []string
	var current string
	for _, word := range strings.Fields(line) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if r.shaper.advance(candidate, sizePx) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			out = append(out, current)
		}
		current = word
		for r.shaper.advance(current, sizePx) > maxWidth {
			head, tail := splitToWidth(current, func(s string) bool {
				return r.shaper.advance(s, sizePx) <= maxWidth
			})
			if head == "" {
				break
			}
			out = append(out, head)
			current = tail
		}
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) == 0 {
		return []string{line}
	}
	return out
}

// splitToWidth returns the longest prefix of s (by runes) accepted by
// fits, and the remainder.
func splitToWidth(s string, fits func(string) bool) (string, string) {
	runes := []rune(s)
	for i := len(runes) - 1; i > 0; i-- {
		if fits(string(runes[:i])) {
			return string(runes[:i]), string(runes[i:])
		}
	}
	return "", s
}

func pixelDims(page document.PageHandle, quality float64) (int, int) {
	pw, ph := page.Size()
	return int(pw*quality + 0.5), int(ph*quality + 0.5)
}
