package raster

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/wudi/flipbook/document"
)

func TestRenderTextPage(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	page := &document.TextPage{
		Num:    3,
		Width:  420,
		Height: 595,
		Lines:  []string{"A Chapter", "", "Some body text that should comfortably fit."},
	}
	pr, err := r.Rasterize(context.Background(), page, 1.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if pr.Page != 3 {
		t.Errorf("Page = %d, want 3", pr.Page)
	}
	if pr.IsPlaceholder() {
		t.Error("real page reported as placeholder")
	}
	b := pr.Bounds()
	if b.Dx() != 420 || b.Dy() != 595 {
		t.Errorf("bounds = %v, want 420x595 at quality 1", b)
	}
}

func TestQualityScalesRaster(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	page := &document.TextPage{Num: 1, Width: 100, Height: 140, Lines: []string{"x"}}

	pr, err := r.Rasterize(context.Background(), page, 2.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if b := pr.Bounds(); b.Dx() != 200 || b.Dy() != 280 {
		t.Errorf("bounds = %v, want 200x280 at quality 2", b)
	}
}

func TestRenderImagePage(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	page := &document.ImagePage{
		Num:    2,
		Width:  100,
		Height: 100,
		Img:    image.NewRGBA(image.Rect(0, 0, 32, 48)),
	}
	pr, err := r.Rasterize(context.Background(), page, 1.0)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if b := pr.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("bounds = %v, want 100x100", b)
	}
}

func TestRasterizeUnsupportedContent(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	_, err = r.Rasterize(context.Background(), unknownPage{}, 1.0)
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want *RenderError", err)
	}
	if rerr.Page != 9 {
		t.Errorf("RenderError.Page = %d, want 9", rerr.Page)
	}
}

type unknownPage struct{}

func (unknownPage) Number() int              { return 9 }
func (unknownPage) Size() (float64, float64) { return 10, 10 }

func TestWrapRespectsWidth(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	sizePx := 12.0
	maxWidth := 120.0

	line := strings.Repeat("wide words ", 12)
	wrapped := r.wrap(line, sizePx, maxWidth)
	if len(wrapped) < 2 {
		t.Fatalf("wrap produced %d lines, want several", len(wrapped))
	}
	for _, w := range wrapped {
		if adv := r.shaper.advance(w, sizePx); adv > maxWidth {
			t.Errorf("wrapped line %q measures %.1fpx, over %v", w, adv, maxWidth)
		}
	}
}

func TestWrapSplitsUnbreakableWord(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	word := strings.Repeat("m", 80)
	wrapped := r.wrap(word, 12.0, 100.0)
	if len(wrapped) < 2 {
		t.Fatalf("wrap produced %d lines for an oversized word, want several", len(wrapped))
	}
	var rejoined string
	for _, w := range wrapped {
		rejoined += w
	}
	if rejoined != word {
		t.Error("splitting an oversized word lost characters")
	}
}

func TestErrorPlaceholderMarked(t *testing.T) {
	cause := errors.New("decode failure")
	pr := ErrorPlaceholder(7, 420, 595, 1.0, cause)
	if !pr.IsPlaceholder() {
		t.Error("error placeholder not marked as placeholder")
	}
	if !errors.Is(pr.Err, cause) {
		t.Error("placeholder does not carry its cause")
	}
	if pr.Page != 7 {
		t.Errorf("Page = %d, want 7", pr.Page)
	}
	if pr.Image == nil {
		t.Error("placeholder has no image")
	}
}

func TestBlankPlaceholder(t *testing.T) {
	pr := Blank(420, 595, 2.0)
	if !pr.IsPlaceholder() {
		t.Error("blank not marked as placeholder")
	}
	if b := pr.Bounds(); b.Dx() != 840 || b.Dy() != 1190 {
		t.Errorf("bounds = %v, want 840x1190", b)
	}
	// Defaults apply when dimensions are unusable.
	if pr := Blank(0, -1, 0); pr.Bounds().Dx() == 0 {
		t.Error("Blank with zero dims produced an empty raster")
	}
}

func TestRasterizeCancelledContext(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page := &document.TextPage{Num: 1, Width: 100, Height: 100, Lines: []string{"x"}}
	if _, err := r.Rasterize(ctx, page, 1.0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
