package scripting_test

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/wudi/flipbook/document"
	"github.com/wudi/flipbook/raster"
	"github.com/wudi/flipbook/scripting"
	"github.com/wudi/flipbook/viewer"
)

type memLoader struct{ pages int }

func (l *memLoader) Load(ctx context.Context, source string) (document.Document, error) {
	return &memDoc{pages: l.pages}, nil
}

type memDoc struct{ pages int }

func (d *memDoc) TotalPages() int { return d.pages }
func (d *memDoc) Page(ctx context.Context, n int) (document.PageHandle, error) {
	if err := document.CheckPage(n, d.pages); err != nil {
		return nil, err
	}
	return &document.TextPage{Num: n, Width: 50, Height: 70, Lines: []string{fmt.Sprint(n)}}, nil
}
func (d *memDoc) Close() error { return nil }

type flatRasterizer struct{}

func (flatRasterizer) Rasterize(ctx context.Context, page document.PageHandle, quality float64) (*raster.PageRaster, error) {
	return &raster.PageRaster{
		Page:  page.Number(),
		Image: image.NewRGBA(image.Rect(0, 0, 5, 7)),
	}, nil
}

func TestHooksRunOnViewerEvents(t *testing.T) {
	v, err := viewer.New(&memLoader{pages: 10}, viewer.WithRasterizer(flatRasterizer{}))
	if err != nil {
		t.Fatalf("viewer.New: %v", err)
	}

	var alerts []string
	eng := scripting.NewEngine()
	dom := scripting.NewViewerDOM(v, func(msg string) { alerts = append(alerts, msg) })
	hooks := scripting.Hooks{
		OnLoad:       `alert("loaded " + viewer.pageCount() + " pages")`,
		OnPageChange: `alert("now at " + viewer.currentPage())`,
	}
	if err := scripting.Install(v, eng, dom, hooks, nil); err != nil {
		t.Fatalf("Install: %v", err)
	}

	ctx := context.Background()
	if err := v.Load(ctx, "mem"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !v.GoToPage(ctx, 4) {
		t.Fatal("GoToPage(4) did not navigate")
	}

	want := []string{"loaded 10 pages", "now at 4"}
	if len(alerts) != len(want) {
		t.Fatalf("alerts = %v, want %v", alerts, want)
	}
	for i := range want {
		if alerts[i] != want[i] {
			t.Errorf("alert[%d] = %q, want %q", i, alerts[i], want[i])
		}
	}
}

func TestBrokenHookDoesNotBlockNavigation(t *testing.T) {
	v, err := viewer.New(&memLoader{pages: 6}, viewer.WithRasterizer(flatRasterizer{}))
	if err != nil {
		t.Fatalf("viewer.New: %v", err)
	}
	eng := scripting.NewEngine()
	dom := scripting.NewViewerDOM(v, nil)
	hooks := scripting.Hooks{OnPageChange: `throw "script bug"`}
	if err := scripting.Install(v, eng, dom, hooks, nil); err != nil {
		t.Fatalf("Install: %v", err)
	}

	ctx := context.Background()
	if err := v.Load(ctx, "mem"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !v.GoToPage(ctx, 2) {
		t.Error("navigation failed because of a broken hook")
	}
	if v.CurrentPage() != 2 {
		t.Errorf("CurrentPage = %d, want 2", v.CurrentPage())
	}
}
