package markdowndoc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/flipbook/document"
)

const sample = `# The Voyage

The ship left at dawn with a light wind from the east.

## Landfall

- fresh water
- timber

Some closing remarks about the landing party.
`

func TestParsePaginatesOnHeadings(t *testing.T) {
	doc, err := New().Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.TotalPages(); got != 2 {
		t.Fatalf("TotalPages = %d, want 2 (one per chapter)", got)
	}

	p1, err := doc.Page(context.Background(), 1)
	if err != nil {
		t.Fatalf("Page(1): %v", err)
	}
	tp, ok := p1.(*document.TextPage)
	if !ok {
		t.Fatalf("Page(1) is %T, want *document.TextPage", p1)
	}
	if tp.Title != "The Voyage" {
		t.Errorf("Title = %q, want chapter title", tp.Title)
	}
	if tp.Num != 1 {
		t.Errorf("Num = %d, want 1", tp.Num)
	}

	p2, err := doc.Page(context.Background(), 2)
	if err != nil {
		t.Fatalf("Page(2): %v", err)
	}
	body := strings.Join(p2.(*document.TextPage).Lines, "\n")
	if !strings.Contains(body, "Landfall") {
		t.Errorf("page 2 missing chapter heading, got:\n%s", body)
	}
	if !strings.Contains(body, "• fresh water") {
		t.Errorf("page 2 missing list item, got:\n%s", body)
	}
}

func TestLineBudgetForcesBreak(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# One Long Chapter\n\n")
	for i := 0; i < 30; i++ {
		sb.WriteString("A paragraph of its own.\n\n")
	}

	doc, err := New(WithLinesPerPage(10)).Parse([]byte(sb.String()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.TotalPages() < 3 {
		t.Errorf("TotalPages = %d, want several under a 10-line budget", doc.TotalPages())
	}
	// Continuation pages keep the chapter title.
	last, err := doc.Page(context.Background(), doc.TotalPages())
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if got := last.(*document.TextPage).Title; got != "One Long Chapter" {
		t.Errorf("continuation Title = %q, want chapter title", got)
	}
}

func TestParseEmptySource(t *testing.T) {
	if _, err := New().Parse([]byte("")); !errors.Is(err, document.ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestPageOutOfRange(t *testing.T) {
	doc, err := New().Parse([]byte("hello"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, n := range []int{0, -1, doc.TotalPages() + 1} {
		if _, err := doc.Page(context.Background(), n); !errors.Is(err, document.ErrPageOutOfRange) {
			t.Errorf("Page(%d) err = %v, want ErrPageOutOfRange", n, err)
		}
	}
}

func TestPageAfterClose(t *testing.T) {
	doc, err := New().Parse([]byte("hello"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	doc.Close()
	if _, err := doc.Page(context.Background(), 1); !errors.Is(err, document.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "absent.md"))
	var lerr *document.LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("err = %v, want *document.LoadError", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.md")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := New().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer doc.Close()
	if doc.TotalPages() != 2 {
		t.Errorf("TotalPages = %d, want 2", doc.TotalPages())
	}
}

func TestWithMathParses(t *testing.T) {
	src := "# Math\n\nInline text.\n\n$$x^2 + y^2 = z^2$$\n"
	doc, err := New(WithMath()).Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse with math: %v", err)
	}
	if doc.TotalPages() < 1 {
		t.Error("math document produced no pages")
	}
}

func TestCodeBlockIndented(t *testing.T) {
	src := "# Code\n\n```\nfunc main() {}\n```\n"
	doc, err := New().Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, err := doc.Page(context.Background(), 1)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	body := strings.Join(p.(*document.TextPage).Lines, "\n")
	if !strings.Contains(body, "    func main() {}") {
		t.Errorf("code block not indented, got:\n%s", body)
	}
}
