package htmldoc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wudi/flipbook/document"
)

const sample = `<!DOCTYPE html>
<html>
<head><title>Ignored</title><style>p { color: red }</style></head>
<body>
<h1>First Chapter</h1>
<p>Opening paragraph with <em>emphasis</em> inside.</p>
<ul><li>alpha</li><li>beta</li></ul>
<h2>Second Chapter</h2>
<p>More text here.</p>
<pre>line one
line two</pre>
</body>
</html>`

func TestParsePaginatesOnHeadings(t *testing.T) {
	doc, err := New().Parse(sample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.TotalPages(); got != 2 {
		t.Fatalf("TotalPages = %d, want 2", got)
	}

	p1, err := doc.Page(context.Background(), 1)
	if err != nil {
		t.Fatalf("Page(1): %v", err)
	}
	tp := p1.(*document.TextPage)
	if tp.Title != "First Chapter" {
		t.Errorf("Title = %q, want %q", tp.Title, "First Chapter")
	}
	body := strings.Join(tp.Lines, "\n")
	if !strings.Contains(body, "Opening paragraph with emphasis inside.") {
		t.Errorf("inline markup not flattened, got:\n%s", body)
	}
	if !strings.Contains(body, "• alpha") {
		t.Errorf("list items missing, got:\n%s", body)
	}
	if strings.Contains(body, "color: red") {
		t.Errorf("style content leaked into page, got:\n%s", body)
	}

	p2, err := doc.Page(context.Background(), 2)
	if err != nil {
		t.Fatalf("Page(2): %v", err)
	}
	body2 := strings.Join(p2.(*document.TextPage).Lines, "\n")
	if !strings.Contains(body2, "    line one") || !strings.Contains(body2, "    line two") {
		t.Errorf("preformatted block lost its lines, got:\n%s", body2)
	}
}

func TestHeadTitleNotAPage(t *testing.T) {
	doc, err := New().Parse(sample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p1, _ := doc.Page(context.Background(), 1)
	if strings.Contains(strings.Join(p1.(*document.TextPage).Lines, " "), "Ignored") {
		t.Error("head content leaked into the first page")
	}
}

func TestParseNoContent(t *testing.T) {
	if _, err := New().Parse("<html><body></body></html>"); !errors.Is(err, document.ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestLineBudget(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<h1>Chapter</h1>")
	for i := 0; i < 40; i++ {
		sb.WriteString("<p>one paragraph</p>")
	}
	doc, err := New(WithLinesPerPage(12)).Parse(sb.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.TotalPages() < 3 {
		t.Errorf("TotalPages = %d, want several under a 12-line budget", doc.TotalPages())
	}
}

func TestPageOutOfRangeAndClose(t *testing.T) {
	doc, err := New().Parse("<p>solo</p>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := doc.Page(context.Background(), 5); !errors.Is(err, document.ErrPageOutOfRange) {
		t.Errorf("err = %v, want ErrPageOutOfRange", err)
	}
	doc.Close()
	if _, err := doc.Page(context.Background(), 1); !errors.Is(err, document.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), "/nonexistent/file.html")
	var lerr *document.LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("err = %v, want *document.LoadError", err)
	}
}
