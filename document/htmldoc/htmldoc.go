// Package htmldoc loads an HTML source as a paged document. Block
// elements become text lines; pages break at h1/h2 headings and at a
// line budget, mirroring the markdown loader.
package htmldoc

import (
	"context"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/flipbook/document"
)

const (
	defaultPageWidth    = 420.0
	defaultPageHeight   = 595.0
	defaultLinesPerPage = 34
)

// Loader implements document.Loader for HTML sources.
type Loader struct {
	pageWidth    float64
	pageHeight   float64
	linesPerPage int
}

// Option configures the loader.
type Option func(*Loader)

// WithLinesPerPage sets the line budget before a page break is forced.
func WithLinesPerPage(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.linesPerPage = n
		}
	}
}

// WithPageSize sets the page dimensions in points.
func WithPageSize(width, height float64) Option {
	return func(l *Loader) {
		l.pageWidth = width
		l.pageHeight = height
	}
}

// New creates an HTML loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		pageWidth:    defaultPageWidth,
		pageHeight:   defaultPageHeight,
		linesPerPage: defaultLinesPerPage,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and paginates the HTML file at source.
func (l *Loader) Load(ctx context.Context, source string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}
	src, err := os.ReadFile(source)
	if err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}
	doc, err := l.Parse(string(src))
	if err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}
	return doc, nil
}

// Parse paginates an HTML document held in memory.
func (l *Loader) Parse(source string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}

	p := &paginator{loader: l}
	p.walk(root)
	p.flush()

	if len(p.pages) == 0 {
		return nil, document.ErrEmptyDocument
	}
	for i, pg := range p.pages {
		pg.Num = i + 1
	}
	return &Document{pages: p.pages}, nil
}

// Document is a paginated HTML document.
type Document struct {
	pages  []*document.TextPage
	closed bool
}

func (d *Document) TotalPages() int { return len(d.pages) }

func (d *Document) Page(ctx context.Context, n int) (document.PageHandle, error) {
	if d.closed {
		return nil, document.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := document.CheckPage(n, len(d.pages)); err != nil {
		return nil, err
	}
	return d.pages[n-1], nil
}

func (d *Document) Close() error {
	d.closed = true
	return nil
}

type paginator struct {
	loader *Loader
	pages  []*document.TextPage
	title  string
	lines  []string
}

func (p *paginator) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2:
			title := extractText(n)
			p.flush()
			p.title = title
			p.append(title)
			p.append("")
			return
		case atom.H3, atom.H4, atom.H5, atom.H6:
			p.append(extractText(n))
			p.append("")
			return
		case atom.P:
			p.append(extractText(n))
			p.append("")
			return
		case atom.Li:
			p.append("  • " + extractText(n))
			return
		case atom.Pre:
			for _, line := range strings.Split(strings.TrimRight(extractRaw(n), "\n"), "\n") {
				p.append("    " + line)
			}
			p.append("")
			return
		case atom.Blockquote:
			for _, line := range strings.Split(extractText(n), "\n") {
				p.append("  | " + line)
			}
			p.append("")
			return
		case atom.Br:
			p.append("")
			return
		case atom.Script, atom.Style, atom.Head:
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *paginator) append(line string) {
	if len(p.lines) >= p.loader.linesPerPage {
		p.flush()
	}
	if line == "" && len(p.lines) == 0 {
		return
	}
	p.lines = append(p.lines, line)
}

func (p *paginator) flush() {
	if len(p.lines) == 0 {
		return
	}
	p.pages = append(p.pages, &document.TextPage{
		Width:  p.loader.pageWidth,
		Height: p.loader.pageHeight,
		Title:  p.title,
		Lines:  p.lines,
	})
	p.lines = nil
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// extractRaw keeps whitespace, for preformatted blocks.
func extractRaw(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
