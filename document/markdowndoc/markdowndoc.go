// Package markdowndoc loads a markdown source as a paged document.
// Pages break at top-level headings and at a configurable line budget,
// so a long section flows across several book pages.
package markdowndoc

import (
	"context"
	"fmt"
	"os"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/flipbook/document"
)

const (
	defaultPageWidth    = 420.0 // points, A5 portrait-ish
	defaultPageHeight   = 595.0
	defaultLinesPerPage = 34
)

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

// WithMath enables $$...$$ math blocks via the treeblood extension.
// Math is converted to MathML and carried as a text line; rasterizers
// without MathML support draw the raw expression.
func WithMath() Option {
	return func(l *Loader) { l.math = true }
}

// Loader implements document.Loader for markdown sources.
type Loader struct {
	pageWidth    float64
	pageHeight   float64
	linesPerPage int
	math         bool
}

// New creates a markdown loader.
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

// Load reads and paginates the markdown file at source.
func (l *Loader) Load(ctx context.Context, source string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}
	src, err := os.ReadFile(source)
	if err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}
	doc, err := l.Parse(src)
	if err != nil {
		return nil, &document.LoadError{Source: source, Err: err}
	}
	return doc, nil
}

// Parse paginates markdown source held in memory.
func (l *Loader) Parse(src []byte) (*Document, error) {
	var mdOpts []goldmark.Option
	if l.math {
		mdOpts = append(mdOpts, goldmark.WithExtensions(treeblood.MathML()))
	}
	md := goldmark.New(mdOpts...)
	root := md.Parser().Parse(text.NewReader(src))

	p := &paginator{
		loader: l,
	}
	p.walk(root, src)
	p.flush()

	if len(p.pages) == 0 {
		return nil, document.ErrEmptyDocument
	}
	for i, pg := range p.pages {
		pg.Num = i + 1
	}
	return &Document{pages: p.pages}, nil
}

// Document is a paginated markdown document.
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

// paginator accumulates lines into pages while walking the AST.
type paginator struct {
	loader *Loader
	pages  []*document.TextPage
	title  string
	lines  []string
}

func (p *paginator) walk(node ast.Node, src []byte) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			p.heading(n, src)
		case *ast.Paragraph:
			p.append(nodeText(n, src))
			p.append("")
		case *ast.List:
			p.list(n, src)
		case *ast.FencedCodeBlock:
			p.codeBlock(n.Lines(), src)
		case *ast.CodeBlock:
			p.codeBlock(n.Lines(), src)
		case *ast.Blockquote:
			p.blockquote(n, src)
		case *ast.ThematicBreak:
			p.append("")
		default:
			if txt := nodeText(child, src); txt != "" {
				p.append(txt)
			}
		}
	}
}

func (p *paginator) heading(n *ast.Heading, src []byte) {
	title := nodeText(n, src)
	if n.Level <= 2 {
		// A new chapter starts a fresh page even mid-budget.
		p.flush()
		p.title = title
		p.append(title)
		p.append("")
		return
	}
	p.append(title)
	p.append("")
}

func (p *paginator) list(n *ast.List, src []byte) {
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		p.append(fmt.Sprintf("  • %s", nodeText(item, src)))
	}
	p.append("")
}

func (p *paginator) blockquote(n *ast.Blockquote, src []byte) {
	for _, line := range strings.Split(nodeText(n, src), "\n") {
		p.append("  | " + line)
	}
	p.append("")
}

func (p *paginator) codeBlock(lines *text.Segments, src []byte) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		p.append("    " + strings.TrimRight(string(seg.Value(src)), "\n"))
	}
	p.append("")
}

func (p *paginator) append(line string) {
	if strings.Contains(line, "\n") {
		for _, part := range strings.Split(line, "\n") {
			p.append(part)
		}
		return
	}
	if len(p.lines) >= p.loader.linesPerPage {
		p.flush()
	}
	// No point starting a page with a blank line.
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

func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	collectText(n, src, &sb)
	return strings.TrimSpace(sb.String())
}

func collectText(n ast.Node, src []byte, sb *strings.Builder) {
	switch t := n.(type) {
	case *ast.Text:
		sb.Write(t.Segment.Value(src))
		if t.SoftLineBreak() || t.HardLineBreak() {
			sb.WriteByte('\n')
		}
		return
	case *ast.AutoLink:
		sb.Write(t.URL(src))
		return
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		collectText(child, src, sb)
	}
}
