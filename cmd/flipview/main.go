// Command flipview opens a document in a desktop window with animated
// page turns. Arrow keys turn spreads, Home/End jump to the covers,
// +/- zoom, Escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/flipbook/anim/ebitenflip"
	"github.com/wudi/flipbook/document"
	"github.com/wudi/flipbook/document/htmldoc"
	"github.com/wudi/flipbook/document/imagedoc"
	"github.com/wudi/flipbook/document/markdowndoc"
	"github.com/wudi/flipbook/viewer"
)

func main() {
	quality := flag.Float64("quality", 2.0, "raster quality (pixels per point)")
	page := flag.Int("page", 1, "initial page")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: flipview [flags] <source>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	source := flag.Arg(0)

	if err := run(source, *quality, *page); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(source string, quality float64, page int) error {
	loader, err := loaderFor(source)
	if err != nil {
		return err
	}

	v, err := viewer.New(loader,
		viewer.WithQuality(quality),
		viewer.WithInitialPage(page))
	if err != nil {
		return err
	}
	defer v.Destroy()

	p := ebitenflip.NewPresenter(v, "flipview: "+filepath.Base(source))
	// The window's driver animates the turns; wire it before the first
	// navigation.
	v.SetDriver(p.Driver())

	if err := v.Load(context.Background(), source); err != nil {
		return err
	}
	return p.Run()
}

func loaderFor(source string) (document.Loader, error) {
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return imagedoc.New(), nil
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".md", ".markdown":
		return markdowndoc.New(markdowndoc.WithMath()), nil
	case ".html", ".htm":
		return htmldoc.New(), nil
	default:
		return nil, fmt.Errorf("unsupported source %q (want .md, .html or an image directory)", source)
	}
}
