// Command flipbook inspects and renders book-style documents from the
// terminal: spread layout, spread exports, and flip-animation frame
// dumps.
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/wudi/flipbook/anim"
	"github.com/wudi/flipbook/book"
	"github.com/wudi/flipbook/document"
	"github.com/wudi/flipbook/document/htmldoc"
	"github.com/wudi/flipbook/document/imagedoc"
	"github.com/wudi/flipbook/document/markdowndoc"
	"github.com/wudi/flipbook/scripting"
	"github.com/wudi/flipbook/viewer"
)

var rootCmd = &cobra.Command{
	Use:   "flipbook",
	Short: "Render paginated documents as a simulated book",
	Long: `flipbook maps a paginated document onto book spreads: page 1 is the
cover, interior pages pair up the way a bound book does, and page
turns animate one spread at a time.

Markdown and HTML files paginate by headings and line budget; a
directory of images becomes one page per image.`,
}

var infoCmd = &cobra.Command{
	Use:   "info <source>",
	Short: "Show page count and spread layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := loaderFor(args[0])
		if err != nil {
			return err
		}
		doc, err := loader.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		total := doc.TotalPages()
		fmt.Printf("%s: %d pages\n", args[0], total)
		seen := book.Spread{}
		for page := 1; page <= total; page++ {
			s := book.Resolve(page, total)
			if s == seen {
				continue
			}
			seen = s
			fmt.Printf("  spread %s\n", formatSpread(s))
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <source>",
	Short: "Render every spread to PNG files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out")
		quality, _ := cmd.Flags().GetFloat64("quality")
		zoom, _ := cmd.Flags().GetFloat64("zoom")
		hook, _ := cmd.Flags().GetString("on-page-change")

		v, err := newViewer(args[0], quality)
		if err != nil {
			return err
		}
		defer v.Destroy()

		if hook != "" {
			eng := scripting.NewEngine()
			dom := scripting.NewViewerDOM(v, func(msg string) {
				fmt.Printf("[script] %s\n", msg)
			})
			if err := scripting.Install(v, eng, dom, scripting.Hooks{OnPageChange: hook}, nil); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		if err := v.Load(ctx, args[0]); err != nil {
			return err
		}
		v.SetZoom(zoom)
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}

		total := v.TotalPages()
		for {
			s := v.CurrentSpread()
			left, right := v.SpreadImages()
			path := filepath.Join(outDir, fmt.Sprintf("spread_%03d.png", v.CurrentPage()))
			if err := imaging.Save(sideBySide(left, right), path); err != nil {
				return err
			}
			fmt.Printf("wrote %s  %s\n", path, formatSpread(s))

			target := book.NextPage(v.CurrentPage(), total)
			if target == v.CurrentPage() || !v.JumpToPage(ctx, target) {
				break
			}
		}
		return nil
	},
}

var flipCmd = &cobra.Command{
	Use:   "flip <source>",
	Short: "Dump the animation frames of one page turn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out")
		quality, _ := cmd.Flags().GetFloat64("quality")
		from, _ := cmd.Flags().GetInt("from")
		to, _ := cmd.Flags().GetInt("to")
		frames, _ := cmd.Flags().GetInt("frames")

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}

		n := 0
		sink := anim.FrameSinkFunc(func(img image.Image) error {
			n++
			path := filepath.Join(outDir, fmt.Sprintf("frame_%03d.png", n))
			if err := imaging.Save(img, path); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		})

		v, err := newViewer(args[0], quality,
			viewer.WithDriver(anim.NewFrameFlip(sink, anim.WithFrameCount(frames))),
			viewer.WithInitialPage(from))
		if err != nil {
			return err
		}
		defer v.Destroy()

		ctx := cmd.Context()
		if err := v.Load(ctx, args[0]); err != nil {
			return err
		}
		if !v.GoToPage(ctx, to) {
			return fmt.Errorf("no transition from page %d to %d", v.CurrentPage(), to)
		}
		return nil
	},
}

func newViewer(source string, quality float64, extra ...viewer.Option) (*viewer.Viewer, error) {
	loader, err := loaderFor(source)
	if err != nil {
		return nil, err
	}
	opts := append([]viewer.Option{viewer.WithQuality(quality)}, extra...)
	return viewer.New(loader, opts...)
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

func sideBySide(left, right image.Image) image.Image {
	var w, h int
	for _, img := range []image.Image{left, right} {
		if img == nil {
			continue
		}
		if img.Bounds().Dx() > w {
			w = img.Bounds().Dx()
		}
		if img.Bounds().Dy() > h {
			h = img.Bounds().Dy()
		}
	}
	canvas := imaging.New(2*w, h, image.White.C)
	if left != nil {
		canvas = imaging.Paste(canvas, left, image.Pt(0, 0))
	}
	if right != nil {
		canvas = imaging.Paste(canvas, right, image.Pt(w, 0))
	}
	return canvas
}

func formatSpread(s book.Spread) string {
	left, right := "·", "·"
	if s.HasLeft() {
		left = fmt.Sprint(s.Left)
	}
	if s.HasRight() {
		right = fmt.Sprint(s.Right)
	}
	return fmt.Sprintf("[%s | %s]", left, right)
}

func init() {
	exportCmd.Flags().StringP("out", "o", "spreads", "Output directory")
	exportCmd.Flags().Float64("quality", 2.0, "Raster quality (pixels per point)")
	exportCmd.Flags().Float64("zoom", 1.0, "Zoom level, clamped to [0.5, 3.0]")
	exportCmd.Flags().String("on-page-change", "", "JavaScript run after each page change")

	flipCmd.Flags().StringP("out", "o", "frames", "Output directory")
	flipCmd.Flags().Float64("quality", 2.0, "Raster quality (pixels per point)")
	flipCmd.Flags().Int("from", 1, "Page to flip from")
	flipCmd.Flags().Int("to", 2, "Page to flip to")
	flipCmd.Flags().Int("frames", 12, "Frames per flip")

	rootCmd.AddCommand(infoCmd, exportCmd, flipCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
