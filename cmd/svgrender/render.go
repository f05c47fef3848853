package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgpaint"
	"github.com/benoitkugler/oksvgrender/svgpdf"
	"github.com/benoitkugler/oksvgrender/svgraster"
	"github.com/benoitkugler/oksvgrender/svgrender"
	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

func newRenderCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render <file.svg>",
		Short: "Render a document to a PNG or PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
			}
			return a.render(cmd.Context(), input, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to the input name with a .png extension)")
	return cmd
}

func (a *app) render(ctx context.Context, input, output string) error {
	start := time.Now()
	doc, opts, err := a.load(ctx, input)
	if err != nil {
		return err
	}
	format := a.cfg.OutputFormat(output)
	switch format {
	case "pdf":
		err = a.renderPDF(ctx, doc, opts, output)
	default:
		err = a.renderPNG(ctx, doc, opts, output)
	}
	if err != nil {
		return err
	}
	a.logger.Info("rendered", "output", output, "format", format, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func (a *app) renderPNG(ctx context.Context, doc *svgdom.Document, opts svgrender.Options, output string) error {
	z := &svgraster.Rasterizer{Options: opts}
	frame, err := z.Rasterize(ctx, doc, a.cfg.Width, a.cfg.Height)
	if frame == nil {
		return err
	}
	if err := a.check(err); err != nil {
		return err
	}

	img := image.Image(frame.Image)
	if a.cfg.Background != "" {
		bg, _ := svgpaint.ParseColor(a.cfg.Background) // validated
		out := image.NewRGBA(frame.Image.Bounds())
		draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
		draw.Draw(out, out.Bounds(), frame.Image, image.Point{}, draw.Over)
		img = out
	}

	f, err := createFile(output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", output, err)
	}
	return f.Close()
}

func (a *app) renderPDF(ctx context.Context, doc *svgdom.Document, opts svgrender.Options, output string) error {
	opts.Width, opts.Height = float64(a.cfg.Width), float64(a.cfg.Height)
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreator("svgrender", true)
	err := svgpdf.Render(ctx, pdf, doc, opts)
	if pdf.PageCount() == 0 {
		return errors.Join(err, fmt.Errorf("nothing rendered to %s", output))
	}
	if err := a.check(err); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(output)
}
