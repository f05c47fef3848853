package main

import (
	"context"
	"io"
	"os"

	"github.com/benoitkugler/oksvgrender/internal/config"
	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgfont"
	"github.com/benoitkugler/oksvgrender/svgrender"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newLogger creates a logger with timestamp formatting, writing to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// flags are the options shared by every command. They take
// precedence over the configuration file and the environment.
type flags struct {
	configPath string
	verbose    bool
	width      int
	height     int
	lang       string
	errorMode  string
	fontDirs   []string
}

// app is built before running a command.
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	var (
		f flags
		a app
	)
	root := &cobra.Command{
		Use:          "svgrender",
		Short:        "svgrender renders SVG documents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			level := cfg.Level()
			if f.verbose {
				level = log.DebugLevel
			}
			a.cfg, a.logger = cfg, newLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(svgrender.WithLogger(cmd.Context(), a.logger))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")
	pf.IntVar(&f.width, "width", 0, "output width (0 for the document width)")
	pf.IntVar(&f.height, "height", 0, "output height (0 for the document height)")
	pf.StringVar(&f.lang, "lang", "", "user language, matched against systemLanguage")
	pf.StringVar(&f.errorMode, "error-mode", "", "ignore, warn or strict")
	pf.StringSliceVar(&f.fontDirs, "font-dir", nil, "directory scanned for missing font families")

	root.AddCommand(newRenderCmd(&a))
	root.AddCommand(newHitCmd(&a))
	return root
}

// apply copies the flags explicitly set on the command line.
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("lang") {
		cfg.Language = f.lang
	}
	if changed("error-mode") {
		cfg.ErrorMode = f.errorMode
	}
	if changed("font-dir") {
		cfg.FontDirs = append(cfg.FontDirs, f.fontDirs...)
	}
}

// load parses the document at path and waits for its fonts.
func (a *app) load(ctx context.Context, path string) (*svgdom.Document, svgrender.Options, error) {
	doc, err := svgdom.ParseFile(path, svgdom.WithLogger(a.logger), svgdom.WithErrorMode(a.cfg.Mode()))
	if err != nil {
		return nil, svgrender.Options{}, err
	}
	fonts := svgfont.NewRegistry(svgfont.WithFontDirs(a.cfg.FontDirs...), svgfont.WithLogger(a.logger))
	fonts.ResolveDocument(ctx, doc)
	if err := fonts.Wait(ctx, doc.ID); err != nil {
		if ctx.Err() != nil {
			return nil, svgrender.Options{}, err
		}
		a.logger.Warn("font resolution failed", "err", err)
	}
	a.logger.Debug("document loaded", "path", path, "families", fonts.Families())

	opts := svgrender.Options{
		Logger:    a.logger,
		ErrorMode: a.cfg.Mode(),
		Language:  a.cfg.Tag(),
		Fonts:     fonts,
		MaxDepth:  a.cfg.MaxDepth,
	}
	return doc, opts, nil
}

// check reports the rendering errors: fatal in strict mode,
// logged otherwise.
func (a *app) check(err error) error {
	if err == nil {
		return nil
	}
	if a.cfg.Mode() == svgdom.StrictErrorMode {
		return err
	}
	a.logger.Warn("rendering problems", "err", err)
	return nil
}

func createFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
}
