// Package config loads the settings of the svgrender command:
// defaults, then an optional TOML file, then SVGRENDER_* environment variables.
// Command line flags are applied last, by the command itself.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgpaint"
	"github.com/charmbracelet/log"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
)

// EnvPrefix prefixes the environment variables, as in SVGRENDER_WIDTH.
const EnvPrefix = "SVGRENDER"

// ErrInvalid is wrapped by the validation errors.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	// Width and Height of the output, in pixels (png) or points (pdf).
	// Zero means the document size.
	Width  int `toml:"width" envconfig:"WIDTH"`
	Height int `toml:"height" envconfig:"HEIGHT"`
	// Format is png or pdf. Empty means guessed from the output file name.
	Format string `toml:"format" envconfig:"FORMAT"`
	// Language is a BCP 47 tag matched against systemLanguage.
	Language string `toml:"language" envconfig:"LANGUAGE"`
	// FontDirs are scanned for the families missing from the builtin fonts.
	FontDirs  []string `toml:"font_dirs" envconfig:"FONT_DIRS"`
	ErrorMode string   `toml:"error_mode" envconfig:"ERROR_MODE"`
	LogLevel  string   `toml:"log_level" envconfig:"LOG_LEVEL"`
	// MaxDepth bounds reference chains, zero meaning the renderer default.
	MaxDepth int `toml:"max_depth" envconfig:"MAX_DEPTH"`
	// Background is a CSS color painted under png outputs. Empty means transparent.
	Background string `toml:"background" envconfig:"BACKGROUND"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Language:  "en",
		ErrorMode: "warn",
		LogLevel:  "info",
	}
}

// Load reads the TOML file at path, if not empty, over the defaults,
// then applies the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) != 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	if c.Width < 0 || c.Height < 0 {
		errs = append(errs, fmt.Errorf("%w: negative size %dx%d", ErrInvalid, c.Width, c.Height))
	}
	switch strings.ToLower(c.Format) {
	case "", "png", "pdf":
	default:
		errs = append(errs, fmt.Errorf("%w: format %q", ErrInvalid, c.Format))
	}
	if _, err := language.Parse(c.Language); err != nil {
		errs = append(errs, fmt.Errorf("%w: language %q: %v", ErrInvalid, c.Language, err))
	}
	if _, err := svgdom.ParseErrorMode(c.ErrorMode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: max depth %d", ErrInvalid, c.MaxDepth))
	}
	if c.Background != "" {
		if _, err := svgpaint.ParseColor(c.Background); err != nil {
			errs = append(errs, fmt.Errorf("%w: background %q", ErrInvalid, c.Background))
		}
	}
	return errors.Join(errs...)
}

// The accessors below assume a validated Config.

func (c *Config) Tag() language.Tag {
	tag, _ := language.Parse(c.Language)
	return tag
}

func (c *Config) Mode() svgdom.ErrorMode {
	m, _ := svgdom.ParseErrorMode(c.ErrorMode)
	return m
}

func (c *Config) Level() log.Level {
	l, _ := log.ParseLevel(c.LogLevel)
	return l
}

// OutputFormat returns the format for the output file name,
// "png" or "pdf".
func (c *Config) OutputFormat(output string) string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	if strings.HasSuffix(strings.ToLower(output), ".pdf") {
		return "pdf"
	}
	return "png"
}
