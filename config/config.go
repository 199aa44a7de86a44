// Package config loads docflow settings from docflow.yaml, DOCFLOW_* environment
// variables and built-in defaults, and turns them into layout options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ByLCY/docflow/layout"
	canvasrenderer "github.com/ByLCY/docflow/renderer/canvas"
)

// Config is the decoded configuration. Lengths are strings with units
// ("50pt", "2cm", "17.5" for millimetres).
type Config struct {
	Page    PageConfig        `mapstructure:"page"`
	Text    TextConfig        `mapstructure:"text"`
	Image   ImageConfig       `mapstructure:"image"`
	Heading HeadingConfig     `mapstructure:"heading"`
	Fonts   map[string]string `mapstructure:"fonts"` // style name → font file
	Output  OutputConfig      `mapstructure:"output"`
	Log     LogConfig         `mapstructure:"log"`
}

// PageConfig selects the paper and its margins.
type PageConfig struct {
	Size      string `mapstructure:"size"` // named size, ignored when width and height are set
	Landscape bool   `mapstructure:"landscape"`
	Width     string `mapstructure:"width"`
	Height    string `mapstructure:"height"`
	Margin    string `mapstructure:"margin"` // all four sides unless overridden below
	Top       string `mapstructure:"margin_top"`
	Right     string `mapstructure:"margin_right"`
	Bottom    string `mapstructure:"margin_bottom"`
	Left      string `mapstructure:"margin_left"`
}

// TextConfig controls type size and vertical rhythm.
type TextConfig struct {
	FontSize         float64 `mapstructure:"font_size"` // pt
	LineHeight       string  `mapstructure:"line_height"`
	ParagraphSpacing float64 `mapstructure:"paragraph_spacing"` // in lines
	Bullet           string  `mapstructure:"bullet"`
}

// ImageConfig controls image scaling.
type ImageConfig struct {
	MaxWidth string  `mapstructure:"max_width"`
	Padding  string  `mapstructure:"padding"`
	DPI      float64 `mapstructure:"dpi"`
}

// HeadingConfig selects the heading classifier.
type HeadingConfig struct {
	MaxLength   int  `mapstructure:"max_length"`   // bold paragraphs shorter than this are headings
	NamedStyles bool `mapstructure:"named_styles"` // also honour Heading* style names from the source
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Unique bool   `mapstructure:"unique"`
	Jobs   int    `mapstructure:"jobs"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("page.size", "A4")
	v.SetDefault("page.landscape", false)
	v.SetDefault("page.width", "")
	v.SetDefault("page.height", "")
	v.SetDefault("page.margin", "50pt")
	v.SetDefault("page.margin_top", "")
	v.SetDefault("page.margin_right", "")
	v.SetDefault("page.margin_bottom", "")
	v.SetDefault("page.margin_left", "")
	v.SetDefault("text.font_size", 12.0)
	v.SetDefault("text.line_height", "14.5pt")
	v.SetDefault("text.paragraph_spacing", 1.0)
	v.SetDefault("text.bullet", "• ")
	v.SetDefault("image.max_width", "400pt")
	v.SetDefault("image.padding", "10pt")
	v.SetDefault("image.dpi", 72.0)
	v.SetDefault("heading.max_length", layout.DefaultHeadingLimit)
	v.SetDefault("heading.named_styles", true)
	v.SetDefault("fonts", map[string]string{})
	v.SetDefault("output.dir", "")
	v.SetDefault("output.unique", false)
	v.SetDefault("output.jobs", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads the configuration. With an explicit path the file must exist;
// otherwise docflow.yaml is looked up in the working directory and the user
// config directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DOCFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "docflow"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Geometry resolves the page size and margins.
func (c *Config) Geometry() (layout.PageGeometry, error) {
	var size layout.PageSize
	if c.Page.Width != "" && c.Page.Height != "" {
		w, err := layout.ParseLength(c.Page.Width)
		if err != nil {
			return layout.PageGeometry{}, fmt.Errorf("page.width: %w", err)
		}
		h, err := layout.ParseLength(c.Page.Height)
		if err != nil {
			return layout.PageGeometry{}, fmt.Errorf("page.height: %w", err)
		}
		size = layout.PageSize{Width: w.MM(), Height: h.MM()}
		if c.Page.Landscape {
			size.Width, size.Height = size.Height, size.Width
		}
	} else {
		var ok bool
		if size, ok = layout.LookupPageSize(c.Page.Size, c.Page.Landscape); !ok {
			return layout.PageGeometry{}, fmt.Errorf("page.size: unknown paper %q", c.Page.Size)
		}
	}

	all, err := layout.ParseLength(c.Page.Margin)
	if err != nil {
		return layout.PageGeometry{}, fmt.Errorf("page.margin: %w", err)
	}
	side := func(key, value string) (float64, error) {
		if value == "" {
			return all.MM(), nil
		}
		l, err := layout.ParseLength(value)
		if err != nil {
			return 0, fmt.Errorf("page.%s: %w", key, err)
		}
		return l.MM(), nil
	}
	var m layout.Margin
	if m.Top, err = side("margin_top", c.Page.Top); err != nil {
		return layout.PageGeometry{}, err
	}
	if m.Right, err = side("margin_right", c.Page.Right); err != nil {
		return layout.PageGeometry{}, err
	}
	if m.Bottom, err = side("margin_bottom", c.Page.Bottom); err != nil {
		return layout.PageGeometry{}, err
	}
	if m.Left, err = side("margin_left", c.Page.Left); err != nil {
		return layout.PageGeometry{}, err
	}
	return layout.PageGeometry{Width: size.Width, Height: size.Height, Margin: m}, nil
}

// LayoutOptions builds layout options without Renderer, Measurer or Logger;
// those are attached per conversion.
func (c *Config) LayoutOptions() (layout.Options, error) {
	opts := layout.DefaultOptions()
	page, err := c.Geometry()
	if err != nil {
		return opts, err
	}
	opts.Page = page

	if c.Text.FontSize <= 0 {
		return opts, fmt.Errorf("text.font_size must be positive, got %g", c.Text.FontSize)
	}
	opts.FontSize = c.Text.FontSize
	lh, err := layout.ParseLength(c.Text.LineHeight)
	if err != nil {
		return opts, fmt.Errorf("text.line_height: %w", err)
	}
	opts.LineHeight = lh.MM()
	opts.ParagraphSpacing = c.Text.ParagraphSpacing
	opts.Bullet = c.Text.Bullet

	maxWidth, err := layout.ParseLength(c.Image.MaxWidth)
	if err != nil {
		return opts, fmt.Errorf("image.max_width: %w", err)
	}
	padding, err := layout.ParseLength(c.Image.Padding)
	if err != nil {
		return opts, fmt.Errorf("image.padding: %w", err)
	}
	opts.ImageMaxWidth = maxWidth.MM()
	opts.ImagePadding = padding.MM()
	if c.Image.DPI > 0 {
		opts.ImageDPI = c.Image.DPI
	}

	opts.Classifier = c.Classifier()
	return opts, nil
}

// Classifier returns the heading classifier selected by the heading section.
func (c *Config) Classifier() layout.Classifier {
	limit := c.Heading.MaxLength
	if limit <= 0 {
		limit = layout.DefaultHeadingLimit
	}
	if c.Heading.NamedStyles {
		return layout.AnyOf(layout.NamedStyle(), layout.BoldShort(limit))
	}
	return layout.BoldShort(limit)
}

// RendererOptions maps configured fonts onto the canvas renderer. Values are
// file paths or "embed:<name>" for a built-in font.
func (c *Config) RendererOptions() canvasrenderer.Options {
	opts := canvasrenderer.Options{Fonts: map[string]canvasrenderer.Resource{}}
	for style, path := range c.Fonts {
		opts.Fonts[strings.ToLower(style)] = canvasrenderer.Resource{Path: path}
	}
	return opts
}
