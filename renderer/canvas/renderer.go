package canvasrenderer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/fonts"
	"github.com/ByLCY/docflow/layout"
	"github.com/ByLCY/docflow/renderer"
)

// Renderer draws layout primitives via github.com/tdewolff/canvas and writes PDF.
// Coordinates are millimetres with the origin at the bottom-left of the page.
type Renderer struct {
	width, height float64

	// injected fonts by style name (regular, bold, italic, bold-italic)
	fontBlobs map[string][]byte

	fontMu sync.Mutex
	family *canvas.FontFamily
	faces  map[faceKey]*canvas.FontFace

	pages []*canvas.Canvas
	ctx   *canvas.Context
	meta  document.Meta

	face    *canvas.FontFace
	inText  bool
	startX  float64
	penX    float64
	penY    float64 // top of the current line
	leading float64
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

type faceKey struct {
	style layout.FontStyle
	size  float64
}

var textColor = canvas.Hex("#1e1e1e")

// Options configures the canvas renderer.
type Options struct {
	Fonts map[string]Resource // overrides for the built-in fonts, keyed by style name
}

// Resource can be provided either by Bytes or by Path. A Path of the form
// "embed:<name>" selects one of the built-in fonts.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer whose first page is width x height mm,
// drawing with the built-in fonts.
func NewRenderer(width, height float64) *Renderer {
	return newRenderer(width, height, map[string][]byte{})
}

// NewRendererWithOptions creates a renderer with injected font resources.
// Unknown style names and unreadable or unparsable fonts are errors.
func NewRendererWithOptions(width, height float64, opts Options) (*Renderer, error) {
	blobs := map[string][]byte{}
	for name, res := range opts.Fonts {
		name = strings.ToLower(strings.TrimSpace(name))
		if !knownStyle(name) {
			return nil, fmt.Errorf("unknown font style %q (want one of %s)", name, strings.Join(fonts.Names(), ", "))
		}
		data, err := loadResource(res)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", name, err)
		}
		blobs[name] = data
	}
	r := newRenderer(width, height, blobs)
	if len(blobs) > 0 {
		r.fontMu.Lock()
		_, err := r.ensureFamily()
		r.fontMu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func newRenderer(width, height float64, blobs map[string][]byte) *Renderer {
	r := &Renderer{
		width:     width,
		height:    height,
		fontBlobs: blobs,
		faces:     map[faceKey]*canvas.FontFace{},
	}
	r.addPage()
	return r
}

func loadResource(res Resource) ([]byte, error) {
	switch {
	case len(res.Bytes) > 0:
		return res.Bytes, nil
	case strings.HasPrefix(res.Path, "embed:"):
		return fonts.Load(res.Path)
	case res.Path != "":
		return os.ReadFile(res.Path)
	default:
		return nil, errors.New("neither bytes nor path given")
	}
}

func knownStyle(name string) bool {
	for _, n := range fonts.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Factory returns a renderer.Factory producing a fresh Renderer per conversion.
func Factory(opts Options) renderer.Factory {
	return func(page layout.PageGeometry) (renderer.Renderer, error) {
		if page.Width <= 0 || page.Height <= 0 {
			return nil, fmt.Errorf("invalid page size %gx%g", page.Width, page.Height)
		}
		return NewRendererWithOptions(page.Width, page.Height, opts)
	}
}

func (r *Renderer) addPage() {
	c := canvas.New(r.width, r.height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianI)
	r.pages = append(r.pages, c)
	r.ctx = ctx
}

// Pages returns the number of pages started so far.
func (r *Renderer) Pages() int { return len(r.pages) }

// SetMeta stores document properties written by Save.
func (r *Renderer) SetMeta(meta document.Meta) { r.meta = meta }

// BeginTextBlock opens a text block whose first line top is at y.
func (r *Renderer) BeginTextBlock(x, y, leading float64) error {
	if r.inText {
		return errors.New("text block already open")
	}
	r.inText = true
	r.startX, r.penX, r.penY, r.leading = x, x, y, leading
	return nil
}

// SetFont selects the face used by subsequent DrawLine calls; size is in pt.
func (r *Renderer) SetFont(style layout.FontStyle, size float64) error {
	face, err := r.fontFace(style, size)
	if err != nil {
		return err
	}
	r.face = face
	return nil
}

// DrawLine draws text at the pen position and moves the pen right by its width.
func (r *Renderer) DrawLine(text string) error {
	if !r.inText {
		return errors.New("drawLine outside text block")
	}
	if r.face == nil {
		return errors.New("drawLine before setFont")
	}
	baseline := r.penY - r.face.Metrics().Ascent
	r.ctx.DrawText(r.penX, baseline, canvas.NewTextLine(r.face, text, canvas.Left))
	r.penX += r.face.TextWidth(text)
	return nil
}

// AdvanceLine moves the pen to the start of the next line.
func (r *Renderer) AdvanceLine() error {
	if !r.inText {
		return errors.New("advanceLine outside text block")
	}
	r.penX = r.startX
	r.penY -= r.leading
	return nil
}

// EndTextBlock closes the current text block.
func (r *Renderer) EndTextBlock() error {
	if !r.inText {
		return errors.New("no open text block")
	}
	r.inText = false
	return nil
}

// DrawImage decodes data and draws it with its lower-left corner at (x, y).
// Undecodable data yields *layout.ImageDecodeError.
func (r *Renderer) DrawImage(data []byte, x, y, width, height float64) error {
	if r.inText {
		return errors.New("drawImage inside text block")
	}
	img, err := layout.DecodeImage("", data)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return nil
	}
	dpmm := float64(img.Bounds().Dx()) / width
	r.ctx.DrawImage(x, y, img, canvas.DPMM(dpmm))
	return nil
}

// NewPage starts a new page of the same size.
func (r *Renderer) NewPage() error {
	if r.inText {
		return errors.New("newPage inside text block")
	}
	r.addPage()
	return nil
}

// Save writes all pages as a PDF file.
func (r *Renderer) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if err := r.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

// WriteTo writes all pages as PDF to w.
func (r *Renderer) WriteTo(w io.Writer) error {
	if r.inText {
		return errors.New("save with open text block")
	}
	writer := pdf.New(w, r.width, r.height, nil)
	r.applyMeta(writer)
	for i, page := range r.pages {
		if i > 0 {
			writer.NewPage(r.width, r.height)
		}
		page.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF) {
	keywords := strings.Join(r.meta.Keywords, ", ")
	writer.SetInfo(r.meta.Title, r.meta.Subject, keywords, r.meta.Author, r.meta.Creator)
}

// TextWidth implements layout.Measurer with the same faces used for drawing.
func (r *Renderer) TextWidth(text string, style layout.FontStyle, size float64) float64 {
	face, err := r.fontFace(style, size)
	if err != nil {
		return 0
	}
	return face.TextWidth(text)
}

func (r *Renderer) fontFace(style layout.FontStyle, size float64) (*canvas.FontFace, error) {
	key := faceKey{style: style, size: size}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	family, err := r.ensureFamily()
	if err != nil {
		return nil, err
	}
	face := family.Face(size, textColor, canvasStyle(style), canvas.FontNormal)
	r.faces[key] = face
	return face, nil
}

// ensureFamily loads the four styles into one family; callers hold fontMu.
func (r *Renderer) ensureFamily() (*canvas.FontFamily, error) {
	if r.family != nil {
		return r.family, nil
	}
	family := canvas.NewFontFamily("docflow")
	for _, style := range []layout.FontStyle{{}, {Bold: true}, {Italic: true}, {Bold: true, Italic: true}} {
		if err := r.loadFontIntoFamily(family, style); err != nil {
			return nil, err
		}
	}
	r.family = family
	return family, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, style layout.FontStyle) error {
	data, ok := r.fontBlobs[style.String()]
	if !ok {
		data = fonts.ForStyle(style.Bold, style.Italic)
	}
	if err := family.LoadFont(data, 0, canvasStyle(style)); err != nil {
		return fmt.Errorf("加载字体 %s 失败: %w", style, err)
	}
	return nil
}

func canvasStyle(style layout.FontStyle) canvas.FontStyle {
	result := canvas.FontRegular
	if style.Bold {
		result = canvas.FontBold
	}
	if style.Italic {
		result |= canvas.FontItalic
	}
	return result
}
