package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/docflow/document"
	"github.com/ByLCY/docflow/layout"
	"github.com/ByLCY/docflow/renderer"
	canvasrenderer "github.com/ByLCY/docflow/renderer/canvas"
	"github.com/ByLCY/docflow/source"
)

// fakeRenderer records calls, measures 1mm per rune and writes a stub file on Save.
type fakeRenderer struct {
	*layout.Recorder
	meta document.Meta
}

func (f *fakeRenderer) TextWidth(text string, _ layout.FontStyle, _ float64) float64 {
	return float64(utf8.RuneCountInString(text))
}

func (f *fakeRenderer) SetMeta(meta document.Meta) { f.meta = meta }

func (f *fakeRenderer) Save(path string) error {
	if err := f.Recorder.Save(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("%PDF-stub"), 0o644)
}

type fakeFactory struct {
	mu        sync.Mutex
	renderers []*fakeRenderer
}

func (ff *fakeFactory) factory(layout.PageGeometry) (renderer.Renderer, error) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	r := &fakeRenderer{Recorder: layout.NewRecorder(nil)}
	ff.renderers = append(ff.renderers, r)
	return r, nil
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]ConversionType{
		"DOCX_TO_PDF": DocxToPDF,
		"md-to-pdf":   MarkdownToPDF,
		" rtf_to_pdf": RTFToPDF,
		"HTML_TO_PDF": HTMLToPDF,
		"txt_to_pdf":  TextToPDF,
	} {
		got, err := ParseType(in)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseType("PDF_TO_DOCX"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if got := ConversionType(99).String(); got != "ConversionType(99)" {
		t.Fatalf("unexpected String %q", got)
	}
}

func TestForFile(t *testing.T) {
	for in, want := range map[string]ConversionType{
		"a/report.DOCX":  DocxToPDF,
		"notes.markdown": MarkdownToPDF,
		"x.rtf":          RTFToPDF,
		"page.htm":       HTMLToPDF,
		"readme.txt":     TextToPDF,
	} {
		if got, err := ForFile(in); err != nil || got != want {
			t.Errorf("ForFile(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ForFile("archive.zip"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestTypesCoverRegistry(t *testing.T) {
	reg := DefaultRegistry()
	var names []string
	for _, typ := range Types() {
		if _, ok := reg[typ]; !ok {
			t.Errorf("%s has no converter", typ)
		}
		names = append(names, typ.String())
	}
	want := []string{"DOCX_TO_PDF", "MD_TO_PDF", "RTF_TO_PDF", "HTML_TO_PDF", "TXT_TO_PDF"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "report.docx")

	if got, want := OutputPath(src, "", "pdf", false, nil), filepath.Join(dir, "in", "report.pdf"); got != want {
		t.Fatalf("default dir: got %s want %s", got, want)
	}

	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(out, "report.pdf"), "x")
	writeFile(t, filepath.Join(out, "report-1.pdf"), "x")
	if got := OutputPath(src, out, "pdf", false, nil); got != filepath.Join(out, "report.pdf") {
		t.Fatalf("overwrite mode should reuse the name, got %s", got)
	}
	taken := func(p string) bool { return p == filepath.Join(out, "report-2.pdf") }
	if got, want := OutputPath(src, out, "pdf", true, taken), filepath.Join(out, "report-3.pdf"); got != want {
		t.Fatalf("unique: got %s want %s", got, want)
	}
}

func TestConvertMarkdownWithBindingAndTrace(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "letter.md"), "# Hi ${name}\n\nBody for ${name}.\n")
	ff := &fakeFactory{}
	svc := NewService(layout.DefaultOptions(), ff.factory,
		WithData(map[string]any{"name": "Ada"}),
		WithTrace(true))

	res, err := svc.Convert(context.Background(), src, MarkdownToPDF, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Output != filepath.Join(dir, "out", "letter.pdf") {
		t.Fatalf("unexpected output %s", res.Output)
	}
	for _, p := range []string{res.Output, res.Trace} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
	}
	if res.Summary.Pages != 1 || len(res.Unresolved) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	r := ff.renderers[0]
	if r.meta.Title != "Hi Ada" || r.meta.Creator != "docflow" {
		t.Fatalf("unexpected meta %+v", r.meta)
	}
	if diff := cmp.Diff([]string{"Hi Ada", "Body for Ada."}, r.Lines()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	names := r.Names()
	if names[len(names)-1] != "save" {
		t.Fatalf("expected save to be the last call, got %v", names)
	}
}

func TestConvertStageErrors(t *testing.T) {
	dir := t.TempDir()
	ff := &fakeFactory{}

	_, err := NewService(layout.DefaultOptions(), ff.factory).
		Convert(context.Background(), filepath.Join(dir, "missing.txt"), TextToPDF, "")
	var convErr *ConversionError
	var extractErr *source.ExtractionError
	if !errors.As(err, &convErr) || convErr.Stage != StageExtract || !errors.As(err, &extractErr) {
		t.Fatalf("expected extract-stage error, got %v", err)
	}

	src := writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	broken := func(layout.PageGeometry) (renderer.Renderer, error) { return nil, errors.New("no backend") }
	_, err = NewService(layout.DefaultOptions(), broken).Convert(context.Background(), src, TextToPDF, "")
	if !errors.As(err, &convErr) || convErr.Stage != StageRender {
		t.Fatalf("expected render-stage error, got %v", err)
	}

	narrow := layout.DefaultOptions()
	narrow.Page.Width = narrow.Page.Margin.Left + narrow.Page.Margin.Right + 0.5
	_, err = NewService(narrow, ff.factory).Convert(context.Background(), src, TextToPDF, "")
	var overflow *layout.LayoutOverflowError
	if !errors.As(err, &convErr) || convErr.Stage != StageLayout || !errors.As(err, &overflow) {
		t.Fatalf("expected layout-stage overflow, got %v", err)
	}

	_, err = NewService(layout.DefaultOptions(), ff.factory, WithData(map[string]any{}), WithStrictBinding(true)).
		Convert(context.Background(), writeFile(t, filepath.Join(dir, "b.txt"), "Dear ${name}"), TextToPDF, "")
	if !errors.As(err, &convErr) || convErr.Stage != StageBind || !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected bind-stage error, got %v", err)
	}

	if _, err := NewService(layout.DefaultOptions(), ff.factory, WithRegistry(Registry{})).
		Convert(context.Background(), src, TextToPDF, ""); err == nil {
		t.Fatalf("expected error for unregistered conversion")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewService(layout.DefaultOptions(), ff.factory).Convert(ctx, src, TextToPDF, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConvertCustomRegistry(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "note.txt"), "ignored")
	reg := Registry{TextToPDF: {
		Extractor: source.ExtractorFunc(func(path string) (*document.Document, error) {
			return &document.Document{
				Meta:       document.Meta{Title: filepath.Base(path)},
				Paragraphs: []document.Paragraph{{Runs: []document.Run{{Text: "from func"}}}},
			}, nil
		}),
		Target: "out",
	}}
	ff := &fakeFactory{}
	res, err := NewService(layout.DefaultOptions(), ff.factory, WithRegistry(reg)).
		Convert(context.Background(), src, TextToPDF, "")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.Output != filepath.Join(dir, "note.out") {
		t.Fatalf("unexpected output %s", res.Output)
	}
	if diff := cmp.Diff([]string{"from func"}, ff.renderers[0].Lines()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertMissingFontIsRenderError(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	factory := canvasrenderer.Factory(canvasrenderer.Options{Fonts: map[string]canvasrenderer.Resource{
		"bold": {Path: filepath.Join(dir, "typo.ttf")},
	}})

	_, err := NewService(layout.DefaultOptions(), factory).Convert(context.Background(), src, TextToPDF, "")
	var convErr *ConversionError
	if !errors.As(err, &convErr) || convErr.Stage != StageRender || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected render-stage error for the missing font, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "a.pdf")); statErr == nil {
		t.Fatalf("no output should be written")
	}
}

func TestConvertAll(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{
		{Path: writeFile(t, filepath.Join(dir, "a", "same.txt"), "one")},
		{Path: writeFile(t, filepath.Join(dir, "b", "same.txt"), "two")},
		{Path: writeFile(t, filepath.Join(dir, "c", "other.md"), "three"), Type: MarkdownToPDF},
		{Path: writeFile(t, filepath.Join(dir, "d", "skip.xyz"), "four")},
	}
	core, logs := observer.New(zap.InfoLevel)
	ff := &fakeFactory{}
	svc := NewService(layout.DefaultOptions(), ff.factory, WithUnique(true), WithLogger(zap.New(core)))

	out := filepath.Join(dir, "out")
	results, err := svc.ConvertAll(context.Background(), jobs, out, 2)
	if len(multierr.Errors(err)) != 1 || !strings.Contains(err.Error(), "xyz") {
		t.Fatalf("expected one error for the .xyz job, got %v", err)
	}
	if results[3] != nil {
		t.Fatalf("failed job should have no result")
	}

	var outputs []string
	for _, r := range results[:3] {
		if r == nil {
			t.Fatalf("missing result in %v", results)
		}
		outputs = append(outputs, filepath.Base(r.Output))
	}
	sort.Strings(outputs)
	if diff := cmp.Diff([]string{"other.pdf", "same-1.pdf", "same.pdf"}, outputs); diff != "" {
		t.Fatalf("outputs mismatch (-want +got):\n%s", diff)
	}
	if n := logs.FilterMessage("converted").Len(); n != 3 {
		t.Fatalf("expected 3 converted log entries, got %d", n)
	}
}
