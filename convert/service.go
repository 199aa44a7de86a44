package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/docflow/binding"
	"github.com/ByLCY/docflow/layout"
	"github.com/ByLCY/docflow/renderer"
)

// Service runs conversions. It is safe for concurrent use: every conversion
// gets its own renderer and layout state.
type Service struct {
	opts     layout.Options
	factory  renderer.Factory
	registry Registry
	log      *zap.Logger
	data     any
	unique   bool
	trace    bool
	strict   bool

	mu       sync.Mutex
	reserved map[string]bool // output paths claimed by running conversions
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option { return func(s *Service) { s.log = log } }

// WithData binds ${path} placeholders in every document to data.
func WithData(data any) Option { return func(s *Service) { s.data = data } }

// WithStrictBinding fails a conversion at the bind stage when a placeholder
// has no value, instead of leaving it in the output.
func WithStrictBinding(strict bool) Option { return func(s *Service) { s.strict = strict } }

// WithUnique avoids overwriting existing output files.
func WithUnique(unique bool) Option { return func(s *Service) { s.unique = unique } }

// WithTrace writes <output>.trace.json with the recorded renderer calls.
func WithTrace(trace bool) Option { return func(s *Service) { s.trace = trace } }

// WithRegistry replaces the built-in conversions.
func WithRegistry(r Registry) Option { return func(s *Service) { s.registry = r } }

// NewService creates a service. opts carries page geometry and typography;
// its Renderer and Measurer are supplied per conversion by factory.
func NewService(opts layout.Options, factory renderer.Factory, options ...Option) *Service {
	s := &Service{
		opts:     opts,
		factory:  factory,
		registry: DefaultRegistry(),
		log:      zap.NewNop(),
		reserved: map[string]bool{},
	}
	for _, o := range options {
		o(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Result describes a finished conversion.
type Result struct {
	Source  string
	Output  string
	Trace   string
	Type    ConversionType
	Summary layout.Summary
	// Unresolved lists placeholders with no value in the bound data.
	Unresolved []string
}

// Convert converts one file and writes the result into outDir (the source's
// directory when empty).
func (s *Service) Convert(ctx context.Context, path string, t ConversionType, outDir string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conv, ok := s.registry[t]
	if !ok {
		return nil, fmt.Errorf("conversion %s is not registered", t)
	}
	log := s.log.With(zap.String("source", path), zap.Stringer("type", t))
	res := &Result{Source: path, Type: t}

	doc, err := conv.Extractor.Extract(path)
	if err != nil {
		return nil, &ConversionError{Stage: StageExtract, Path: path, Err: err}
	}
	if s.data != nil {
		doc, res.Unresolved = binding.Apply(doc, s.data)
		if len(res.Unresolved) > 0 {
			if s.strict {
				err := fmt.Errorf("unresolved placeholders: %s", strings.Join(res.Unresolved, ", "))
				return nil, &ConversionError{Stage: StageBind, Path: path, Err: err}
			}
			log.Warn("unresolved placeholders", zap.Strings("paths", res.Unresolved))
		}
	}

	r, err := s.factory(s.opts.Page)
	if err != nil {
		return nil, &ConversionError{Stage: StageRender, Path: path, Err: err}
	}
	var (
		target layout.Renderer = r
		rec    *layout.Recorder
	)
	if s.trace {
		rec = layout.NewRecorder(r)
		target = rec
	}

	opts := s.opts
	opts.Renderer = target
	opts.Measurer = r
	opts.Logger = log
	sum, err := layout.Layout(doc.Paragraphs, opts)
	res.Summary = sum
	if err != nil {
		stage := StageLayout
		var re *layout.RenderError
		if errors.As(err, &re) {
			stage = StageRender
		}
		return nil, &ConversionError{Stage: stage, Path: path, Err: err}
	}
	r.SetMeta(doc.Meta)

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, &ConversionError{Stage: StageOutput, Path: path, Err: err}
		}
	}
	out := s.claim(path, outDir, conv.Target)
	defer s.release(out)
	if err := target.Save(out); err != nil {
		return nil, &ConversionError{Stage: StageRender, Path: path, Err: err}
	}
	res.Output = out

	if rec != nil {
		res.Trace = strings.TrimSuffix(out, filepath.Ext(out)) + ".trace.json"
		trace := &layout.Trace{Source: path, Summary: sum, Ops: rec.Ops}
		if err := layout.WriteDebugJSON(trace, res.Trace); err != nil {
			return nil, &ConversionError{Stage: StageOutput, Path: path, Err: err}
		}
	}

	log.Info("converted",
		zap.String("output", out),
		zap.Int("pages", sum.Pages),
		zap.Int("lines", sum.Lines),
		zap.Int("images", sum.Images),
		zap.Int("skippedImages", sum.SkippedImages))
	return res, nil
}

func (s *Service) claim(path, outDir, ext string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := OutputPath(path, outDir, ext, s.unique, func(p string) bool { return s.reserved[p] })
	s.reserved[out] = true
	return out
}

func (s *Service) release(out string) {
	s.mu.Lock()
	delete(s.reserved, out)
	s.mu.Unlock()
}

// Job is one entry of a batch.
type Job struct {
	Path string
	Type ConversionType // zero selects the type from the file extension
}

// ConvertAll runs jobs on at most workers goroutines. Results keep the order
// of jobs; failed jobs leave a nil entry and contribute to the combined error.
func (s *Service) ConvertAll(ctx context.Context, jobs []Job, outDir string, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			t := job.Type
			if t == 0 {
				var err error
				if t, err = ForFile(job.Path); err != nil {
					errs[i] = err
					return
				}
			}
			results[i], errs[i] = s.Convert(ctx, job.Path, t, outDir)
		}(i, job)
	}
	wg.Wait()

	var err error
	for _, e := range errs {
		err = multierr.Append(err, e)
	}
	return results, err
}
