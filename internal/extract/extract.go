package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docassist-backend/internal/shared/metrics"
	"docassist-backend/internal/shared/telemetry"
)

// Extraction methods reported in Result.Method.
const (
	MethodNative = "native"
	MethodOCR    = "ocr"
	MethodNone   = "none"
)

// Result is the outcome of one extraction. Text is trimmed and may be empty.
type Result struct {
	Text   string
	Pages  int
	Method string
}

// WordCount returns the number of whitespace-separated words in the text.
func (r Result) WordCount() int {
	return len(strings.Fields(r.Text))
}

// TextLayer opens a document's embedded text layer.
type TextLayer interface {
	Open(path string) (PageReader, error)
}

// PageReader yields embedded text page by page. Pages are numbered from 1.
type PageReader interface {
	NumPage() int
	PageText(page int) (string, error)
	Close() error
}

// Rasterizer renders every page of a document to an image under outDir and
// returns the image paths in page order.
type Rasterizer interface {
	Render(ctx context.Context, path, outDir string) ([]string, error)
}

// Recognizer runs optical character recognition on one page image.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// PageCounter reports the page count of a document without its text layer.
type PageCounter func(path string) (int, error)

// Engine extracts text from a document, falling back to OCR only when the
// native text layer is empty.
type Engine struct {
	layer      TextLayer
	rasterizer Rasterizer
	recognizer Recognizer
	countPages PageCounter
	scratchDir string
	tracer     trace.Tracer
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPageCounter overrides the fallback page counter.
func WithPageCounter(fn PageCounter) Option {
	return func(e *Engine) {
		if fn != nil {
			e.countPages = fn
		}
	}
}

// WithScratchDir sets the parent directory for rendered page images.
func WithScratchDir(dir string) Option {
	return func(e *Engine) {
		e.scratchDir = dir
	}
}

// New builds an Engine from its collaborators.
func New(layer TextLayer, rasterizer Rasterizer, recognizer Recognizer, opts ...Option) *Engine {
	e := &Engine{
		layer:      layer,
		rasterizer: rasterizer,
		recognizer: recognizer,
		countPages: api.PageCountFile,
		scratchDir: os.TempDir(),
		tracer:     otel.Tracer("docassist-backend/extract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: unreadable pages and failed stages are logged and
// degrade to partial or empty text.
func (e *Engine) Extract(ctx context.Context, path string) Result {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "extract.document")
	defer span.End()

	text, pages := e.native(ctx, path)
	method := MethodNative

	rendered := 0
	if strings.TrimSpace(text) == "" {
		telemetry.Info("extract.native_empty", map[string]any{
			"path":  path,
			"pages": pages,
		})
		text, rendered = e.ocr(ctx, path)
		method = MethodOCR
	}

	if pages == 0 {
		pages = e.fallbackPageCount(path, rendered)
	}

	result := Result{Text: strings.TrimSpace(text), Pages: pages, Method: method}
	if result.Text == "" {
		result.Method = MethodNone
	}

	elapsed := time.Since(start)
	metrics.IncExtraction(result.Method)
	metrics.ObserveExtractionDurationMs(float64(elapsed.Milliseconds()))
	span.SetAttributes(
		attribute.String("extract.method", result.Method),
		attribute.Int("extract.pages", result.Pages),
		attribute.Int("extract.chars", len(result.Text)),
	)
	telemetry.Info("extract.complete", map[string]any{
		"path":        path,
		"method":      result.Method,
		"pages":       result.Pages,
		"chars":       len(result.Text),
		"duration_ms": elapsed.Milliseconds(),
	})
	return result
}

func (e *Engine) native(ctx context.Context, path string) (string, int) {
	_, span := e.tracer.Start(ctx, "extract.native")
	defer span.End()

	if e.layer == nil {
		return "", 0
	}
	reader, err := e.layer.Open(path)
	if err != nil {
		telemetry.Warn("extract.native_failed", map[string]any{
			"path":  path,
			"error": err,
		})
		return "", 0
	}
	defer reader.Close()

	var sb strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		pageText, err := reader.PageText(i)
		if err != nil {
			metrics.IncPageFailure()
			telemetry.Warn("extract.page_failed", map[string]any{
				"path":  path,
				"page":  i,
				"error": err,
			})
			continue
		}
		sb.WriteString(pageText)
	}
	return sb.String(), pages
}

func (e *Engine) ocr(ctx context.Context, path string) (string, int) {
	ctx, span := e.tracer.Start(ctx, "extract.ocr")
	defer span.End()

	if e.rasterizer == nil || e.recognizer == nil {
		return "", 0
	}

	outDir := filepath.Join(e.scratchDir, "ocr-"+uuid.NewString())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		telemetry.Warn("extract.ocr_failed", map[string]any{
			"path":  path,
			"error": err,
		})
		return "", 0
	}
	defer os.RemoveAll(outDir)

	images, err := e.rasterizer.Render(ctx, path, outDir)
	if err != nil {
		telemetry.Warn("extract.ocr_failed", map[string]any{
			"path":  path,
			"error": err,
		})
		return "", 0
	}

	var sb strings.Builder
	for i, image := range images {
		pageText, err := e.recognizer.Recognize(ctx, image)
		if err != nil {
			metrics.IncPageFailure()
			telemetry.Warn("extract.ocr_page_failed", map[string]any{
				"path":  path,
				"page":  i + 1,
				"error": err,
			})
			continue
		}
		sb.WriteString(pageText)
	}
	return sb.String(), len(images)
}

func (e *Engine) fallbackPageCount(path string, rendered int) int {
	if e.countPages != nil {
		if n, err := e.countPages(path); err == nil && n > 0 {
			return n
		}
	}
	return rendered
}
