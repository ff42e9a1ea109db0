// Package pipeline wires document sniffing, rasterization, preprocessing,
// recognition and field extraction into one entry point. A call never panics
// and never returns a Go error to the caller; every failure mode is folded
// into the Result so the embedding application has a single shape to handle.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/KorotaevvEgor/ttnscan/document"
	"github.com/KorotaevvEgor/ttnscan/fields"
	"github.com/KorotaevvEgor/ttnscan/observability"
	"github.com/KorotaevvEgor/ttnscan/ocr"
	"github.com/KorotaevvEgor/ttnscan/ocr/paddle"
	"github.com/KorotaevvEgor/ttnscan/ocr/tesseract"
	"github.com/KorotaevvEgor/ttnscan/preprocess"
	"github.com/KorotaevvEgor/ttnscan/raster"
	"github.com/KorotaevvEgor/ttnscan/textnorm"
)

// Recognized backend names for Config.Engine.
const (
	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
)

// Recognition quality thresholds on the Result.Confidence scale. Results at
// or above AutoAcceptConfidence are safe to store unattended; results at or
// above ReviewConfidence are worth a human look; anything below is noise.
const (
	AutoAcceptConfidence = 70
	ReviewConfidence     = 50
)

// Method values recorded on successful results.
const (
	MethodPDFText = "pdf-text"
)

// defaultMinTextLayerLen is the cleaned-rune threshold below which a PDF
// text layer is considered decorative and the page is OCRed instead.
const defaultMinTextLayerLen = 40

// Result is the JSON-friendly outcome of processing one document.
type Result struct {
	Success          bool              `json:"success"`
	Fields           map[string]string `json:"fields"`
	Confidence       int               `json:"confidence"`
	FieldConfidences map[string]int    `json:"field_confidences"`
	RawText          string            `json:"raw_text"`
	Error            string            `json:"error,omitempty"`
	Method           string            `json:"method,omitempty"`
}

// Status names the routing decision for a confidence value.
func Status(confidence int) string {
	switch {
	case confidence >= AutoAcceptConfidence:
		return "auto-accept"
	case confidence >= ReviewConfidence:
		return "manual-review"
	default:
		return "rejected"
	}
}

// Config assembles a Processor.
type Config struct {
	// Engine names the OCR backend, EngineTesseract by default.
	Engine string
	// Tesseract configures the native backend.
	Tesseract tesseract.Config
	// Paddle configures the remote backend.
	Paddle paddle.Config
	// Raster configures PDF rendering and image decoding.
	Raster raster.Config
	// Preprocess configures variant generation.
	Preprocess preprocess.Config
	// CompletenessBonus adds +2 confidence per extracted field for
	// line-aggregating backends.
	CompletenessBonus bool
	// MinTextLayerLen is the minimum cleaned text length for the PDF
	// text-layer shortcut to apply. Defaults to 40 runes.
	MinTextLayerLen int
	// Logger receives per-run structured events. Defaults to NopLogger.
	Logger observability.Logger
	// EngineFactory overrides backend construction, mainly for tests.
	EngineFactory func(name string) (ocr.Engine, error)
}

// Processor is a reusable, concurrency-safe document processor. Engines are
// constructed and initialized once on first use.
type Processor struct {
	cfg        Config
	logger     observability.Logger
	rasterizer *raster.Rasterizer

	group     singleflight.Group
	enginesMu sync.Mutex
	engines   map[string]ocr.Engine
}

// New constructs a Processor from cfg.
func New(cfg Config) *Processor {
	if cfg.Engine == "" {
		cfg.Engine = EngineTesseract
	}
	if cfg.MinTextLayerLen <= 0 {
		cfg.MinTextLayerLen = defaultMinTextLayerLen
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger{}
	}
	if cfg.EngineFactory == nil {
		cfg.EngineFactory = func(name string) (ocr.Engine, error) {
			switch name {
			case EngineTesseract:
				return tesseract.New(cfg.Tesseract), nil
			case EnginePaddle:
				return paddle.New(cfg.Paddle), nil
			default:
				return nil, fmt.Errorf("unknown ocr engine %q", name)
			}
		}
	}
	return &Processor{
		cfg:        cfg,
		logger:     logger,
		rasterizer: raster.New(cfg.Raster),
		engines:    make(map[string]ocr.Engine),
	}
}

// ProcessDocument sniffs the payload kind and processes it. This is the entry
// point for callers holding an uploaded file of unknown type.
func (p *Processor) ProcessDocument(ctx context.Context, data []byte) Result {
	return p.Process(ctx, data, document.KindUnknown)
}

// Process runs the full pipeline over one payload. A non-empty declared kind
// skips signature sniffing.
func (p *Processor) Process(ctx context.Context, data []byte, declared document.Kind) (res Result) {
	run := shortRunID()
	logger := p.logger.With(
		observability.String(observability.KeyRun, run),
		observability.String(observability.KeyEngine, p.cfg.Engine),
	)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panic", observability.String("panic", fmt.Sprint(r)))
			res = failure(fmt.Errorf("internal error: %v", r))
		}
	}()

	doc, err := document.New(data, declared)
	if err != nil {
		logger.Warn("reject input", observability.Error("error", err))
		return failure(err)
	}

	if doc.Kind == document.KindPDF {
		if r, ok := p.tryTextLayer(doc, logger); ok {
			return r
		}
	}

	rasterStart := time.Now()
	page, err := p.rasterizer.Rasterize(ctx, doc)
	if err != nil {
		logger.Warn("rasterize failed", observability.Error("error", err))
		return failure(err)
	}
	logger.Debug("rasterized",
		observability.Int64(observability.KeyRasterDuration, time.Since(rasterStart).Milliseconds()))

	variants, err := preprocess.Variants(page.Image, p.cfg.Preprocess)
	if err != nil {
		logger.Warn("preprocess failed", observability.Error("error", err))
		return failure(err)
	}
	logger.Debug("preprocessed", observability.Int(observability.KeyVariantCount, len(variants)))

	engine, err := p.engine(ctx)
	if err != nil {
		logger.Error("engine init failed", observability.Error("error", err))
		return failure(err)
	}

	ocrStart := time.Now()
	best, err := ocr.BestTranscription(ctx, engine, variants)
	if err != nil {
		logger.Warn("recognition failed", observability.Error("error", err))
		return failure(err)
	}
	logger.Info("recognized",
		observability.Int64(observability.KeyOCRDuration, time.Since(ocrStart).Milliseconds()),
		observability.String("variant", best.Variant),
		observability.Float64(observability.KeyEngineScore, best.Confidence),
		observability.Int(observability.KeyTextLength, utf8.RuneCountInString(best.Text)))

	normalized := textnorm.Normalize(best.Text)
	if normalized == "" {
		logger.Warn("empty recognition")
		return failure(fmt.Errorf("no text recognized"))
	}

	ext := fields.Extract(normalized)
	if aggregatesLines(engine) {
		ext.Confidence = clampConfidence(best.Confidence)
		if p.cfg.CompletenessBonus {
			ext = ext.WithCompletenessBonus()
		}
	}
	logger.Info("extracted",
		observability.Int(observability.KeyFieldCount, len(ext.Fields)),
		observability.Int(observability.KeyConfidence, ext.Confidence))

	return Result{
		Success:          true,
		Fields:           ext.Fields,
		Confidence:       ext.Confidence,
		FieldConfidences: ext.FieldConfidences,
		RawText:          normalized,
		Method:           engine.Name(),
	}
}

// tryTextLayer extracts fields from a PDF's embedded text layer when it is
// long enough to be real content. Scanned waybills wrapped in PDF have no
// usable layer and fall through to rasterization.
func (p *Processor) tryTextLayer(doc document.Raw, logger observability.Logger) (Result, bool) {
	text, err := raster.TextLayer(doc.Data)
	if err != nil {
		return Result{}, false
	}
	normalized := textnorm.Normalize(text)
	if utf8.RuneCountInString(normalized) < p.cfg.MinTextLayerLen {
		return Result{}, false
	}
	ext := fields.Extract(normalized)
	logger.Info("extracted from text layer",
		observability.String(observability.KeyMethod, MethodPDFText),
		observability.Int(observability.KeyFieldCount, len(ext.Fields)),
		observability.Int(observability.KeyConfidence, ext.Confidence))
	return Result{
		Success:          true,
		Fields:           ext.Fields,
		Confidence:       ext.Confidence,
		FieldConfidences: ext.FieldConfidences,
		RawText:          normalized,
		Method:           MethodPDFText,
	}, true
}

// engine returns the configured backend, constructing and initializing it
// exactly once even under concurrent first calls.
func (p *Processor) engine(ctx context.Context) (ocr.Engine, error) {
	name := p.cfg.Engine
	v, err, _ := p.group.Do(name, func() (interface{}, error) {
		p.enginesMu.Lock()
		e, ok := p.engines[name]
		p.enginesMu.Unlock()
		if ok {
			return e, nil
		}
		e, err := p.cfg.EngineFactory(name)
		if err != nil {
			return nil, err
		}
		if init, ok := e.(ocr.Initializer); ok {
			if err := init.Init(ctx); err != nil {
				return nil, err
			}
		}
		p.enginesMu.Lock()
		p.engines[name] = e
		p.enginesMu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ocr.Engine), nil
}

func aggregatesLines(engine ocr.Engine) bool {
	la, ok := engine.(ocr.LineAggregator)
	return ok && la.AggregatesLines()
}

func failure(err error) Result {
	return Result{
		Success:          false,
		Fields:           map[string]string{},
		FieldConfidences: map[string]int{},
		Error:            err.Error(),
	}
}

func clampConfidence(c float64) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return int(c)
	}
}

func shortRunID() string {
	id := uuid.NewString()
	return id[:8]
}
