package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KorotaevvEgor/ttnscan/document"
	"github.com/KorotaevvEgor/ttnscan/observability"
	"github.com/KorotaevvEgor/ttnscan/ocr/paddle"
	"github.com/KorotaevvEgor/ttnscan/ocr/tesseract"
	"github.com/KorotaevvEgor/ttnscan/pipeline"
	"github.com/KorotaevvEgor/ttnscan/preprocess"
	"github.com/KorotaevvEgor/ttnscan/raster"
)

type options struct {
	path     string
	engine   string
	endpoint string
	langs    string
	dpi      int
	page     int
	kind     string
	bonus    bool
	timeout  time.Duration
	verbose  bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "recognize: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "recognize: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: recognize [flags] <waybill image or pdf>\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.engine, "engine", pipeline.EngineTesseract, "OCR backend: tesseract or paddle")
	flag.StringVar(&opts.endpoint, "paddle-endpoint", "http://127.0.0.1:8866/predict/ocr_system", "PaddleOCR serving URL (engine=paddle)")
	flag.StringVar(&opts.langs, "langs", "", "Comma-free language list for tesseract, e.g. rus+eng")
	flag.IntVar(&opts.dpi, "dpi", 0, "PDF render resolution (default 200)")
	flag.IntVar(&opts.page, "page", 0, "Zero-based PDF page index")
	flag.StringVar(&opts.kind, "kind", "", "Declared input kind (pdf or image); empty sniffs the signature")
	flag.BoolVar(&opts.bonus, "completeness-bonus", false, "Add per-field confidence bonus for line-aggregating backends")
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall processing deadline")
	flag.BoolVar(&opts.verbose, "v", false, "Log pipeline stages to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing input path")
	}
	opts.path = flag.Arg(0)
	switch opts.kind {
	case "", "pdf", "image":
	default:
		return options{}, fmt.Errorf("unknown kind %q", opts.kind)
	}
	return opts, nil
}

func run(opts options) error {
	data, err := os.ReadFile(opts.path)
	if err != nil {
		return err
	}

	var logger observability.Logger = observability.NopLogger{}
	if opts.verbose {
		logger = observability.NewTextLogger(os.Stderr)
	}

	cfg := pipeline.Config{
		Engine:            opts.engine,
		Tesseract:         tesseract.Config{Languages: splitLangs(opts.langs), DPI: opts.dpi},
		Paddle:            paddle.Config{Endpoint: opts.endpoint},
		Raster:            raster.Config{DPI: opts.dpi, Page: opts.page},
		Preprocess:        preprocess.Config{},
		CompletenessBonus: opts.bonus,
		Logger:            logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	res := pipeline.New(cfg).Process(ctx, data, document.Kind(opts.kind))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("recognition failed: %s", res.Error)
	}
	fmt.Fprintf(os.Stderr, "recognize: confidence %d (%s)\n", res.Confidence, pipeline.Status(res.Confidence))
	return nil
}

func splitLangs(s string) []string {
	var langs []string
	for _, l := range strings.Split(s, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
