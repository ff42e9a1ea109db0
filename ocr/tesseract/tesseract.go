// Package tesseract adapts the gosseract client to the ocr.Engine contract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/KorotaevvEgor/ttnscan/ocr"
)

// Config controls the Tesseract adapter.
type Config struct {
	// Languages are the traineddata sets used by text profiles. Defaults to
	// Russian plus English, the mix found on domestic waybills.
	Languages []string
	// DPI is passed to Tesseract as user_defined_dpi when positive, so
	// rendered PDF pages keep their layout heuristics.
	DPI int
}

func (c Config) withDefaults() Config {
	if len(c.Languages) == 0 {
		c.Languages = []string{"rus", "eng"}
	}
	return c
}

// Engine recognizes images through the native Tesseract library. A fresh
// gosseract client is created per call; the library keeps no useful state
// between images and a shared client is not safe for concurrent use.
type Engine struct {
	cfg Config

	probeOnce sync.Once
	probeErr  error

	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed engine.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults(), clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Init verifies that the native library and the configured traineddata are
// usable. The probe runs once; later calls return the cached outcome.
func (e *Engine) Init(ctx context.Context) error {
	e.probeOnce.Do(func() {
		c := e.clientFactory()
		defer c.Close()
		if err := c.SetLanguage(e.cfg.Languages...); err != nil {
			e.probeErr = fmt.Errorf("%w: set languages %v: %s", ocr.ErrUnavailable, e.cfg.Languages, err)
		}
	})
	if e.probeErr != nil {
		return e.probeErr
	}
	return ctx.Err()
}

// Recognize runs one image through Tesseract with the profile's settings and
// reports the mean word confidence alongside the text.
func (e *Engine) Recognize(ctx context.Context, img image.Image, profile ocr.Profile) (ocr.Transcription, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Transcription{}, err
	}
	s := e.settingsFor(profile)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ocr.Transcription{}, fmt.Errorf("encode image: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return ocr.Transcription{}, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(s.languages...); err != nil {
		return ocr.Transcription{}, fmt.Errorf("%w: set languages %v: %s", ocr.ErrUnavailable, s.languages, err)
	}
	if err := c.SetVariable("tessedit_pageseg_mode", strconv.Itoa(s.psm)); err != nil {
		return ocr.Transcription{}, fmt.Errorf("set psm: %w", err)
	}
	if s.whitelist != "" {
		if err := c.SetVariable("tessedit_char_whitelist", s.whitelist); err != nil {
			return ocr.Transcription{}, fmt.Errorf("set whitelist: %w", err)
		}
	}
	if e.cfg.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", strconv.Itoa(e.cfg.DPI)); err != nil {
			return ocr.Transcription{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Transcription{}, fmt.Errorf("recognize text: %w", err)
	}
	return ocr.Transcription{
		Text:       strings.TrimSpace(text),
		Confidence: meanWordConfidence(c),
		Profile:    profile,
	}, nil
}

// meanWordConfidence averages the per-word confidences reported by the layout
// iterator. Zero when no words were found.
func meanWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}

type settings struct {
	psm       int
	whitelist string
	languages []string
}

// settingsFor maps a recognition profile to page segmentation mode, character
// whitelist and language set.
func (e *Engine) settingsFor(profile ocr.Profile) settings {
	switch profile {
	case ocr.ProfileDigits:
		return settings{psm: 8, whitelist: "0123456789./№-", languages: []string{"eng"}}
	case ocr.ProfileSingleBlock:
		return settings{psm: 7, languages: e.cfg.Languages}
	default:
		return settings{psm: 6, whitelist: documentWhitelist, languages: e.cfg.Languages}
	}
}

// documentWhitelist keeps the character set Tesseract may emit for the
// general profile limited to what appears on transport waybills.
const documentWhitelist = "АБВГДЕЁЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЫЬЭЮЯ" +
	"абвгдеёжзийклмнопрстуфхцчшщъыьэюя" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	"0123456789" +
	" .,:;№/\\-()«»\"'"
