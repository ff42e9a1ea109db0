// Package paddle adapts a PaddleOCR serving endpoint to the ocr.Engine
// contract. The endpoint receives base64-encoded images and answers with
// per-line texts and recognition scores.
package paddle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/KorotaevvEgor/ttnscan/ocr"
)

const defaultTimeout = 30 * time.Second

// Config controls the Paddle adapter.
type Config struct {
	// Endpoint is the full URL of the serving predict route, for example
	// http://127.0.0.1:8866/predict/ocr_system.
	Endpoint string
	// HTTPClient overrides the client used for requests. Defaults to a
	// client with Timeout applied.
	HTTPClient *http.Client
	// Timeout bounds a single recognition round-trip when HTTPClient is not
	// set. Defaults to 30 seconds.
	Timeout time.Duration
}

// Engine recognizes images through a remote PaddleOCR service. It aggregates
// detected lines itself, so callers run it once per document instead of
// sweeping preprocessing variants.
type Engine struct {
	endpoint string
	client   *http.Client
}

// New constructs a Paddle-backed engine.
func New(cfg Config) *Engine {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Engine{endpoint: cfg.Endpoint, client: client}
}

func (e *Engine) Name() string { return "paddle" }

// AggregatesLines reports that the service returns full-page line text with
// trustworthy confidences in one pass.
func (e *Engine) AggregatesLines() bool { return true }

type predictRequest struct {
	Images []string `json:"images"`
}

type predictLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type predictResponse struct {
	Results [][]predictLine `json:"results"`
}

// Recognize sends the image to the serving endpoint and joins the detected
// lines into one text block. The confidence is the mean line score on a
// 0 to 100 scale. The profile is recorded but the service has no per-profile
// tuning.
func (e *Engine) Recognize(ctx context.Context, img image.Image, profile ocr.Profile) (ocr.Transcription, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ocr.Transcription{}, fmt.Errorf("encode image: %w", err)
	}
	body, err := json.Marshal(predictRequest{
		Images: []string{base64.StdEncoding.EncodeToString(buf.Bytes())},
	})
	if err != nil {
		return ocr.Transcription{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return ocr.Transcription{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return ocr.Transcription{}, fmt.Errorf("%w: %s: %s", ocr.ErrUnavailable, e.endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ocr.Transcription{}, fmt.Errorf("%w: %s answered %s", ocr.ErrUnavailable, e.endpoint, resp.Status)
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ocr.Transcription{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Results) == 0 {
		return ocr.Transcription{Profile: profile}, nil
	}

	lines := decoded.Results[0]
	texts := make([]string, 0, len(lines))
	var sum float64
	for _, line := range lines {
		if strings.TrimSpace(line.Text) == "" {
			continue
		}
		texts = append(texts, line.Text)
		sum += line.Confidence
	}
	t := ocr.Transcription{
		Text:    strings.Join(texts, "\n"),
		Profile: profile,
	}
	if len(texts) > 0 {
		conf := sum / float64(len(texts)) * 100
		if conf > 100 {
			conf = 100
		}
		t.Confidence = conf
	}
	return t, nil
}
