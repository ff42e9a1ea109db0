package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/KorotaevvEgor/ttnscan/preprocess"
)

type fakeEngine struct {
	name       string
	texts      map[string]string // key: variant label + "/" + profile
	err        error
	aggregates bool
	calls      []string
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image, profile Profile) (Transcription, error) {
	key := keyFor(img) + "/" + string(profile)
	f.calls = append(f.calls, key)
	if f.err != nil {
		return Transcription{}, f.err
	}
	return Transcription{Text: f.texts[key], Confidence: 80}, nil
}

func (f *fakeEngine) AggregatesLines() bool { return f.aggregates }

// keyFor abuses image dimensions to identify which variant was passed in.
func keyFor(img image.Image) string {
	return fmt.Sprint(img.Bounds().Dx())
}

func grayVariant(label string, width int) preprocess.Variant {
	return preprocess.Variant{Label: label, Image: image.NewGray(image.Rect(0, 0, width, 10))}
}

func TestBestTranscriptionLongestCleanedTextWins(t *testing.T) {
	eng := &fakeEngine{
		name: "fake",
		texts: map[string]string{
			"1/general":      "short",
			"2/general":      "a much longer recognized text body",
			"2/single-block": "mid length text",
		},
	}
	variants := []preprocess.Variant{
		grayVariant(preprocess.LabelAdaptive, 1),
		grayVariant(preprocess.LabelContrast, 2),
	}
	got, err := BestTranscription(context.Background(), eng, variants)
	if err != nil {
		t.Fatalf("BestTranscription() error = %v", err)
	}
	if got.Text != "a much longer recognized text body" {
		t.Errorf("best text = %q", got.Text)
	}
	if got.Variant != preprocess.LabelContrast || got.Profile != ProfileGeneral {
		t.Errorf("best origin = %s/%s", got.Variant, got.Profile)
	}
}

func TestBestTranscriptionTieKeepsFirst(t *testing.T) {
	eng := &fakeEngine{
		name: "fake",
		texts: map[string]string{
			"1/general": "same length",
			"2/general": "sane length",
		},
	}
	variants := []preprocess.Variant{
		grayVariant(preprocess.LabelAdaptive, 1),
		grayVariant(preprocess.LabelContrast, 2),
	}
	got, err := BestTranscription(context.Background(), eng, variants)
	if err != nil {
		t.Fatalf("BestTranscription() error = %v", err)
	}
	if got.Variant != preprocess.LabelAdaptive {
		t.Errorf("tie broke to %s, want first variant", got.Variant)
	}
}

func TestBestTranscriptionUnavailableStopsSweep(t *testing.T) {
	eng := &fakeEngine{name: "fake", err: fmt.Errorf("probe: %w", ErrUnavailable)}
	variants := []preprocess.Variant{grayVariant(preprocess.LabelAdaptive, 1)}
	_, err := BestTranscription(context.Background(), eng, variants)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if len(eng.calls) != 1 {
		t.Errorf("sweep continued after unavailable: %d calls", len(eng.calls))
	}
}

func TestBestTranscriptionAllFailed(t *testing.T) {
	eng := &fakeEngine{name: "fake", err: errors.New("boom")}
	variants := []preprocess.Variant{grayVariant(preprocess.LabelAdaptive, 1)}
	_, err := BestTranscription(context.Background(), eng, variants)
	if !errors.Is(err, ErrNoTranscription) {
		t.Fatalf("error = %v, want ErrNoTranscription", err)
	}
}

func TestBestTranscriptionNoVariants(t *testing.T) {
	eng := &fakeEngine{name: "fake"}
	if _, err := BestTranscription(context.Background(), eng, nil); !errors.Is(err, ErrNoTranscription) {
		t.Fatalf("error = %v, want ErrNoTranscription", err)
	}
}

func TestBestTranscriptionLineAggregatorSinglePass(t *testing.T) {
	eng := &fakeEngine{
		name:       "fake",
		aggregates: true,
		texts:      map[string]string{"2/general": "line text"},
	}
	variants := []preprocess.Variant{
		grayVariant(preprocess.LabelAdaptive, 1),
		grayVariant(preprocess.LabelContrast, 2),
	}
	got, err := BestTranscription(context.Background(), eng, variants)
	if err != nil {
		t.Fatalf("BestTranscription() error = %v", err)
	}
	if len(eng.calls) != 1 {
		t.Fatalf("expected a single pass, got %d calls", len(eng.calls))
	}
	if got.Variant != preprocess.LabelContrast || got.Text != "line text" {
		t.Errorf("single pass = %q from %s", got.Text, got.Variant)
	}
}

func TestBestTranscriptionContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := &fakeEngine{name: "fake"}
	variants := []preprocess.Variant{grayVariant(preprocess.LabelAdaptive, 1)}
	if _, err := BestTranscription(ctx, eng, variants); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
