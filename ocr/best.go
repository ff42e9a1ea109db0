package ocr

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/KorotaevvEgor/ttnscan/preprocess"
	"github.com/KorotaevvEgor/ttnscan/textnorm"
)

// ErrNoTranscription is returned when every recognition attempt failed.
var ErrNoTranscription = errors.New("no transcription produced")

// BestTranscription runs the engine over the preprocessing variants and keeps
// the transcription with the longest cleaned text, the most reliable proxy
// for recognition quality on noisy photographed documents. Ties keep the
// earlier attempt, so variant and profile order encode preference.
//
// Engines that aggregate lines themselves get a single pass over the
// contrast-enhanced variant instead of the full sweep.
func BestTranscription(ctx context.Context, engine Engine, variants []preprocess.Variant) (Transcription, error) {
	if len(variants) == 0 {
		return Transcription{}, ErrNoTranscription
	}
	if la, ok := engine.(LineAggregator); ok && la.AggregatesLines() {
		return singlePass(ctx, engine, variants)
	}

	var best Transcription
	bestLen := -1
	var lastErr error
	for _, v := range variants {
		for _, profile := range Profiles {
			if err := ctx.Err(); err != nil {
				return Transcription{}, err
			}
			t, err := engine.Recognize(ctx, v.Image, profile)
			if err != nil {
				if errors.Is(err, ErrUnavailable) {
					return Transcription{}, err
				}
				lastErr = err
				continue
			}
			t.Variant = v.Label
			t.Profile = profile
			if n := utf8.RuneCountInString(textnorm.Clean(t.Text)); n > bestLen {
				best, bestLen = t, n
			}
		}
	}
	if bestLen < 0 {
		if lastErr != nil {
			return Transcription{}, fmt.Errorf("%w: %s", ErrNoTranscription, lastErr)
		}
		return Transcription{}, ErrNoTranscription
	}
	return best, nil
}

func singlePass(ctx context.Context, engine Engine, variants []preprocess.Variant) (Transcription, error) {
	v := variants[0]
	for _, cand := range variants {
		if cand.Label == preprocess.LabelContrast {
			v = cand
			break
		}
	}
	t, err := engine.Recognize(ctx, v.Image, ProfileGeneral)
	if err != nil {
		return Transcription{}, err
	}
	t.Variant = v.Label
	t.Profile = ProfileGeneral
	return t, nil
}
