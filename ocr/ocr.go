// Package ocr defines the abstraction layer for plugging OCR backends into
// the waybill recognition pipeline. The interfaces are intentionally small and
// transport-agnostic so engines can be backed by native libraries or remote
// services without leaking provider-specific concerns into callers.
package ocr

import (
	"context"
	"errors"
	"image"
)

// Profile selects a recognition strategy tuned for a class of content.
type Profile string

const (
	// ProfileGeneral targets mixed document text, the default for full pages.
	ProfileGeneral Profile = "general"
	// ProfileDigits targets numeric snippets such as document numbers.
	ProfileDigits Profile = "digits"
	// ProfileSingleBlock treats the image as one uniform block of text.
	ProfileSingleBlock Profile = "single-block"
)

// Profiles lists the recognition profiles swept during a full-page pass, in
// preference order.
var Profiles = []Profile{ProfileGeneral, ProfileSingleBlock, ProfileDigits}

// ErrUnavailable indicates the backend cannot run at all in this environment,
// for example a missing native library or an unreachable service. Callers
// should treat it as fatal for the whole document rather than retry other
// variants.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Transcription is the outcome of recognizing a single image.
type Transcription struct {
	// Text is the raw recognized text before any normalization.
	Text string
	// Confidence is the engine-reported mean confidence on a 0 to 100 scale.
	Confidence float64
	// Variant names the preprocessing variant the text came from.
	Variant string
	// Profile is the recognition profile that produced the text.
	Profile Profile
}

// Engine is the provider contract: one image in, one transcription out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, profile Profile) (Transcription, error)
}

// Initializer is implemented by engines that need a one-time readiness check
// before first use. Init errors wrapping ErrUnavailable mean the engine can
// never succeed in this environment.
type Initializer interface {
	Init(ctx context.Context) error
}

// LineAggregator marks engines that already aggregate full-page line text
// with trustworthy per-line confidences in a single pass. For such engines
// the multi-variant, multi-profile sweep is skipped.
type LineAggregator interface {
	AggregatesLines() bool
}
