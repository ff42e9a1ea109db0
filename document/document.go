// Package document models the raw input of the recognition pipeline: the
// uploaded bytes of a photographed or scanned delivery note together with
// their declared or sniffed container kind.
package document

import (
	"bytes"
	"errors"
	"fmt"
)

// Kind is the coarse container category the pipeline routes on.
type Kind string

const (
	KindUnknown Kind = ""
	KindPDF     Kind = "pdf"
	KindImage   Kind = "image"
)

// ErrUnknownFormat is returned when the byte signature matches no supported
// container format.
var ErrUnknownFormat = errors.New("document: unrecognized file signature")

// Raw is an immutable input document. Data is never mutated by any pipeline
// stage; derived rasters and variants are separate allocations.
type Raw struct {
	Data   []byte
	Kind   Kind
	Format string // concrete signature: "pdf", "jpeg", "png", ...
}

// New wraps data with its kind, sniffing the signature when declared is
// KindUnknown. A declared kind skips sniffing entirely, mirroring callers
// that already validated the upload content type.
func New(data []byte, declared Kind) (Raw, error) {
	format := DetectFormat(data)
	if declared != KindUnknown {
		return Raw{Data: data, Kind: declared, Format: format}, nil
	}
	kind, ok := kindOf(format)
	if !ok {
		return Raw{}, fmt.Errorf("%w (%d bytes)", ErrUnknownFormat, len(data))
	}
	return Raw{Data: data, Kind: kind, Format: format}, nil
}

// DetectFormat sniffs the concrete file format from the leading byte
// signature. It returns "" when no signature matches.
func DetectFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return "pdf"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}):
		return "png"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff"
	default:
		return ""
	}
}

// DetectKind maps the sniffed format onto the pipeline routing kind.
func DetectKind(data []byte) (Kind, error) {
	kind, ok := kindOf(DetectFormat(data))
	if !ok {
		return KindUnknown, fmt.Errorf("%w (%d bytes)", ErrUnknownFormat, len(data))
	}
	return kind, nil
}

func kindOf(format string) (Kind, bool) {
	switch format {
	case "pdf":
		return KindPDF, true
	case "jpeg", "png", "gif", "bmp", "webp", "tiff":
		return KindImage, true
	default:
		return KindUnknown, false
	}
}
