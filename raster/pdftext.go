package raster

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayer extracts the embedded text layer of a PDF, if any. Digitally
// produced waybills carry selectable text and can skip OCR entirely; scanned
// ones come back empty and fall through to rasterization.
//
// The underlying parser panics on some malformed files, so the whole probe
// is recover-guarded.
func TextLayer(data []byte) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text = ""
			err = fmt.Errorf("%w: text layer probe panicked: %v", ErrDecode, p)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// PageCount reports the number of pages in a PDF, falling back to 1 when the
// document cannot be parsed.
func PageCount(data []byte) (n int) {
	defer func() {
		if recover() != nil || n < 1 {
			n = 1
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 1
	}
	return reader.NumPage()
}
