package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/KorotaevvEgor/ttnscan/document"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetGray(w/2, h/2, color.Gray{Y: 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// fakePoppler pretends to be pdftoppm: it writes a fixture PNG at the
// requested output prefix and records the arguments it saw.
type fakePoppler struct {
	t    *testing.T
	page []byte
	args []string
	fail bool
}

func (f *fakePoppler) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.args = append([]string{name}, args...)
	if f.fail {
		return nil, []byte("syntax error"), errors.New("exit status 1")
	}
	prefix := args[len(args)-1]
	if err := os.WriteFile(prefix+".png", f.page, 0o600); err != nil {
		f.t.Fatalf("fake poppler write: %v", err)
	}
	return nil, nil, nil
}

func TestRasterizeImagePassThrough(t *testing.T) {
	r := New(Config{})
	doc, err := document.New(pngBytes(t, 40, 30), document.KindUnknown)
	if err != nil {
		t.Fatalf("document.New() error = %v", err)
	}
	page, err := r.Rasterize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if got := page.Image.Bounds(); got.Dx() != 40 || got.Dy() != 30 {
		t.Fatalf("unexpected bounds: %v", got)
	}
	if page.Index != 0 {
		t.Fatalf("unexpected page index: %d", page.Index)
	}
}

func TestRasterizeRejectsGarbage(t *testing.T) {
	r := New(Config{})
	doc := document.Raw{Data: []byte("definitely not pixels"), Kind: document.KindImage}
	if _, err := r.Rasterize(context.Background(), doc); !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}

func TestRenderPDFInvokesPdftoppm(t *testing.T) {
	fake := &fakePoppler{t: t, page: pngBytes(t, 100, 50)}
	r := New(Config{DPI: 150, Runner: fake})
	doc := document.Raw{Data: []byte("%PDF-1.4 minimal"), Kind: document.KindPDF}

	page, err := r.Rasterize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if page.Image.Bounds().Dx() != 100 {
		t.Fatalf("unexpected width: %d", page.Image.Bounds().Dx())
	}
	if page.DPI != 150 {
		t.Fatalf("unexpected dpi: %d", page.DPI)
	}
	joined := strings.Join(fake.args, " ")
	for _, want := range []string{"pdftoppm", "-r 150", "-png", "-singlefile", "-f 1 -l 1"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
}

func TestRenderPDFPageFallback(t *testing.T) {
	// The fixture is not parseable, so the page count probe reports 1 and
	// the out-of-range request falls back to page 0.
	fake := &fakePoppler{t: t, page: pngBytes(t, 10, 10)}
	r := New(Config{Page: 7, Runner: fake})
	doc := document.Raw{Data: []byte("%PDF-1.4 minimal"), Kind: document.KindPDF}

	page, err := r.Rasterize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if page.Index != 0 {
		t.Fatalf("page index = %d, want fallback to 0", page.Index)
	}
	joined := strings.Join(fake.args, " ")
	if !strings.Contains(joined, "-f 1 -l 1") {
		t.Fatalf("args %q should request first page", joined)
	}
}

func TestRenderPDFFailureIsDecodeError(t *testing.T) {
	fake := &fakePoppler{t: t, fail: true}
	r := New(Config{Runner: fake})
	doc := document.Raw{Data: []byte("%PDF-1.4"), Kind: document.KindPDF}
	if _, err := r.Rasterize(context.Background(), doc); !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}

func TestTextLayerRejectsGarbage(t *testing.T) {
	if _, err := TextLayer([]byte("%PDF-1.4 but not really")); err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestPageCountFallsBackToOne(t *testing.T) {
	if n := PageCount([]byte("junk")); n != 1 {
		t.Fatalf("PageCount(junk) = %d, want 1", n)
	}
}
