package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/KorotaevvEgor/ttnscan/ocr"
)

func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(text string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)
	return img
}

func TestRecognizeGeneralProfile(t *testing.T) {
	ensureTesseractAvailable(t)

	eng := New(Config{Languages: []string{"eng"}, DPI: 300})
	if err := eng.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	got, err := eng.Recognize(context.Background(), renderText("Hello 123"), ocr.ProfileGeneral)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	text := strings.ToLower(got.Text)
	if !strings.Contains(text, "hello") || !strings.Contains(text, "123") {
		t.Fatalf("unexpected OCR output: %q", got.Text)
	}
	if got.Confidence <= 0 || got.Confidence > 100 {
		t.Errorf("confidence = %v, want within (0, 100]", got.Confidence)
	}
}

func TestRecognizeDigitsProfile(t *testing.T) {
	ensureTesseractAvailable(t)

	eng := New(Config{Languages: []string{"eng"}, DPI: 300})
	got, err := eng.Recognize(context.Background(), renderText("18674"), ocr.ProfileDigits)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !strings.Contains(got.Text, "18674") {
		t.Fatalf("digits output = %q", got.Text)
	}
}

func TestSettingsForProfiles(t *testing.T) {
	eng := New(Config{})

	general := eng.settingsFor(ocr.ProfileGeneral)
	if general.psm != 6 || general.whitelist == "" {
		t.Errorf("general settings = %+v", general)
	}
	if len(general.languages) != 2 || general.languages[0] != "rus" {
		t.Errorf("general languages = %v", general.languages)
	}

	digits := eng.settingsFor(ocr.ProfileDigits)
	if digits.psm != 8 || !strings.Contains(digits.whitelist, "0123456789") {
		t.Errorf("digits settings = %+v", digits)
	}
	if len(digits.languages) != 1 || digits.languages[0] != "eng" {
		t.Errorf("digits languages = %v", digits.languages)
	}

	block := eng.settingsFor(ocr.ProfileSingleBlock)
	if block.psm != 7 || block.whitelist != "" {
		t.Errorf("single-block settings = %+v", block)
	}
}
