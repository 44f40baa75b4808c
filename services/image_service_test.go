package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestImageServiceSave(t *testing.T) {
	svc := NewImageService(t.TempDir(), 1<<20)
	stored, err := svc.Save(bytes.NewReader(testPNG(t, 640, 480)))
	if err != nil {
		t.Fatal(err)
	}
	if stored.MimeType != "image/png" || stored.Width != 640 || stored.Height != 480 {
		t.Errorf("stored = %+v", stored)
	}
	if !strings.HasSuffix(stored.FileName, ".png") {
		t.Errorf("file name = %q", stored.FileName)
	}
	if _, err := os.Stat(svc.Path(stored.FileName)); err != nil {
		t.Errorf("original missing: %v", err)
	}
	thumb, err := svc.Load(stored.Thumbnail)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if b := thumb.Bounds(); b.Dx() != ThumbnailWidth || b.Dy() != 240 {
		t.Errorf("thumbnail size = %v", b)
	}
}

func TestImageServiceRejects(t *testing.T) {
	svc := NewImageService(t.TempDir(), 1024)

	if _, err := svc.Save(strings.NewReader("just some text, not a photo")); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("text err = %v", err)
	}
	if _, err := svc.Save(bytes.NewReader(make([]byte, 2048))); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("large err = %v", err)
	}
}

func TestScaleToWidthKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	if b := ScaleToWidth(src, 150).Bounds(); b.Dx() != 150 || b.Dy() != 50 {
		t.Errorf("scaled = %v", b)
	}
	if b := ScaleToWidth(src, 1000).Bounds(); b.Dx() != 300 {
		t.Errorf("upscaled = %v, want original width", b)
	}
}

func TestImageServiceRemove(t *testing.T) {
	svc := NewImageService(t.TempDir(), 1<<20)
	stored, err := svc.Save(bytes.NewReader(testPNG(t, 64, 48)))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Remove(stored); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, name := range []string{stored.FileName, stored.Thumbnail} {
		if _, err := os.Stat(svc.Path(name)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still present: %v", name, err)
		}
	}
	// 重复删除不报错
	if err := svc.Remove(stored); err != nil {
		t.Errorf("second remove: %v", err)
	}
}
