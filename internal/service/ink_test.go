package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestHasInkTransparentCanvas(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))

	inked, err := NewInkService().HasInk(context.Background(), encodePNG(t, img))
	if err != nil {
		t.Fatalf("failed to scan: %v", err)
	}
	if inked {
		t.Error("fully transparent canvas reported as inked")
	}
}

func TestHasInkWhiteCanvas(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}

	inked, err := NewInkService().HasInk(context.Background(), encodePNG(t, img))
	if err != nil {
		t.Fatalf("failed to scan: %v", err)
	}
	if inked {
		t.Error("all-white canvas reported as inked")
	}
}

func TestHasInkStroke(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for x := 5; x < 30; x++ {
		img.Set(x, 10, color.NRGBA{R: 0x10, G: 0x10, B: 0x20, A: 0xff})
	}

	inked, err := NewInkService().HasInk(context.Background(), encodePNG(t, img))
	if err != nil {
		t.Fatalf("failed to scan: %v", err)
	}
	if !inked {
		t.Error("dark stroke not detected")
	}
}

func TestHasInkUndecodable(t *testing.T) {
	_, err := NewInkService().HasInk(context.Background(), []byte("not an image"))
	if err == nil {
		t.Error("expected error for undecodable data")
	}
}
