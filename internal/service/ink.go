package service

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

var inkTracer = otel.Tracer("ink")

// Visible ink: a pixel that is neither (near-)transparent nor (near-)white.
// Signature pads export either transparent-background PNGs with dark strokes
// or white-background rasters, so both blanks reduce to "no such pixel".
const (
	alphaFloor   = 0x1000
	whiteCeiling = 0xf000
)

// InkService is the server-side duplicate of the client's blank-canvas
// check; the server cannot trust a client to have enforced it.
type InkService struct{}

func NewInkService() *InkService {
	return &InkService{}
}

func (s *InkService) HasInk(ctx context.Context, data []byte) (bool, error) {
	_, span := inkTracer.Start(ctx, "Ink.Service.HasInk")
	defer span.End()

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		err = errors.Wrap(err, "failed to decode signature raster")
		span.RecordError(err)
		return false, err
	}

	return scanForInk(img), nil
}

func scanForInk(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a < alphaFloor {
				continue
			}
			if r < whiteCeiling || g < whiteCeiling || b < whiteCeiling {
				return true
			}
		}
	}
	return false
}
