package application

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// Brightness bounds outside which a sampled color is replaced by a fallback.
const (
	minBrightness = 30
	maxBrightness = 225
)

// maxSamples caps how many pixels AverageColor reads from large images.
const maxSamples = 40_000

// ColorSampler derives a card background color for an episode from its lead
// image.
type ColorSampler struct {
	images driven.ImageFetcher
	logger *slog.Logger
}

// NewColorSampler creates a ColorSampler.
func NewColorSampler(images driven.ImageFetcher, logger *slog.Logger) *ColorSampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ColorSampler{images: images, logger: logger}
}

// DominantColor returns the average color of the image at imageURL as a CSS
// rgb() value. When the image cannot be fetched or decoded, or its average is
// too dark or too light to carry white text, it returns FallbackColor(id).
func (s *ColorSampler) DominantColor(ctx context.Context, imageURL string, id int64) string {
	if imageURL == "" || s.images == nil {
		return FallbackColor(id)
	}

	img, err := s.images.FetchImage(ctx, imageURL)
	if err != nil {
		s.logger.Debug("color sample fetch failed", "url", imageURL, "error", err)
		return FallbackColor(id)
	}

	r, g, b, ok := AverageColor(img)
	if !ok {
		return FallbackColor(id)
	}

	if br := Brightness(r, g, b); br < minBrightness || br > maxBrightness {
		return FallbackColor(id)
	}

	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

// AverageColor returns the mean of the image's opaque, non-white pixels.
// Large images are sampled on a regular grid. ok is false when no pixel
// qualifies.
func AverageColor(img image.Image) (r, g, b uint8, ok bool) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}

	step := 1
	for (w/step)*(h/step) > maxSamples {
		step++
	}

	var sumR, sumG, sumB, count uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			cr, cg, cb, ca := img.At(x, y).RGBA()
			if ca == 0 {
				continue
			}
			r8, g8, b8 := cr>>8, cg>>8, cb>>8
			if r8 == 255 && g8 == 255 && b8 == 255 {
				continue
			}
			sumR += uint64(r8)
			sumG += uint64(g8)
			sumB += uint64(b8)
			count++
		}
	}

	if count == 0 {
		return 0, 0, 0, false
	}
	return uint8(sumR / count), uint8(sumG / count), uint8(sumB / count), true
}

// Brightness is the perceived brightness of an RGB color on a 0-255 scale.
func Brightness(r, g, b uint8) float64 {
	return (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000
}

// FallbackColor returns a mid-saturation hsl() color whose hue is derived
// from id, so the same episode always gets the same color.
func FallbackColor(id int64) string {
	h := id % 360
	if h < 0 {
		h += 360
	}
	hue := (h * 47) % 360
	return fmt.Sprintf("hsl(%d, 50%%, 45%%)", hue)
}
