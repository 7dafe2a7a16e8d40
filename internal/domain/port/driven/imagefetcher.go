package driven

import (
	"context"
	"image"
)

// ImageFetcher defines the driven port for downloading and decoding remote images.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (image.Image, error)
}
