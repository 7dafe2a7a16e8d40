package wordpress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"net/http"
)

const (
	// maxImageBytes bounds how much of an image is downloaded for sampling.
	maxImageBytes = 10 << 20
	// maxImagePixels bounds the decoded bitmap; 4096x4096 RGBA is 64 MiB.
	maxImagePixels = 4096 * 4096
)

// ErrImageTooLarge is returned when an image exceeds the download or pixel
// budget.
var ErrImageTooLarge = errors.New("image too large")

// FetchImage downloads and decodes the image at url. JPEG, PNG and GIF are
// supported. The header is checked against the pixel budget before the
// bitmap is allocated. Images bypass the response cache.
func (c *Client) FetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.images.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching image %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", url, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s over %d bytes: %w", url, maxImageBytes, ErrImageTooLarge)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image header %s: %w", url, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxImagePixels/cfg.Height {
		return nil, fmt.Errorf("image %s is %dx%d: %w", url, cfg.Width, cfg.Height, ErrImageTooLarge)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", url, err)
	}
	return img, nil
}
