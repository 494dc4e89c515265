package brand

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

// DefaultBadgeSize is the side of the badge in pixels.
const DefaultBadgeSize = 512

// Badge renders url as a QR code centred on a white square of size pixels.
// Modules are scaled with nearest-neighbour sampling so edges stay sharp.
func Badge(url string, size int) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("brand url is empty")
	}
	if size <= 0 {
		size = DefaultBadgeSize
	}

	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	bitmap := q.Bitmap()
	n := len(bitmap)
	if size < n {
		return nil, fmt.Errorf("badge size %d is smaller than %d qr modules", size, n)
	}

	modules := image.NewGray(image.Rect(0, 0, n, n))
	for y, row := range bitmap {
		for x, dark := range row {
			c := color.Gray{Y: 0xff}
			if dark {
				c = color.Gray{Y: 0}
			}
			modules.SetGray(x, y, c)
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	// Whole pixels per module; the leftover is split as margin.
	side := size / n * n
	offset := (size - side) / 2
	dst := image.Rect(offset, offset, offset+side, offset+side)
	draw.NearestNeighbor.Scale(canvas, dst, modules, modules.Bounds(), draw.Src, nil)
	return canvas, nil
}

// BadgePath returns a stable file name for url inside dir.
func BadgePath(dir, url string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(url))
	return filepath.Join(dir, fmt.Sprintf("brand_qr_%s.png", id.String()[:8]))
}

// WriteBadge renders the badge for url into dir and returns its path. An
// existing badge for the same url is reused.
func WriteBadge(dir, url string, size int) (string, error) {
	path := BadgePath(dir, url)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	img, err := Badge(url, size)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
