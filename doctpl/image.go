package doctpl

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxImageSide bounds the pixel size of embedded images.
const maxImageSide = 256

// LoadImage decodes a PNG, JPEG, GIF, BMP or WebP image and returns it as an
// 8-bit PNG no larger than maxImageSide on either side, ready to be
// registered with the engine under name.
func LoadImage(name string, r io.Reader) (Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return Image{}, fmt.Errorf("doctpl: decoding image %q: %w", name, err)
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return Image{}, fmt.Errorf("%w: image %q is empty", ErrInvalidGeometry, name)
	}

	w, h := b.Dx(), b.Dy()
	if w > maxImageSide || h > maxImageSide {
		if w >= h {
			h = h * maxImageSide / w
			w = maxImageSide
		} else {
			w = w * maxImageSide / h
			h = maxImageSide
		}
		if w == 0 {
			w = 1
		}
		if h == 0 {
			h = 1
		}
	}

	// fpdf rejects 16-bit PNGs, so everything is redrawn onto an 8-bit canvas.
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return Image{}, fmt.Errorf("doctpl: encoding image %q: %w", name, err)
	}
	return Image{Name: name, Type: "PNG", Data: buf.Bytes()}, nil
}

// LoadImageFile is LoadImage for a file on disk.
func LoadImageFile(name, path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("doctpl: opening image: %w", err)
	}
	defer f.Close()
	return LoadImage(name, f)
}
