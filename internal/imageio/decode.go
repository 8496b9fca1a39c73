// Package imageio implements the file-system collaborators of a stamping run:
// decoding, listing, compositing and copying images.
package imageio

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	_ "golang.org/x/image/bmp" // register BMP decoder for templates

	"github.com/kozaktomas/photo-stamper/internal/pixels"
)

// DecodeError is returned when a source cannot be read or decoded.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FileDecoder decodes image files into pixel buffers.
type FileDecoder struct{}

// Decode reads and decodes the image at path.
func (FileDecoder) Decode(path string) (*pixels.Buffer, error) {
	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	buf, err := pixels.FromImage(img)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	return buf, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Source: path, Err: err}
	}
	return img, nil
}
