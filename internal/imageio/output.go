package imageio

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/photo-stamper/internal/constants"
)

// Layout maps photos below an image folder to their output and error locations.
// Both roots are siblings of the image folder and mirror its sub-directories.
type Layout struct {
	ImageRoot string
	OutputDir string
	ErrorDir  string
}

// NewLayout returns the default layout for imageRoot. Relative roots are
// resolved against the working directory so "." still gets sibling folders.
func NewLayout(imageRoot string) Layout {
	root := absPath(imageRoot)
	parent := filepath.Dir(root)
	return Layout{
		ImageRoot: root,
		OutputDir: filepath.Join(parent, constants.OutputDirName),
		ErrorDir:  filepath.Join(parent, constants.ErrorDirName),
	}
}

// Output returns the stamped file location for path.
func (l Layout) Output(path string) (string, error) {
	return l.rebase(path, l.OutputDir)
}

// Error returns the error copy location for path.
func (l Layout) Error(path string) (string, error) {
	return l.rebase(path, l.ErrorDir)
}

func (l Layout) rebase(path, dest string) (string, error) {
	rel, err := filepath.Rel(absPath(l.ImageRoot), absPath(path))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", path, l.ImageRoot)
	}
	return filepath.Join(dest, rel), nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Compositor draws a template centred over a photo and writes the result.
type Compositor struct {
	JPEGQuality int
}

// NewCompositor creates a compositor encoding JPEG output at quality.
func NewCompositor(quality int) *Compositor {
	if quality <= 0 || quality > 100 {
		quality = constants.DefaultJPEGQuality
	}
	return &Compositor{JPEGQuality: quality}
}

// Composite stamps templatePath onto imagePath and writes the result to outPath.
// JPEG photos are written as JPEG, everything else as PNG.
func (c *Compositor) Composite(imagePath, templatePath, outPath string) error {
	photo, err := decodeFile(imagePath)
	if err != nil {
		return err
	}
	overlay, err := decodeFile(templatePath)
	if err != nil {
		return err
	}

	dst := Stamp(photo, overlay)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if isJPEG(imagePath) {
		err = jpeg.Encode(f, dst, &jpeg.Options{Quality: c.JPEGQuality})
	} else {
		err = png.Encode(f, dst)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", outPath, err)
	}
	return nil
}

// Stamp returns photo with overlay drawn over its centre.
func Stamp(photo, overlay image.Image) *image.NRGBA {
	pb := photo.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, pb.Dx(), pb.Dy()))
	draw.Draw(dst, dst.Bounds(), photo, pb.Min, draw.Src)

	ob := overlay.Bounds()
	offset := image.Pt((pb.Dx()-ob.Dx())/2, (pb.Dy()-ob.Dy())/2)
	target := image.Rectangle{Min: offset, Max: offset.Add(ob.Size())}
	draw.Draw(dst, target, overlay, ob.Min, draw.Over)
	return dst
}

// CopyFile copies src to dst, creating parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating error directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

func isJPEG(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jpg" || ext == ".jpeg"
}
