package pixels

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// coordBuffer encodes each pixel's coordinate into its channels so lookups can be verified.
func coordBuffer(t *testing.T, w, h int) *Buffer {
	t.Helper()
	rgba := make([]byte, 0, w*h*4)
	for y := range h {
		for x := range w {
			rgba = append(rgba, uint8(x), uint8(y), uint8(x+y), 255)
		}
	}
	buf, err := New(w, h, rgba)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return buf
}

func TestNew_LengthInvariant(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		n       int
		wantErr bool
	}{
		{"exact", 3, 2, 24, false},
		{"short", 3, 2, 20, true},
		{"long", 3, 2, 28, true},
		{"zero width", 0, 2, 0, true},
		{"negative height", 2, -1, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.w, tc.h, make([]byte, tc.n))
			if (err != nil) != tc.wantErr {
				t.Errorf("New(%d, %d, %d bytes) error = %v, wantErr %v", tc.w, tc.h, tc.n, err, tc.wantErr)
			}
		})
	}
}

func TestFromPixels_LengthInvariant(t *testing.T) {
	if _, err := FromPixels(2, 2, make([]Pixel, 3)); err == nil {
		t.Error("expected error for 3 pixels in a 2x2 buffer")
	}
	if _, err := FromPixels(2, 2, make([]Pixel, 4)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGet_EveryCoordinate(t *testing.T) {
	w, h := 7, 5
	buf := coordBuffer(t, w, h)

	for y := range h {
		for x := range w {
			p, err := buf.Get(x, y)
			if err != nil {
				t.Fatalf("Get(%d, %d) failed: %v", x, y, err)
			}
			if int(p.R) != x || int(p.G) != y {
				t.Errorf("Get(%d, %d) = (%d, %d), want (%d, %d)", x, y, p.R, p.G, x, y)
			}
		}
	}
}

func TestGet_OutOfRange(t *testing.T) {
	buf := coordBuffer(t, 4, 3)

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {10, 10}} {
		if _, err := buf.Get(c[0], c[1]); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Get(%d, %d) error = %v, want ErrOutOfRange", c[0], c[1], err)
		}
	}
}

func TestSub_KeepsRowMajorOrder(t *testing.T) {
	buf := coordBuffer(t, 10, 8)
	rect := Rect{Top: 2, Left: 3, Width: 4, Height: 5}

	sub, err := buf.Sub(rect)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if sub.Width() != 4 || sub.Height() != 5 {
		t.Fatalf("expected 4x5 sub buffer, got %dx%d", sub.Width(), sub.Height())
	}

	for y := range sub.Height() {
		for x := range sub.Width() {
			p, err := sub.Get(x, y)
			if err != nil {
				t.Fatalf("Get(%d, %d) failed: %v", x, y, err)
			}
			if int(p.R) != x+rect.Left || int(p.G) != y+rect.Top {
				t.Errorf("sub.Get(%d, %d) = (%d, %d), want (%d, %d)", x, y, p.R, p.G, x+rect.Left, y+rect.Top)
			}
		}
	}
}

func TestRegionOf_Stats(t *testing.T) {
	pix := []Pixel{
		{10, 20, 30, 255}, {0, 0, 0, 0},
		{50, 20, 90, 255}, {200, 200, 200, 0},
	}
	buf, err := FromPixels(2, 2, pix)
	if err != nil {
		t.Fatalf("FromPixels failed: %v", err)
	}

	region, err := RegionOf(buf.Bounds(), buf, false)
	if err != nil {
		t.Fatalf("RegionOf failed: %v", err)
	}

	s := region.Stats
	if s.Count != 2 {
		t.Errorf("expected 2 opaque pixels, got %d", s.Count)
	}
	if s.RSum != 60 || s.GSum != 40 || s.BSum != 120 {
		t.Errorf("unexpected sums (%d, %d, %d)", s.RSum, s.GSum, s.BSum)
	}
	if s.Range(0) != 40 || s.Range(1) != 0 || s.Range(2) != 60 {
		t.Errorf("unexpected ranges (%d, %d, %d)", s.Range(0), s.Range(1), s.Range(2))
	}
	if s.Volume() != 0 {
		t.Errorf("expected zero volume with a flat green channel, got %d", s.Volume())
	}
	if len(region.Pixels()) != 2 {
		t.Errorf("expected transparent pixels to be dropped, got %d pixels", len(region.Pixels()))
	}
	if _, err := region.Buffer(); !errors.Is(err, ErrIncompleteRegion) {
		t.Errorf("expected ErrIncompleteRegion, got %v", err)
	}
}

func TestRegionOf_IncludeTransparent(t *testing.T) {
	pix := []Pixel{
		{10, 20, 30, 255}, {0, 0, 0, 0},
		{50, 60, 70, 255}, {1, 2, 3, 255},
	}
	buf, _ := FromPixels(2, 2, pix)

	region, err := RegionOf(buf.Bounds(), buf, true)
	if err != nil {
		t.Fatalf("RegionOf failed: %v", err)
	}
	if region.Stats.Count != 3 {
		t.Errorf("expected 3 opaque pixels counted, got %d", region.Stats.Count)
	}
	if len(region.Pixels()) != 4 {
		t.Errorf("expected all 4 pixels retained, got %d", len(region.Pixels()))
	}
	if len(region.Opaque()) != 3 {
		t.Errorf("expected 3 opaque pixels, got %d", len(region.Opaque()))
	}
	if region.Stats.Priority() != region.Stats.Volume()*3 {
		t.Errorf("priority should be volume times opaque count")
	}
}

func TestRegionOf_OutOfBounds(t *testing.T) {
	buf := coordBuffer(t, 4, 4)
	for _, r := range []Rect{
		{Top: 0, Left: 0, Width: 5, Height: 1},
		{Top: 3, Left: 0, Width: 1, Height: 2},
		{Top: -1, Left: 0, Width: 1, Height: 1},
		{Top: 0, Left: 0, Width: 0, Height: 1},
	} {
		if _, err := RegionOf(r, buf, true); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("RegionOf(%s) error = %v, want ErrOutOfRange", r, err)
		}
	}
}

func TestRect_Overlaps(t *testing.T) {
	a := Rect{Top: 0, Left: 0, Width: 10, Height: 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"inside", Rect{Top: 2, Left: 2, Width: 2, Height: 2}, true},
		{"touching right edge", Rect{Top: 0, Left: 10, Width: 5, Height: 5}, false},
		{"touching bottom edge", Rect{Top: 10, Left: 0, Width: 5, Height: 5}, false},
		{"partial", Rect{Top: 9, Left: 9, Width: 5, Height: 5}, true},
		{"empty", Rect{Top: 1, Left: 1}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Overlaps(tc.b); got != tc.want {
				t.Errorf("Overlaps(%s) = %v, want %v", tc.b, got, tc.want)
			}
		})
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 8, 7))
	img.Set(5, 5, color.RGBA{R: 255, A: 255})
	img.Set(7, 6, color.RGBA{B: 255, A: 255})

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Width() != 3 || buf.Height() != 2 {
		t.Fatalf("expected 3x2 buffer, got %dx%d", buf.Width(), buf.Height())
	}

	first, _ := buf.Get(0, 0)
	if first != (Pixel{R: 255, A: 255}) {
		t.Errorf("expected red at origin, got %+v", first)
	}
	last, _ := buf.Get(2, 1)
	if last != (Pixel{B: 255, A: 255}) {
		t.Errorf("expected blue at (2,1), got %+v", last)
	}
	mid, _ := buf.Get(1, 0)
	if mid.Opaque() {
		t.Errorf("expected transparent pixel at (1,0), got %+v", mid)
	}
}

func TestImage_RoundTrip(t *testing.T) {
	buf := coordBuffer(t, 3, 3)
	back, err := FromImage(buf.Image())
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	for i, p := range back.Pixels() {
		if p != buf.Pixels()[i] {
			t.Fatalf("pixel %d = %+v, want %+v", i, p, buf.Pixels()[i])
		}
	}
}
