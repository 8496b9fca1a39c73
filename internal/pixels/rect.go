package pixels

import "fmt"

// Rect is an axis-aligned rectangle. Bottom and Right are exclusive.
type Rect struct {
	Top    int `yaml:"top" json:"top"`
	Left   int `yaml:"left" json:"left"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Top + r.Height }

// Right returns the first column right of the rectangle.
func (r Rect) Right() int { return r.Left + r.Width }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Within reports whether the rectangle is non-empty and lies inside a width x height area.
func (r Rect) Within(width, height int) bool {
	if r.Empty() || r.Top < 0 || r.Left < 0 {
		return false
	}
	return r.Right() <= width && r.Bottom() <= height
}

// Overlaps reports whether the two rectangles share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Left < o.Right() && o.Left < r.Right() && r.Top < o.Bottom() && o.Top < r.Bottom()
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{Top: r.Top + dy, Left: r.Left + dx, Width: r.Width, Height: r.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.Left, r.Top)
}
