package matcher

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/locator"
	"github.com/kozaktomas/photo-stamper/internal/pixels"
)

// ErrNoMatchTemplate is returned when no template has the image's dimensions.
var ErrNoMatchTemplate = errors.New("no template matches image size")

// Decoder turns a source identifier into a pixel buffer.
type Decoder interface {
	Decode(source string) (*pixels.Buffer, error)
}

// Extractor reduces pixels to one representative colour.
type Extractor interface {
	Extract(pix []pixels.Pixel) (colour.RGB, error)
}

// Options are the collaborators used to build template records.
type Options struct {
	Locator   locator.Locator
	Extractor Extractor

	// OnTemplate, when set, is called before a source is decoded.
	OnTemplate func(source string)
	// OnRecord, when set, is called for every record added to the library.
	OnRecord func(rec *TemplateRecord)
}

// Build decodes every source and returns a fresh library. The first failure
// aborts the build.
func Build(sources []string, dec Decoder, opts Options) (*Library, error) {
	lib := NewLibrary()
	for _, source := range sources {
		if opts.OnTemplate != nil {
			opts.OnTemplate(source)
		}
		buf, err := dec.Decode(source)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", source, err)
		}
		rec, err := BuildRecord(source, buf, opts)
		if err != nil {
			return nil, err
		}
		if opts.OnRecord != nil {
			opts.OnRecord(rec)
		}
		lib.Add(rec)
	}
	return lib, nil
}

// BuildRecord locates the marks of a template buffer and samples their colours.
func BuildRecord(source string, buf *pixels.Buffer, opts Options) (*TemplateRecord, error) {
	regions, err := opts.Locator.Locate(buf)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", source, err)
	}

	rec := &TemplateRecord{Source: source, Width: buf.Width(), Height: buf.Height()}
	for i, r := range regions {
		rect := r.Absolute()
		region, err := pixels.RegionOf(rect, buf, false)
		if err != nil {
			return nil, fmt.Errorf("template %s mark %d: %w", source, i, err)
		}
		c, err := opts.Extractor.Extract(region.Pixels())
		if err != nil {
			return nil, fmt.Errorf("template %s mark %d: %w", source, i, err)
		}
		rec.Marks[i] = Mark{Rect: rect, Color: c}
	}
	return rec, nil
}

// Score is the comparison of one candidate template against an image.
type Score struct {
	Template  *TemplateRecord
	Colors    [2]colour.RGB
	Distances [2]float64
	Total     float64
}

// Result is the outcome of matching one image.
type Result struct {
	Selected *TemplateRecord
	Scores   []Score
}

// Matcher scores library templates against scanned images.
type Matcher struct {
	extractor Extractor
	policy    Policy
}

// New creates a matcher.
func New(extractor Extractor, policy Policy) *Matcher {
	return &Matcher{extractor: extractor, policy: policy}
}

// Match scores every same-sized template of lib against buf and selects one
// according to the policy. Equal scores keep the earlier template.
func (m *Matcher) Match(lib *Library, buf *pixels.Buffer) (*Result, error) {
	candidates := lib.Candidates(buf.Width(), buf.Height())
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoMatchTemplate, buf.Width(), buf.Height())
	}

	// Region colours are shared by templates that sample the same rect.
	cache := make(map[pixels.Rect]colour.RGB)
	regionColor := func(rect pixels.Rect) (colour.RGB, error) {
		if c, ok := cache[rect]; ok {
			return c, nil
		}
		region, err := pixels.RegionOf(rect, buf, true)
		if err != nil {
			return colour.RGB{}, err
		}
		c, err := m.extractor.Extract(region.Pixels())
		if err != nil {
			return colour.RGB{}, fmt.Errorf("region %s: %w", rect, err)
		}
		cache[rect] = c
		return c, nil
	}

	result := &Result{Scores: make([]Score, 0, len(candidates))}
	best := -1
	for _, rec := range candidates {
		score := Score{Template: rec}
		for i, mark := range rec.Marks {
			c, err := regionColor(mark.Rect)
			if err != nil {
				return nil, err
			}
			score.Colors[i] = c
			score.Distances[i] = colour.Distance(c, mark.Color)
			score.Total += score.Distances[i]
		}
		result.Scores = append(result.Scores, score)

		if best < 0 || m.policy.better(score.Total, result.Scores[best].Total) {
			best = len(result.Scores) - 1
		}
	}

	result.Selected = result.Scores[best].Template
	return result, nil
}
