// Package matcher builds a library of templates and picks the template whose
// mark colours best fit a scanned image.
package matcher

import (
	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/pixels"
)

// Mark is a sampling rectangle of a template and the colour found there.
type Mark struct {
	Rect  pixels.Rect `yaml:"rect" json:"rect"`
	Color colour.RGB  `yaml:"color" json:"color"`
}

// TemplateRecord describes one template. Mark rects are in template coordinates.
type TemplateRecord struct {
	Source string  `yaml:"source" json:"source"`
	Width  int     `yaml:"width" json:"width"`
	Height int     `yaml:"height" json:"height"`
	Marks  [2]Mark `yaml:"marks" json:"marks"`
}

// Library holds the templates of one run keyed by source, in insertion order.
// A Library is not safe for concurrent mutation.
type Library struct {
	records map[string]*TemplateRecord
	order   []string
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{records: make(map[string]*TemplateRecord)}
}

// Add inserts rec, replacing any record with the same source.
func (l *Library) Add(rec *TemplateRecord) {
	if _, exists := l.records[rec.Source]; !exists {
		l.order = append(l.order, rec.Source)
	}
	l.records[rec.Source] = rec
}

// Get returns the record for source.
func (l *Library) Get(source string) (*TemplateRecord, bool) {
	rec, ok := l.records[source]
	return rec, ok
}

// Len returns the number of templates.
func (l *Library) Len() int {
	return len(l.order)
}

// Records returns all templates in insertion order.
func (l *Library) Records() []*TemplateRecord {
	out := make([]*TemplateRecord, 0, len(l.order))
	for _, source := range l.order {
		out = append(out, l.records[source])
	}
	return out
}

// Candidates returns the templates with exactly the given dimensions.
func (l *Library) Candidates(width, height int) []*TemplateRecord {
	var out []*TemplateRecord
	for _, rec := range l.Records() {
		if rec.Width == width && rec.Height == height {
			out = append(out, rec)
		}
	}
	return out
}

// MarshalYAML encodes the library as a list of templates.
func (l *Library) MarshalYAML() (any, error) {
	return l.Records(), nil
}
