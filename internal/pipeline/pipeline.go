// Package pipeline runs a stamping pass: it builds the template library, then
// matches, stamps or rejects every photo of an image folder one at a time.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/imageio"
	"github.com/kozaktomas/photo-stamper/internal/locator"
	"github.com/kozaktomas/photo-stamper/internal/matcher"
	"github.com/kozaktomas/photo-stamper/internal/status"
)

var (
	// ErrRunInProgress is returned when a run is started while another is active.
	ErrRunInProgress = errors.New("a run is already in progress")
	// ErrSameFolder is returned when the image and template folders are the same.
	ErrSameFolder = errors.New("image folder and template folder must differ")
)

// Compositor stamps a template onto a photo.
type Compositor interface {
	Composite(imagePath, templatePath, outPath string) error
}

// Deps are the collaborators of a Runner. Nil fields fall back to the
// file-system implementations of package imageio.
type Deps struct {
	Decoder       matcher.Decoder
	Compositor    Compositor
	Copy          func(src, dst string) error
	ListTemplates func(dir string) ([]string, error)
	ListImages    func(root string, onFound func(string)) ([]string, error)
	Reporter      status.Reporter
}

// Runner executes runs. At most one run is active per Runner.
type Runner struct {
	deps    Deps
	running atomic.Bool
}

// NewRunner creates a runner.
func NewRunner(deps Deps) *Runner {
	if deps.Decoder == nil {
		deps.Decoder = imageio.FileDecoder{}
	}
	if deps.Compositor == nil {
		deps.Compositor = imageio.NewCompositor(0)
	}
	if deps.Copy == nil {
		deps.Copy = imageio.CopyFile
	}
	if deps.ListTemplates == nil {
		deps.ListTemplates = imageio.ListTemplates
	}
	if deps.ListImages == nil {
		deps.ListImages = imageio.ListImages
	}
	if deps.Reporter == nil {
		deps.Reporter = status.Discard
	}
	return &Runner{deps: deps}
}

// ProgressInfo describes the photo that was just handled.
type ProgressInfo struct {
	Current  int
	Total    int
	Image    string
	Template string
	Err      error
}

// Options configure one run.
type Options struct {
	ImageDir    string
	TemplateDir string

	// OutputDir and ErrorDir override the folders next to ImageDir.
	OutputDir string
	ErrorDir  string

	Policy    matcher.Policy
	Quantizer colour.Quantizer
	Locator   locator.Locator

	// LogFile is created inside ImageDir; empty disables the run log.
	LogFile string

	// Reporter receives the events of this run in addition to the runner's reporter.
	Reporter   status.Reporter
	OnProgress func(ProgressInfo)
}

// Outcome is the result for one photo.
type Outcome struct {
	Image    string `json:"image"`
	Template string `json:"template,omitempty"`
	Output   string `json:"output"`
	Error    string `json:"error,omitempty"`
}

// RunResult summarizes a finished run.
type RunResult struct {
	Templates int       `json:"templates"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	OutputDir string    `json:"output_dir"`
	ErrorDir  string    `json:"error_dir"`
	Outcomes  []Outcome `json:"outcomes,omitempty"`
}

// Running reports whether a run is active.
func (r *Runner) Running() bool {
	return r.running.Load()
}

type run struct {
	*Runner
	opts   Options
	rep    status.Reporter
	layout imageio.Layout
}

func (r *run) emit(st status.Status, format string, args ...any) {
	r.rep.Report(status.Event{Time: time.Now(), Status: st, Message: fmt.Sprintf(format, args...)})
}

func (r *run) emitColor(c colour.RGB, format string, args ...any) {
	r.rep.Report(status.Event{
		Time:    time.Now(),
		Status:  status.Process,
		Message: fmt.Sprintf(format, args...),
		Color:   c.Hex(),
	})
}

const busyMessage = "Processing is already running, try again when it has finished"

// Reservation holds the run guard of a Runner until it is used or released.
type Reservation struct {
	runner *Runner
	used   atomic.Bool
}

// Reserve takes the run guard without starting a run. It fails with
// ErrRunInProgress while another run is active or reserved.
func (r *Runner) Reserve() (*Reservation, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.deps.Reporter.Report(status.Event{
			Time:    time.Now(),
			Status:  status.Error,
			Message: busyMessage,
		})
		return nil, ErrRunInProgress
	}
	return &Reservation{runner: r}, nil
}

// Release gives the guard back without running. It is a no-op after Run.
func (res *Reservation) Release() {
	if res.used.CompareAndSwap(false, true) {
		res.runner.running.Store(false)
	}
}

// Run executes the reserved run and releases the guard when it ends. A
// reservation runs at most once.
func (res *Reservation) Run(opts Options) (*RunResult, error) {
	if !res.used.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer res.runner.running.Store(false)
	return res.runner.runReserved(opts)
}

// Run builds the template library from opts.TemplateDir and stamps every photo
// below opts.ImageDir. Template failures abort the run before any photo is
// touched; photo failures are copied to the error folder and the run goes on.
func (r *Runner) Run(opts Options) (*RunResult, error) {
	res, err := r.Reserve()
	if err != nil {
		if opts.Reporter != nil {
			opts.Reporter.Report(status.Event{
				Time:    time.Now(),
				Status:  status.Error,
				Message: busyMessage,
			})
		}
		return nil, err
	}
	return res.Run(opts)
}

func (r *Runner) runReserved(opts Options) (*RunResult, error) {
	rep := status.Multi(r.deps.Reporter, opts.Reporter)
	emit := func(st status.Status, msg string) {
		rep.Report(status.Event{Time: time.Now(), Status: st, Message: msg})
	}

	if sameDir(opts.ImageDir, opts.TemplateDir) {
		emit(status.Error, "Image folder and template folder must differ")
		return nil, ErrSameFolder
	}

	if opts.LogFile != "" {
		rep = status.Multi(rep, status.NewLogFile(filepath.Join(opts.ImageDir, opts.LogFile)))
	}
	if opts.Quantizer == nil {
		opts.Quantizer = colour.MedianCut{}
	}
	if opts.Locator == nil {
		opts.Locator = locator.NewBisect()
	}

	layout := imageio.NewLayout(opts.ImageDir)
	if opts.OutputDir != "" {
		layout.OutputDir = opts.OutputDir
	}
	if opts.ErrorDir != "" {
		layout.ErrorDir = opts.ErrorDir
	}

	rn := &run{Runner: r, opts: opts, rep: rep, layout: layout}
	res, err := rn.execute()
	if err != nil {
		rn.emit(status.Error, "Processing failed: %v", err)
		return nil, err
	}
	return res, nil
}

func (r *run) execute() (*RunResult, error) {
	res := &RunResult{OutputDir: r.layout.OutputDir, ErrorDir: r.layout.ErrorDir}
	extractor := colour.NewExtractor(r.opts.Quantizer)

	r.emit(status.Process, "Parsing templates...")
	lib, err := r.buildLibrary(extractor)
	if err != nil {
		return nil, err
	}
	res.Templates = lib.Len()
	if lib.Len() == 0 {
		r.emit(status.Error, "No template files found, check the template folder")
		return res, nil
	}

	r.emit(status.Success, "Templates parsed, searching images...")
	images, err := r.deps.ListImages(r.opts.ImageDir, func(path string) {
		r.emit(status.Process, "%s queued", filepath.Base(path))
	})
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		r.emit(status.Error, "No image files found, check the image folder")
		return res, nil
	}

	m := matcher.New(extractor, r.opts.Policy)
	for i, path := range images {
		name := filepath.Base(path)
		r.emit(status.Process, "Processing %s...", name)

		outcome := r.stamp(m, lib, path)
		var procErr error
		if outcome.Error == "" {
			res.Succeeded++
			r.emit(status.Success, "%s stamped", name)
		} else {
			res.Failed++
			procErr = errors.New(outcome.Error)
			r.reject(path, &outcome)
			r.emit(status.Error, "%s: %s", name, outcome.Error)
		}
		res.Outcomes = append(res.Outcomes, outcome)

		if r.opts.OnProgress != nil {
			r.opts.OnProgress(ProgressInfo{
				Current:  i + 1,
				Total:    len(images),
				Image:    path,
				Template: outcome.Template,
				Err:      procErr,
			})
		}
	}

	r.emit(status.Process, "All images processed")
	if res.Succeeded > 0 {
		r.emit(status.Success, "%d files stamped, see %s", res.Succeeded, res.OutputDir)
	}
	if res.Failed > 0 {
		r.emit(status.Error, "%d files failed, see %s", res.Failed, res.ErrorDir)
	}
	return res, nil
}

// buildLibrary returns a fresh library for the template folder.
func (r *run) buildLibrary(extractor *colour.Extractor) (*matcher.Library, error) {
	sources, err := r.deps.ListTemplates(r.opts.TemplateDir)
	if err != nil {
		return nil, err
	}

	return matcher.Build(sources, r.deps.Decoder, matcher.Options{
		Locator:   r.opts.Locator,
		Extractor: extractor,
		OnTemplate: func(source string) {
			r.emit(status.Process, "Parsing template %s...", filepath.Base(source))
		},
		OnRecord: func(rec *matcher.TemplateRecord) {
			r.emit(status.Process, "Template %s parsed:", filepath.Base(rec.Source))
			for i, mark := range rec.Marks {
				r.emitColor(mark.Color, "Mark %d colour is %s", i+1, mark.Color.Hex())
			}
		},
	})
}

// stamp matches one photo and composites the winning template.
func (r *run) stamp(m *matcher.Matcher, lib *matcher.Library, path string) Outcome {
	outcome := Outcome{Image: path}
	name := filepath.Base(path)

	buf, err := r.deps.Decoder.Decode(path)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	result, err := m.Match(lib, buf)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	for _, score := range result.Scores {
		for i, c := range score.Colors {
			r.emitColor(c, "%s mark %d colour is %s", name, i+1, c.Hex())
		}
	}

	outcome.Template = result.Selected.Source
	r.emit(status.Process, "%s uses template %s", name, filepath.Base(result.Selected.Source))

	out, err := r.layout.Output(path)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if err := r.deps.Compositor.Composite(path, result.Selected.Source, out); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Output = out
	return outcome
}

// reject copies a failed photo unmodified to the error folder.
func (r *run) reject(path string, outcome *Outcome) {
	dst, err := r.layout.Error(path)
	if err == nil {
		err = r.deps.Copy(path, dst)
	}
	if err != nil {
		r.emit(status.Error, "Failed to copy %s to the error folder: %v", filepath.Base(path), err)
		return
	}
	outcome.Output = dst
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
