package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-stamper/internal/colour"
	"github.com/kozaktomas/photo-stamper/internal/config"
	"github.com/kozaktomas/photo-stamper/internal/locator"
	"github.com/kozaktomas/photo-stamper/internal/matcher"
	"github.com/kozaktomas/photo-stamper/internal/pipeline"
)

// RunsHandler starts stamping runs and reports on them.
type RunsHandler struct {
	config *config.Config
	runner *pipeline.Runner
	jobs   *JobManager
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(cfg *config.Config, runner *pipeline.Runner, jobs *JobManager) *RunsHandler {
	return &RunsHandler{
		config: cfg,
		runner: runner,
		jobs:   jobs,
	}
}

// Start starts a new run in the background.
func (h *RunsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req RunOptions
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.ImageDir == "" || req.TemplateDir == "" {
		respondError(w, http.StatusBadRequest, "image_dir and template_dir are required")
		return
	}

	opts, err := h.runOptions(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reservation, err := h.runner.Reserve()
	if errors.Is(err, pipeline.ErrRunInProgress) {
		respondError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	job := h.jobs.CreateJob(uuid.New().String(), req)
	opts.Reporter = job
	opts.OnProgress = job.setProgress

	go h.run(job, reservation, opts)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"run_id": job.ID,
		"status": string(JobStatusPending),
	})
}

func (h *RunsHandler) run(job *RunJob, reservation *pipeline.Reservation, opts pipeline.Options) {
	job.setRunning()
	res, err := reservation.Run(opts)
	if err != nil {
		log.Printf("Run %s failed: %s", job.ID, sanitizeForLog(err.Error()))
	}
	job.finish(res, err)
}

// runOptions merges request overrides into the configured defaults.
func (h *RunsHandler) runOptions(req RunOptions) (pipeline.Options, error) {
	policyName := h.config.Matching.Policy
	if req.Policy != "" {
		policyName = req.Policy
	}
	policy, err := matcher.ParsePolicy(policyName)
	if err != nil {
		return pipeline.Options{}, err
	}

	quantizerName := h.config.Matching.Quantizer
	if req.Quantizer != "" {
		quantizerName = req.Quantizer
	}
	q, err := colour.NewQuantizer(quantizerName)
	if err != nil {
		return pipeline.Options{}, err
	}

	loc, err := locator.New(h.config.Matching.Locator)
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		ImageDir:    req.ImageDir,
		TemplateDir: req.TemplateDir,
		OutputDir:   h.config.Output.Dir,
		ErrorDir:    h.config.Output.ErrorDir,
		Policy:      policy,
		Quantizer:   q,
		Locator:     loc,
		LogFile:     h.config.Output.LogFile,
	}, nil
}

// Get returns the state of one run.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	job := h.jobs.GetJob(chi.URLParam(r, "runId"))
	if job == nil {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// List returns all runs, newest first. ?active=true limits it to unfinished runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	views := make([]RunView, 0)
	for _, job := range h.jobs.ListJobs() {
		view := job.Snapshot()
		if activeOnly && isJobTerminal(view.Status) {
			continue
		}
		views = append(views, view)
	}
	slices.SortFunc(views, func(a, b RunView) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	respondJSON(w, http.StatusOK, views)
}

// Events streams the status events of a run via SSE.
func (h *RunsHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamRunEvents(w, r, h.jobs)
}
