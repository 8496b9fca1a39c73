package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupSSEConnection validates the request, finds the job, and sets up SSE headers.
// Returns the job, flusher, and true on success. On failure, writes an error response and returns zero values with false.
func setupSSEConnection(w http.ResponseWriter, r *http.Request, jobs *JobManager) (*RunJob, http.Flusher, bool) {
	jobID := chi.URLParam(r, "runId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing run ID")
		return nil, nil, false
	}

	job := jobs.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "run not found")
		return nil, nil, false
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return job, flusher, true
}

// streamRunEvents replays the events a run has already emitted, then streams
// new ones until the run finishes or the client disconnects. A final
// "status" event carries the job state.
func streamRunEvents(w http.ResponseWriter, r *http.Request, jobs *JobManager) {
	job, flusher, ok := setupSSEConnection(w, r, jobs)
	if !ok {
		return
	}

	history, eventCh := job.Subscribe()
	defer job.Unsubscribe(eventCh)

	for _, event := range history {
		sendSSEEvent(w, flusher, string(event.Status), event)
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				sendSSEEvent(w, flusher, "status", job.Snapshot())
				return
			}
			sendSSEEvent(w, flusher, string(event.Status), event)
		}
	}
}
