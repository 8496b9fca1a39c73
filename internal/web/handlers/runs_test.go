package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/photo-stamper/internal/pipeline"
)

// emptyRunner finishes every run immediately because it finds no templates.
// A non-nil gate blocks template listing until it is closed.
func emptyRunner(gate chan struct{}) *pipeline.Runner {
	return pipeline.NewRunner(pipeline.Deps{
		ListTemplates: func(string) ([]string, error) {
			if gate != nil {
				<-gate
			}
			return nil, nil
		},
	})
}

func startRun(t *testing.T, h *RunsHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/v1/runs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	h.Start(recorder, req)
	return recorder
}

func waitForStatus(t *testing.T, job *RunJob, want JobStatus) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job.GetStatus() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s did not reach %s, status %s", job.ID, want, job.GetStatus())
}

func TestRunsHandler_Start_InvalidJSON(t *testing.T) {
	h := NewRunsHandler(testConfig(), emptyRunner(nil), NewJobManager())

	recorder := startRun(t, h, `{invalid json}`)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestRunsHandler_Start_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing dirs", `{}`, "image_dir and template_dir are required"},
		{"unknown policy", `{"image_dir":"/a","template_dir":"/b","policy":"median"}`, "unknown policy: median"},
		{"unknown quantizer", `{"image_dir":"/a","template_dir":"/b","quantizer":"octree"}`, "unknown quantizer: octree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRunsHandler(testConfig(), emptyRunner(nil), NewJobManager())
			recorder := startRun(t, h, tt.body)
			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertJSONError(t, recorder, tt.want)
		})
	}
}

func TestRunsHandler_StartAndGet(t *testing.T) {
	jobs := NewJobManager()
	h := NewRunsHandler(testConfig(), emptyRunner(nil), jobs)

	recorder := startRun(t, h, `{"image_dir":"/shoot/images","template_dir":"/shoot/templates","policy":"max"}`)
	assertStatusCode(t, recorder, http.StatusAccepted)
	assertContentType(t, recorder, "application/json")

	var resp map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	job := jobs.GetJob(resp["run_id"])
	if job == nil {
		t.Fatalf("run %q not registered", resp["run_id"])
	}
	waitForStatus(t, job, JobStatusCompleted)

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/runs/"+job.ID, nil), map[string]string{"runId": job.ID})
	recorder = httptest.NewRecorder()
	h.Get(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var view RunView
	if err := json.Unmarshal(recorder.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to parse run: %v", err)
	}
	if view.Status != JobStatusCompleted || view.Result == nil || view.CompletedAt == nil {
		t.Errorf("unexpected run view %+v", view)
	}
	if view.Options.Policy != "max" {
		t.Errorf("expected policy option max, got %q", view.Options.Policy)
	}
}

func TestRunsHandler_Get_NotFound(t *testing.T) {
	h := NewRunsHandler(testConfig(), emptyRunner(nil), NewJobManager())

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/runs/nope", nil), map[string]string{"runId": "nope"})
	recorder := httptest.NewRecorder()
	h.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "run not found")
}

func TestRunsHandler_Start_Conflict(t *testing.T) {
	gate := make(chan struct{})
	runner := emptyRunner(gate)
	jobs := NewJobManager()
	h := NewRunsHandler(testConfig(), runner, jobs)

	recorder := startRun(t, h, `{"image_dir":"/shoot/images","template_dir":"/shoot/templates"}`)
	assertStatusCode(t, recorder, http.StatusAccepted)

	deadline := time.Now().Add(5 * time.Second)
	for !runner.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	recorder = startRun(t, h, `{"image_dir":"/shoot/images","template_dir":"/shoot/templates"}`)
	assertStatusCode(t, recorder, http.StatusConflict)
	assertJSONError(t, recorder, "a run is already in progress")

	close(gate)
	for _, job := range jobs.ListJobs() {
		waitForStatus(t, job, JobStatusCompleted)
	}
}

func TestRunsHandler_Start_ConcurrentRequests(t *testing.T) {
	gate := make(chan struct{})
	jobs := NewJobManager()
	h := NewRunsHandler(testConfig(), emptyRunner(gate), jobs)

	const requests = 8
	codes := make(chan int, requests)
	var wg sync.WaitGroup
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest("POST", "/api/v1/runs",
				bytes.NewBufferString(`{"image_dir":"/shoot/images","template_dir":"/shoot/templates"}`))
			recorder := httptest.NewRecorder()
			h.Start(recorder, req)
			codes <- recorder.Code
		}()
	}
	wg.Wait()
	close(codes)

	accepted, conflicts := 0, 0
	for code := range codes {
		switch code {
		case http.StatusAccepted:
			accepted++
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if accepted != 1 || conflicts != requests-1 {
		t.Errorf("expected 1 accepted and %d conflicts, got %d and %d", requests-1, accepted, conflicts)
	}
	if n := len(jobs.ListJobs()); n != 1 {
		t.Errorf("expected 1 registered run, got %d", n)
	}

	close(gate)
	for _, job := range jobs.ListJobs() {
		waitForStatus(t, job, JobStatusCompleted)
	}
}

func TestRunsHandler_Events_ReplaysFinishedRun(t *testing.T) {
	jobs := NewJobManager()
	h := NewRunsHandler(testConfig(), emptyRunner(nil), jobs)

	recorder := startRun(t, h, `{"image_dir":"/shoot/images","template_dir":"/shoot/templates"}`)
	var resp map[string]string
	_ = json.Unmarshal(recorder.Body.Bytes(), &resp)
	job := jobs.GetJob(resp["run_id"])
	waitForStatus(t, job, JobStatusCompleted)

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/runs/"+job.ID+"/events", nil), map[string]string{"runId": job.ID})
	recorder = httptest.NewRecorder()
	h.Events(recorder, req)

	assertContentType(t, recorder, "text/event-stream")
	body := recorder.Body.String()
	for _, want := range []string{
		"event: process\n",
		"Parsing templates...",
		"event: error\n",
		"No template files found",
		"event: status\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected stream to contain %q\n%s", want, body)
		}
	}
}

func TestRunsHandler_List(t *testing.T) {
	jobs := NewJobManager()
	h := NewRunsHandler(testConfig(), emptyRunner(nil), jobs)

	done := jobs.CreateJob("done", RunOptions{})
	done.finish(&pipeline.RunResult{}, nil)
	jobs.CreateJob("pending", RunOptions{})

	recorder := httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest("GET", "/api/v1/runs?active=true", nil))
	assertStatusCode(t, recorder, http.StatusOK)

	var views []RunView
	if err := json.Unmarshal(recorder.Body.Bytes(), &views); err != nil {
		t.Fatalf("failed to parse list: %v", err)
	}
	if len(views) != 1 || views[0].ID != "pending" {
		t.Errorf("expected only the pending run, got %+v", views)
	}
}

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()
	HealthCheck(recorder, httptest.NewRequest("GET", "/api/v1/health", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")
}
