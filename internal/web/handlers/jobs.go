package handlers

import (
	"sync"
	"time"

	"github.com/kozaktomas/photo-stamper/internal/pipeline"
	"github.com/kozaktomas/photo-stamper/internal/status"
)

// JobStatus represents the status of an async run.
type JobStatus string

// JobStatus constants define the lifecycle states of an async run.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// RunOptions are the request parameters a run was started with.
type RunOptions struct {
	ImageDir    string `json:"image_dir"`
	TemplateDir string `json:"template_dir"`
	Policy      string `json:"policy,omitempty"`
	Quantizer   string `json:"quantizer,omitempty"`
}

// RunJob is a stamping run started over HTTP.
type RunJob struct {
	*status.Broadcaster

	ID              string
	Status          JobStatus
	TotalImages     int
	ProcessedImages int
	Error           string
	StartedAt       time.Time
	CompletedAt     *time.Time
	Options         RunOptions
	Result          *pipeline.RunResult

	mu sync.RWMutex
}

// RunView is the JSON form of a RunJob.
type RunView struct {
	ID              string              `json:"id"`
	Status          JobStatus           `json:"status"`
	TotalImages     int                 `json:"total_images"`
	ProcessedImages int                 `json:"processed_images"`
	Error           string              `json:"error,omitempty"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	Options         RunOptions          `json:"options"`
	Result          *pipeline.RunResult `json:"result,omitempty"`
}

// Snapshot returns a consistent copy of the job state for serialization.
func (j *RunJob) Snapshot() RunView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return RunView{
		ID:              j.ID,
		Status:          j.Status,
		TotalImages:     j.TotalImages,
		ProcessedImages: j.ProcessedImages,
		Error:           j.Error,
		StartedAt:       j.StartedAt,
		CompletedAt:     j.CompletedAt,
		Options:         j.Options,
		Result:          j.Result,
	}
}

// GetStatus returns the current job status.
func (j *RunJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

func (j *RunJob) setRunning() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = JobStatusRunning
}

func (j *RunJob) setProgress(p pipeline.ProgressInfo) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.TotalImages = p.Total
	j.ProcessedImages = p.Current
}

// finish records the outcome and closes the event stream.
func (j *RunJob) finish(res *pipeline.RunResult, err error) {
	j.mu.Lock()
	now := time.Now()
	j.CompletedAt = &now
	if err != nil {
		j.Status = JobStatusFailed
		j.Error = err.Error()
	} else {
		j.Status = JobStatusCompleted
		j.Result = res
	}
	j.mu.Unlock()

	j.Broadcaster.Close()
}

// isJobTerminal returns true if the job status is a terminal state
func isJobTerminal(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

// JobManager keeps the runs started by this server.
type JobManager struct {
	jobs map[string]*RunJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*RunJob),
	}
}

// CreateJob registers a pending run.
func (m *JobManager) CreateJob(id string, options RunOptions) *RunJob {
	job := &RunJob{
		Broadcaster: status.NewBroadcaster(),
		ID:          id,
		Status:      JobStatusPending,
		StartedAt:   time.Now(),
		Options:     options,
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *RunJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []*RunJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*RunJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}
