package recipe

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// StepState records what a step did for one run.
type StepState struct {
	Name         string     `json:"name"`
	Processor    string     `json:"processor"`
	Status       Status     `json:"status"`
	OutputRunIDs []string   `json:"output_run_ids,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// RunState records the processing of one run.
type RunState struct {
	RunID  string      `json:"run_id"`
	Status Status      `json:"status"`
	Steps  []StepState `json:"steps"`
}

// Processed reports whether at least one step ran for the run.
func (r *RunState) Processed() bool {
	for _, s := range r.Steps {
		if s.Status == StatusCompleted {
			return true
		}
	}
	return false
}

// Report describes one execution of a recipe. It only lists the runs
// reached before a failure.
type Report struct {
	ID        string     `json:"id"`
	Recipe    string     `json:"recipe"`
	Status    Status     `json:"status"`
	Runs      []RunState `json:"runs"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func newReport(recipe string, now time.Time) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Recipe:    recipe,
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Report) startRun(id string, now time.Time) *RunState {
	r.Runs = append(r.Runs, RunState{RunID: id, Status: StatusRunning})
	r.UpdatedAt = now
	return &r.Runs[len(r.Runs)-1]
}

func (r *Report) finish(err error, now time.Time) {
	r.Status = StatusCompleted
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
	r.UpdatedAt = now
}

// ProcessedRuns returns the ids of the runs for which at least one step ran.
func (r *Report) ProcessedRuns() []string {
	var ids []string
	for i := range r.Runs {
		if r.Runs[i].Processed() {
			ids = append(ids, r.Runs[i].RunID)
		}
	}
	return ids
}

// Failed reports whether the execution stopped on an error.
func (r *Report) Failed() bool {
	return r.Status == StatusFailed
}
