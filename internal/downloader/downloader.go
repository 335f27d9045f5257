package downloader

import (
	"context"
)

// State is the lifecycle position of one task.
type State int

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the state can no longer change.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Task is one episode download: a source handed to the external downloader
// and the directory it runs in.
type Task struct {
	Index  int
	Source string
	Dir    string
}

// Number is the 1-based episode number shown to the user.
func (t Task) Number() int { return t.Index + 1 }

// TaskProgress is a read-only snapshot of one task.
type TaskProgress struct {
	Index   int
	Percent int
	Rate    string
	State   State
	Reason  string
	// Done is the completed count observed when this task succeeded.
	Done int
}

// Outcome is the terminal classification of one task.
type Outcome struct {
	Index  int
	Source string
	State  State
	Reason string
	Err    error
}

// ProgressSink receives updates for exactly one task. Only the runner owning
// that task writes to it.
type ProgressSink interface {
	SetPercent(percent int)
	SetRate(rate string)
	// Succeed marks the task done and returns the completed count including it.
	Succeed() int
	Fail(reason string)
}

// BatchView is what a display layer may read while a batch runs.
type BatchView interface {
	Total() int
	Completed() int
	Snapshot() []TaskProgress
}

type TaskRunner interface {
	Run(ctx context.Context, task Task, sink ProgressSink) Outcome
}

// Tool is the external downloader binary outside of any batch.
type Tool interface {
	Check(ctx context.Context) (version string, err error)
	Update(ctx context.Context) error
}
