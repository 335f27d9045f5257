package manager

import (
	"sync"
	"sync/atomic"

	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
)

// Phase is the batch-level lifecycle.
type Phase int32

const (
	PhaseAssembling Phase = iota
	PhaseDispatched
	PhaseDraining
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAssembling:
		return "assembling"
	case PhaseDispatched:
		return "dispatched"
	case PhaseDraining:
		return "draining"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Tracker holds the shared state of one batch: the completion counter and
// one progress record per task. It lives exactly as long as the batch.
type Tracker struct {
	total     int
	completed atomic.Int64
	phase     atomic.Int32
	tasks     []*TaskHandle
}

func NewTracker(total int) *Tracker {
	t := &Tracker{
		total: total,
		tasks: make([]*TaskHandle, total),
	}
	for i := range t.tasks {
		t.tasks[i] = &TaskHandle{tracker: t, progress: downloader.TaskProgress{Index: i}}
	}
	return t
}

func (t *Tracker) Total() int { return t.total }

func (t *Tracker) Completed() int { return int(t.completed.Load()) }

func (t *Tracker) Phase() Phase { return Phase(t.phase.Load()) }

func (t *Tracker) setPhase(p Phase) { t.phase.Store(int32(p)) }

// Task returns the handle owning the progress record at index.
func (t *Tracker) Task(index int) *TaskHandle { return t.tasks[index] }

// Snapshot copies every task's progress, in dispatch order.
func (t *Tracker) Snapshot() []downloader.TaskProgress {
	out := make([]downloader.TaskProgress, len(t.tasks))
	for i, h := range t.tasks {
		out[i] = h.Progress()
	}
	return out
}

// TaskHandle is the ProgressSink of a single task.
type TaskHandle struct {
	tracker *Tracker

	mu       sync.RWMutex
	progress downloader.TaskProgress
}

func (h *TaskHandle) Progress() downloader.TaskProgress {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.progress
}

func (h *TaskHandle) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.progress.State == downloader.StatePending {
		h.progress.State = downloader.StateRunning
	}
}

func (h *TaskHandle) SetPercent(percent int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.progress.State.IsTerminal() {
		return
	}
	h.progress.Percent = percent
}

func (h *TaskHandle) SetRate(rate string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.progress.State.IsTerminal() {
		return
	}
	h.progress.Rate = rate
}

// Succeed increments the batch counter once; later calls return the recorded value.
func (h *TaskHandle) Succeed() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.progress.State.IsTerminal() {
		return h.progress.Done
	}
	h.progress.Done = int(h.tracker.completed.Add(1))
	h.progress.State = downloader.StateSucceeded
	h.progress.Percent = 100
	h.progress.Rate = ""
	return h.progress.Done
}

func (h *TaskHandle) Fail(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.progress.State.IsTerminal() {
		return
	}
	h.progress.State = downloader.StateFailed
	h.progress.Reason = reason
	h.progress.Rate = ""
}

var (
	_ downloader.ProgressSink = (*TaskHandle)(nil)
	_ downloader.BatchView    = (*Tracker)(nil)
)
