package manager

import (
	"time"

	"github.com/google/uuid"

	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
)

const downloadDirMode = 0o755

// Monitor displays a running batch. Start failing aborts the batch before any task runs.
type Monitor interface {
	Start(view downloader.BatchView) error
	Stop()
}

// Batch is an ordered list of episode sources downloaded into one directory.
type Batch struct {
	ID      string
	Title   string
	Dir     string
	Sources []string
}

func NewBatch(title, dir string, sources []string) Batch {
	return Batch{
		ID:      uuid.New().String(),
		Title:   title,
		Dir:     dir,
		Sources: sources,
	}
}

// Result carries one outcome per source, in input order.
type Result struct {
	BatchID    string
	Title      string
	Dir        string
	Outcomes   []downloader.Outcome
	Completed  int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Result) Failed() []downloader.Outcome {
	var failed []downloader.Outcome
	for _, o := range r.Outcomes {
		if o.State == downloader.StateFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
