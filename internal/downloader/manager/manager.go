package manager

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NikitaDmitryuk/ani-dl/internal/config"
	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

const reasonCanceled = "canceled"

// DownloadManager runs batches on a fixed-size worker pool.
type DownloadManager struct {
	runner  downloader.TaskRunner
	workers int
	monitor Monitor
	now     func() time.Time
}

type Option func(*DownloadManager)

// WithMonitor attaches a display that follows every batch.
func WithMonitor(m Monitor) Option {
	return func(dm *DownloadManager) { dm.monitor = m }
}

func NewDownloadManager(runner downloader.TaskRunner, settings config.DownloadConfig, opts ...Option) *DownloadManager {
	workers := settings.MaxConcurrentDownloads
	if workers <= 0 {
		workers = config.DefaultMaxConcurrentDownloads
	}
	dm := &DownloadManager{
		runner:  runner,
		workers: workers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(dm)
	}
	return dm
}

func (dm *DownloadManager) Workers() int { return dm.workers }

// Run downloads every source of the batch and returns once all tasks are
// terminal. Only pre-flight problems are returned as errors; task failures
// are reported in Result.Outcomes.
func (dm *DownloadManager) Run(ctx context.Context, batch Batch) (*Result, error) {
	log := logutils.Log.WithFields(map[string]any{
		"batch_id": batch.ID,
		"title":    batch.Title,
		"episodes": len(batch.Sources),
		"workers":  dm.workers,
	})

	if len(batch.Sources) == 0 {
		return nil, fmt.Errorf("%w: %s", downloader.ErrEmptyBatch, batch.Title)
	}

	if err := os.MkdirAll(batch.Dir, downloadDirMode); err != nil {
		log.WithError(err).Error("Failed to create download directory")
		return nil, utils.WrapError(fmt.Errorf("%w: %w", downloader.ErrDirectory, err), "batch pre-flight failed", map[string]any{
			"dir": batch.Dir,
		})
	}

	tracker := NewTracker(len(batch.Sources))

	if dm.monitor != nil {
		if err := dm.monitor.Start(tracker); err != nil {
			log.WithError(err).Error("Failed to start progress display")
			return nil, fmt.Errorf("%w: %w", downloader.ErrProgressStyle, err)
		}
		defer dm.monitor.Stop()
	}

	result := &Result{
		BatchID:   batch.ID,
		Title:     batch.Title,
		Dir:       batch.Dir,
		Outcomes:  make([]downloader.Outcome, len(batch.Sources)),
		Total:     len(batch.Sources),
		StartedAt: dm.now(),
	}
	log.Info("Starting batch download")

	var pool errgroup.Group
	pool.SetLimit(dm.workers)
	tracker.setPhase(PhaseDispatched)

	for i, source := range batch.Sources {
		task := downloader.Task{Index: i, Source: source, Dir: batch.Dir}
		handle := tracker.Task(i)

		if ctx.Err() != nil {
			result.Outcomes[i] = cancelTask(task, handle)
			continue
		}

		i := i
		// Go blocks while all workers are busy, which keeps dispatch FIFO.
		pool.Go(func() error {
			result.Outcomes[i] = dm.runTask(ctx, task, handle)
			return nil
		})
	}

	tracker.setPhase(PhaseDraining)
	_ = pool.Wait()
	tracker.setPhase(PhaseComplete)

	result.Completed = tracker.Completed()
	result.FinishedAt = dm.now()

	log.WithFields(map[string]any{
		"completed": result.Completed,
		"failed":    len(result.Failed()),
		"duration":  result.Duration().String(),
	}).Info("Batch download finished")

	return result, nil
}

func (dm *DownloadManager) runTask(ctx context.Context, task downloader.Task, handle *TaskHandle) (outcome downloader.Outcome) {
	if ctx.Err() != nil {
		return cancelTask(task, handle)
	}

	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("panic: %v", r)
			logutils.Log.WithField("episode", task.Number()).Errorf("Download task panicked: %v", r)
			handle.Fail(reason)
			outcome = downloader.Outcome{
				Index:  task.Index,
				Source: task.Source,
				State:  downloader.StateFailed,
				Reason: reason,
				Err:    fmt.Errorf("%s", reason),
			}
		}
	}()

	handle.Start()
	outcome = dm.runner.Run(ctx, task, handle)
	return reconcile(outcome, handle)
}

// reconcile makes the outcome and the task's progress record agree on a terminal state.
func reconcile(outcome downloader.Outcome, handle *TaskHandle) downloader.Outcome {
	switch outcome.State {
	case downloader.StateSucceeded:
		handle.Succeed()
	case downloader.StateFailed:
		handle.Fail(outcome.Reason)
	default:
		outcome.State = downloader.StateFailed
		if outcome.Reason == "" {
			outcome.Reason = "no terminal state reported"
		}
		handle.Fail(outcome.Reason)
	}

	// A handle that was already terminal keeps its own classification.
	progress := handle.Progress()
	outcome.State = progress.State
	if progress.State == downloader.StateFailed {
		outcome.Reason = progress.Reason
	}
	return outcome
}

func cancelTask(task downloader.Task, handle *TaskHandle) downloader.Outcome {
	handle.Fail(reasonCanceled)
	return downloader.Outcome{
		Index:  task.Index,
		Source: task.Source,
		State:  downloader.StateFailed,
		Reason: reasonCanceled,
		Err:    downloader.ErrCanceled,
	}
}
