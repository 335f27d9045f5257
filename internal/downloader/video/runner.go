package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
)

const (
	defaultYtdlpBinary = "yt-dlp"
	maxLineSize        = 1024 * 1024

	reasonExitFailure = "exit failure"
	reasonCanceled    = "canceled"
)

// Runner downloads one episode per call by running yt-dlp in the task directory.
type Runner struct {
	binaryPath    string
	checkTimeout  time.Duration
	updateTimeout time.Duration
}

func NewRunner(binaryPath string) *Runner {
	if binaryPath == "" {
		binaryPath = defaultYtdlpBinary
	}
	return &Runner{
		binaryPath:    binaryPath,
		checkTimeout:  checkTimeout,
		updateTimeout: updateTimeout,
	}
}

func buildArgs(source string) []string {
	return []string{"--newline", "--progress", source}
}

// Run spawns the downloader once and reports exactly one terminal state on sink.
func (r *Runner) Run(ctx context.Context, task downloader.Task, sink downloader.ProgressSink) downloader.Outcome {
	log := logutils.Log.WithFields(map[string]any{
		"episode": task.Number(),
		"source":  task.Source,
	})
	outcome := downloader.Outcome{Index: task.Index, Source: task.Source}

	cmd := exec.CommandContext(ctx, r.binaryPath, buildArgs(task.Source)...)
	cmd.Dir = task.Dir
	killProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		reason := "spawn error: " + err.Error()
		log.WithError(err).Warn("Failed to start yt-dlp")
		sink.Fail(reason)
		outcome.State = downloader.StateFailed
		outcome.Reason = reason
		outcome.Err = fmt.Errorf("%w: %w", downloader.ErrSpawn, err)
		return outcome
	}

	log.Debug("yt-dlp started")

	if readErr := consumeOutput(stdout, sink); readErr != nil {
		log.WithError(readErr).Warn("Failed to read yt-dlp output")
		// Unblock a child stuck writing to a pipe nobody reads anymore.
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		done := sink.Succeed()
		log.WithField("completed", done).Info("Episode downloaded")
		outcome.State = downloader.StateSucceeded
		return outcome
	}

	outcome.State = downloader.StateFailed
	if ctx.Err() != nil {
		outcome.Reason = reasonCanceled
		outcome.Err = fmt.Errorf("%w: %w", downloader.ErrCanceled, ctx.Err())
	} else {
		outcome.Reason = reasonExitFailure
		outcome.Err = fmt.Errorf("%w: %w", downloader.ErrExitFailure, waitErr)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		log = log.WithField("exit_code", exitErr.ExitCode())
	}
	log.WithError(waitErr).Warn("yt-dlp exited with error")
	sink.Fail(outcome.Reason)
	return outcome
}

// consumeOutput reads stdout line by line until EOF and forwards every progress signal.
func consumeOutput(stdout io.Reader, sink downloader.ProgressSink) error {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for scanner.Scan() {
		signal, ok := ParseProgressLine(scanner.Text())
		if !ok {
			continue
		}
		if signal.HasPercent {
			sink.SetPercent(ClampPercent(signal.Percent))
		}
		if signal.Rate != "" {
			sink.SetRate(signal.Rate)
		}
	}
	return scanner.Err()
}
