package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/NikitaDmitryuk/ani-dl/internal/downloader"
	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
)

const (
	updateTimeout  = 3 * time.Minute
	checkTimeout   = 15 * time.Second
	outputTailSize = 512
)

// Check asks the binary for its version. A binary that cannot be found is
// reported as ErrToolMissing.
func (r *Runner) Check(ctx context.Context) (string, error) {
	out, err := r.runTool(ctx, r.checkTimeout, "--version")
	if err != nil {
		return "", err
	}
	version, _, _ := strings.Cut(out, "\n")
	logutils.Log.WithFields(map[string]any{
		"binary":  r.binaryPath,
		"version": version,
	}).Debug("yt-dlp available")
	return version, nil
}

// Update runs the self-updater under its own timeout.
func (r *Runner) Update(ctx context.Context) error {
	started := time.Now()
	out, err := r.runTool(ctx, r.updateTimeout, "-U")
	if err != nil {
		return err
	}
	logutils.Log.WithFields(map[string]any{
		"binary":   r.binaryPath,
		"output":   lastLine(out),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("yt-dlp update check completed")
	return nil
}

func (r *Runner) runTool(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(toolCtx, r.binaryPath, args...).CombinedOutput()
	out := strings.TrimSpace(string(output))
	command := strings.Join(append([]string{r.binaryPath}, args...), " ")

	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s: %w", downloader.ErrToolMissing, r.binaryPath, err)
	case toolCtx.Err() != nil:
		return "", fmt.Errorf("%w: %s: %w", downloader.ErrToolFailed, command, toolCtx.Err())
	case out != "":
		return "", fmt.Errorf("%w: %s: %w: %s", downloader.ErrToolFailed, command, err, tail(out))
	default:
		return "", fmt.Errorf("%w: %s: %w", downloader.ErrToolFailed, command, err)
	}
}

func lastLine(out string) string {
	if i := strings.LastIndexByte(out, '\n'); i >= 0 {
		return out[i+1:]
	}
	return out
}

func tail(out string) string {
	if len(out) <= outputTailSize {
		return out
	}
	return "..." + out[len(out)-outputTailSize:]
}
