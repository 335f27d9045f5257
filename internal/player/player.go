package player

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/NikitaDmitryuk/ani-dl/internal/logutils"
	"github.com/NikitaDmitryuk/ani-dl/internal/utils"
)

const (
	defaultBinary  = "mpv"
	maxOutputChars = 512
)

// Player streams one episode with an external media player.
type Player struct {
	binaryPath string
}

func NewPlayer(binaryPath string) *Player {
	if binaryPath == "" {
		binaryPath = defaultBinary
	}
	return &Player{binaryPath: binaryPath}
}

// Play blocks until the player exits. The player's output is captured and
// only surfaces in the returned error.
func (p *Player) Play(ctx context.Context, source string) error {
	cmd := exec.CommandContext(ctx, p.binaryPath, source)

	logutils.Log.WithFields(map[string]any{
		"command": p.binaryPath,
		"source":  source,
	}).Debug("Starting player")

	output, err := cmd.CombinedOutput()
	if err != nil {
		logutils.Log.WithError(err).WithField("source", source).Warn("Player exited with error")
		return utils.WrapError(fmt.Errorf("%w: %w", utils.ErrExternalServiceError, err), "player failed", map[string]any{
			"command": p.binaryPath,
			"source":  source,
			"output":  tail(string(output), maxOutputChars),
		})
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
