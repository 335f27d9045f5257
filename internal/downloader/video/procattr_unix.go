//go:build unix

package ytdlp

import (
	"os/exec"
	"syscall"
)

// killProcessGroup puts the child in its own process group and makes context
// cancellation kill the whole group, so helpers such as ffmpeg that share
// the stdout pipe die with it.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
