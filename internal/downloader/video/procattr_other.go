//go:build !unix

package ytdlp

import "os/exec"

func killProcessGroup(*exec.Cmd) {}
