//go:build unix

package engine

import (
	"os/exec"
	"syscall"
	"time"
)

// configureKill runs the engine in its own process group and kills the whole
// group on cancellation, since the entry script usually forks the real worker.
func configureKill(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second
}
