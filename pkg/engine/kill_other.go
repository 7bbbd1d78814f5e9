//go:build !unix

package engine

import (
	"os/exec"
	"time"
)

func configureKill(cmd *exec.Cmd) {
	cmd.WaitDelay = 5 * time.Second
}
