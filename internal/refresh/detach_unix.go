//go:build unix

package refresh

import (
	"os/exec"
	"syscall"
)

// detach starts cmd in its own session so a hangup or a signal to the
// parent's process group does not reach it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
