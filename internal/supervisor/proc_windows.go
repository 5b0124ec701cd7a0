//go:build windows

package supervisor

import (
	"errors"
	"os/exec"
)

func setProcAttr(*exec.Cmd) {}

// Windows has no SIGINT for child processes; callers fall back to killGroup.
func interruptGroup(*exec.Cmd) error {
	return errors.New("interrupt not supported on windows")
}

func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
