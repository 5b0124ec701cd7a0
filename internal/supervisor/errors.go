package supervisor

import "errors"

var (
	// ErrSpawn wraps failures to start the child process.
	ErrSpawn = errors.New("could not start process")
	// ErrStalled is the Failed outcome's error when no output arrived within IdleTimeout.
	ErrStalled = errors.New("process produced no output within the idle timeout")
)
