package encoder

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput    = errors.New("input file is required")
	ErrMissingOutput   = errors.New("output file is required")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrOutputLocked    = errors.New("output is locked by another encode")
	ErrCanceled        = errors.New("encode canceled")
	ErrEncoderExit     = errors.New("av1an exited with an error")
	ErrEncoderFailed   = errors.New("av1an failed")
)

// ExitStatusError reports a non-zero av1an exit. It matches ErrEncoderExit.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("av1an exited with status %d", e.Code)
}

func (e *ExitStatusError) Is(target error) bool {
	return target == ErrEncoderExit
}
