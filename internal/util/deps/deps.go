package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"av1studio/internal/model"
	"av1studio/internal/util"
)

// ErrNotFound marks a required binary that could not be located.
var ErrNotFound = errors.New("dependency not found")

// SvtAv1Binary is the standalone SVT-AV1 encoder av1an drives.
const SvtAv1Binary = "SvtAv1EncApp"

// FindAv1an returns the path to av1an-verbosity.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindAv1an(customPath string) (string, error) {
	if customPath != "" {
		if Exists(customPath) {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: no av1an at %q", ErrNotFound, customPath)
	}
	if p, err := exec.LookPath(model.DefaultExecutable); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find %s in PATH, install it or pass --av1an-path", ErrNotFound, model.DefaultExecutable)
}

// FindSvtAv1 returns the path to SvtAv1EncApp in PATH.
func FindSvtAv1() (string, error) {
	if p, err := exec.LookPath(SvtAv1Binary); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find %s in PATH", ErrNotFound, SvtAv1Binary)
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// CanRun runs "<path> --version" and returns its first output line.
func CanRun(ctx context.Context, runner util.CmdRunner, path string) (string, error) {
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	res, err := runner.Run(ctx, util.CmdSpec{
		Path: path,
		Args: []string{"--version"},
	})
	if err != nil {
		return "", err
	}
	out := res.Stdout
	if len(out) == 0 {
		out = res.Stderr
	}
	return firstLine(string(out)), nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			return s[:i]
		}
	}
	return s
}
