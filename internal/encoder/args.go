package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"av1studio/internal/model"
	"av1studio/internal/util"
)

// BuildOptions tweak command construction beyond what EncodingSettings holds.
type BuildOptions struct {
	// KeepColorWithCustomParams appends the color description flags to a
	// custom parameter string instead of dropping them.
	KeepColorWithCustomParams bool
}

// Executable returns the av1an binary to invoke: the override if set,
// otherwise av1an-verbosity resolved from PATH.
func Executable(s model.EncodingSettings) string {
	if s.Av1anPath != "" {
		return s.Av1anPath
	}
	return model.DefaultExecutable
}

// BuildArgs constructs the av1an argument list. Flag order matters to av1an
// and is fixed. Missing input or output is not checked here; see Check.
func BuildArgs(s model.EncodingSettings, opts BuildOptions) []string {
	var args []string
	if s.Input != "" {
		args = append(args, "-i", s.Input)
	}
	if s.Output != "" {
		args = append(args, "-o", s.Output)
	}
	if s.ScenesFile != "" {
		args = append(args, "--scenes", s.ScenesFile)
	}
	if s.ZonesFile != "" {
		args = append(args, "--zones", s.ZonesFile)
	}

	args = append(args,
		"--verbose-frame-info",
		"--split-method", "av-scenechange",
		"-c", valueOr(s.Concat, model.DefaultConcat),
		"-m", s.SourceLibrary.Code(),
	)

	if s.HasScale() {
		args = append(args, "-f", scaleFilter(s.Width, s.Height))
	}

	args = append(args, "--pix-format", s.PixelFormat.Code(), "-e", "svt-av1")

	if s.CustomParams != "" {
		v := s.CustomParams
		if opts.KeepColorWithCustomParams {
			v += " " + colorParams(s)
		}
		args = append(args, "-v", v)
	} else {
		args = append(args, "--force", "-v", VideoParams(s))
	}

	args = append(args,
		"--set-thread-affinity", model.FormatOptionalInt(s.ThreadAffinity),
		"-w", model.FormatOptionalInt(s.Workers),
	)
	return args
}

// VideoParams synthesizes the SVT-AV1 parameter block passed through -v.
func VideoParams(s model.EncodingSettings) string {
	return fmt.Sprintf("--tune 2 --keyint 1 --lp 2 --irefresh-type 2 --crf %s --preset %s --film-grain %s %s",
		model.FormatCRF(s.CRF),
		strconv.Itoa(s.Preset),
		s.FilmGrain,
		colorParams(s),
	)
}

func colorParams(s model.EncodingSettings) string {
	return strings.Join([]string{
		"--color-primaries", s.ColorPrimaries.Code(),
		"--transfer-characteristics", s.TransferCharacteristics.Code(),
		"--matrix-coefficients", s.MatrixCoefficients.Code(),
		"--color-range", s.ColorRange.Code(),
	}, " ")
}

// scaleFilter is handed to av1an's -f as a single ffmpeg filter argument.
func scaleFilter(w, h int) string {
	return fmt.Sprintf("-vf scale=%d:%d:flags=bicubic:param0=0:param1=1/2", w, h)
}

// CommandLine renders exe and args as a copy-pasteable shell command.
func CommandLine(exe string, args []string) string {
	return util.ShellQuote(exe, args)
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
