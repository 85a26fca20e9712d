package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures to spawn or run an external process
	// (ffmpeg, ffprobe) or a nonzero exit from one.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks invalid configuration such as an unknown model
	// variant or language identifier. Raised before any resource is
	// allocated for the failing operation.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks rejected input (missing file, unsupported
	// extension).
	ErrValidation = errors.New("validation error")
	// ErrFileSystem marks directory or file write failures, which are fatal
	// to the affected job.
	ErrFileSystem = errors.New("filesystem error")
	// ErrTransient marks recoverable failures such as a translation request
	// that can be skipped without aborting the job.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
