package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool      = errors.New("external tool error")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrNotFound          = errors.New("not found")
	ErrProbe             = errors.New("probe error")
	ErrNoMatchingTracks  = errors.New("no matching tracks")
	ErrIncompleteHDR     = errors.New("incomplete hdr metadata")
	ErrDestinationExists = errors.New("destination exists")
	ErrEncode            = errors.New("encode error")
	ErrFinalize          = errors.New("finalize error")
	ErrArchival          = errors.New("archival error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// NeedsManualReview reports whether a failure left the filesystem in a state
// that a later run cannot reconcile by itself.
func NeedsManualReview(err error) bool {
	return errors.Is(err, ErrArchival)
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
