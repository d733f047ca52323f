package encoding

import (
	"strings"

	"recoder/internal/services"
)

// EncodeError describes a failed ffmpeg run.
type EncodeError struct {
	Message    string
	Invocation []string
	Err        error
}

func (e *EncodeError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "encode failed"
	}
	return "ffmpeg: " + msg
}

// Unwrap exposes both the encode marker and the underlying process error.
func (e *EncodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrEncode}
	}
	return []error{services.ErrEncode, e.Err}
}

// CommandLine renders the invocation for logs.
func (e *EncodeError) CommandLine() string {
	parts := make([]string, 0, len(e.Invocation))
	for _, arg := range e.Invocation {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}
