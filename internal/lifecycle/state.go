package lifecycle

import (
	"errors"

	"recoder/internal/services"
)

// State is a position in the per-file lifecycle.
type State string

const (
	StateDiscovered  State = "discovered"
	StatePlanning    State = "planning"
	StateEncoding    State = "encoding"
	StateEncodedTemp State = "encoded_temp"
	StateFinalized   State = "finalized"
	StateArchived    State = "archived"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateArchived || s == StateFailed
}

// Reason explains a failed state.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonAlreadyExists Reason = "already_exists"
	ReasonLayout        Reason = "layout"
	ReasonProbe         Reason = "probe"
	ReasonEncode        Reason = "encode"
	ReasonFinalize      Reason = "finalize"
	ReasonArchive       Reason = "archive"
)

// ReasonFor maps an error to the failure reason its marker implies. Stage
// markers are checked before ErrDestinationExists so a no-clobber refusal
// during finalize or archive keeps the stage it happened in.
func ReasonFor(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, services.ErrArchival):
		return ReasonArchive
	case errors.Is(err, services.ErrFinalize):
		return ReasonFinalize
	case errors.Is(err, services.ErrEncode):
		return ReasonEncode
	case errors.Is(err, services.ErrProbe):
		return ReasonProbe
	case errors.Is(err, services.ErrValidation):
		return ReasonLayout
	case errors.Is(err, services.ErrDestinationExists):
		return ReasonAlreadyExists
	default:
		return ReasonEncode
	}
}
