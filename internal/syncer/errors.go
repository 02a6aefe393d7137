package syncer

import (
	"errors"

	"github.com/OCAP2/pinmap/internal/api"
)

// Flow failure kinds.
var (
	// ErrTransport means the pin store could not be reached.
	ErrTransport = api.ErrTransport
	// ErrRejected means the pin store answered with a failure.
	ErrRejected = api.ErrRejected
	// ErrValidationSkip means a rename was submitted with a blank name and dropped.
	ErrValidationSkip = errors.New("blank name, rename skipped")
	// ErrUnknownPin means the flow named a pin that is not on the board.
	ErrUnknownPin = errors.New("unknown pin")
	// ErrNotEditing means a name was submitted for a card that is not in edit mode.
	ErrNotEditing = errors.New("card is not being edited")
)

// outcome labels an error for metrics and logs.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidationSkip):
		return "skipped"
	case errors.Is(err, ErrUnknownPin):
		return "unknown_pin"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}

// serverMessage extracts the text to show the user for a failed call.
func serverMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
		if apiErr.Err != nil {
			return apiErr.Err.Error()
		}
		return apiErr.Kind.Error()
	}
	return err.Error()
}
