package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/OCAP2/pinmap/pkg/core"
)

// Failure kinds. Every error returned by Client matches exactly one of them with errors.Is.
var (
	ErrTransport = errors.New("transport failure")
	ErrRejected  = errors.New("server rejected request")
)

// Error describes a failed pin store call.
type Error struct {
	Op     string // "list", "create", "rename"
	Kind   error  // ErrTransport or ErrRejected
	Status int    // HTTP status, 0 if no response was received
	Body   string // raw response body, if any
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s pin: %v", e.Op, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if msg := e.Message(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Message returns the server's error payload: the "error" field of a JSON body when
// present, otherwise the trimmed body text.
func (e *Error) Message() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return ""
	}
	var status core.StatusResponse
	if err := json.Unmarshal([]byte(body), &status); err == nil && status.Error != "" {
		return status.Error
	}
	return body
}

func transportError(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrTransport, Err: err}
}

func rejectedError(op string, status int, body string, err error) *Error {
	return &Error{Op: op, Kind: ErrRejected, Status: status, Body: body, Err: err}
}
