package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies remote-call failures.
type ErrorKind int

const (
	// KindNetwork covers transport failures, timeouts and unclassified
	// server statuses.
	KindNetwork ErrorKind = iota
	// KindValidation means the server rejected submitted fields.
	KindValidation
	// KindNotFound means the target entity no longer exists server-side.
	KindNotFound
	// KindUpload means an image upload failed independently of other fields.
	KindUpload
)

// Error is the typed failure returned by Client operations.
type Error struct {
	Kind    ErrorKind
	Status  int                 // HTTP status when one was received, else 0
	Message string              // human-readable summary
	Fields  map[string][]string // per-field validation messages, when structured
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return "request failed"
}

func (e *Error) Unwrap() error { return e.cause }

// UserMessage renders the error for display. Field-keyed validation errors
// are joined into a single message; everything else falls back to a generic
// per-kind text.
func (e *Error) UserMessage() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
		}
		return strings.Join(parts, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindValidation:
		return "The server rejected the submitted fields."
	case KindNotFound:
		return "The item no longer exists on the server."
	case KindUpload:
		return "The image upload failed."
	default:
		return "Could not reach the server. Please retry."
	}
}

// IsNotFound reports whether err is a catalog not-found failure.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return hasKind(err, KindNetwork) }

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

func hasKind(err error, kind ErrorKind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

func networkErr(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "", cause: err}
}

// decodeAPIError converts an error response body into a typed Error.
// The API emits either DRF-style field maps {"nombre": ["msg", ...]}, a
// {"detail": "msg"} object, or nothing useful.
func decodeAPIError(status int, body []byte) *Error {
	e := &Error{Status: status}
	switch {
	case status == 404:
		e.Kind = KindNotFound
	case status >= 400 && status < 500:
		e.Kind = KindValidation
	default:
		e.Kind = KindNetwork
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		e.Message = fmt.Sprintf("server returned status %d", status)
		return e
	}

	if detail, ok := raw["detail"]; ok {
		var msg string
		if json.Unmarshal(detail, &msg) == nil && msg != "" {
			e.Message = msg
			return e
		}
	}
	if errMsg, ok := raw["error"]; ok {
		var msg string
		if json.Unmarshal(errMsg, &msg) == nil && msg != "" {
			e.Message = msg
			return e
		}
	}

	fields := make(map[string][]string)
	for name, val := range raw {
		var msgs []string
		if json.Unmarshal(val, &msgs) == nil && len(msgs) > 0 {
			fields[name] = msgs
			continue
		}
		var single string
		if json.Unmarshal(val, &single) == nil && single != "" {
			fields[name] = []string{single}
		}
	}
	if len(fields) > 0 {
		e.Fields = fields
		return e
	}

	e.Message = fmt.Sprintf("server returned status %d", status)
	return e
}
