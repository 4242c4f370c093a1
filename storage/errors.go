package storage

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a missing or malformed storage secret. It is
// fatal for the operation that hit it, never for the process.
type ConfigurationError struct {
	Key string
	Msg string
}

func (e *ConfigurationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Key + " environment variable is not defined"
}

// Reason classifies a ValidationError.
type Reason int

const (
	TooLarge Reason = iota + 1
	UnsupportedType
	MissingInput
)

func (r Reason) String() string {
	switch r {
	case TooLarge:
		return "too_large"
	case UnsupportedType:
		return "unsupported_type"
	case MissingInput:
		return "missing_input"
	}
	return "unknown"
}

// ValidationError is returned for uploads or deletes rejected before any
// network call. The caller can always recover by correcting its input.
type ValidationError struct {
	Reason      Reason
	Size        int64
	ContentType string
	Msg         string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	switch e.Reason {
	case TooLarge:
		return fmt.Sprintf("File size exceeds the limit of %dMB. Your file is %.2fMB",
			MaxUploadSize>>20, float64(e.Size)/(1<<20))
	case UnsupportedType:
		return fmt.Sprintf("Invalid file type: %s. Only image files are allowed.", e.ContentType)
	}
	return "invalid request"
}

// UpstreamError carries a non-success response from the object store.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString("blob API error")
	if e.Status != 0 {
		fmt.Fprintf(&b, ": %d", e.Status)
	}
	if e.Body != "" {
		b.WriteString(" ")
		b.WriteString(e.Body)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
