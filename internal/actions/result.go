// Package actions hosts the capability handlers and the registry that
// dispatches structured commands to them under a uniform result
// contract.
package actions

import "strings"

// Status classifies a structured handler outcome.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusNotFound      Status = "not_found"
	StatusMultipleFound Status = "multiple_found"
	StatusError         Status = "error"
)

// Result is what every handler returns. It is either a Message (a
// confirmation, clarification, or error meant to be shown as-is) or a
// *Record (a structured outcome with a status and action-specific
// fields). Callers distinguish the two by type assertion.
type Result interface {
	// Text renders the user-facing form of the result.
	Text() string
}

// Message is a plain human-readable result.
type Message string

func (m Message) Text() string { return string(m) }

// Record is a structured result. Summary is the renderable text;
// Fields carries action-specific values (distance, duration, ...).
type Record struct {
	Status  Status
	Summary string
	Fields  map[string]string
}

func (r *Record) Text() string { return r.Summary }

// Field returns a named field, or "" when absent.
func (r *Record) Field(key string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

func errorRecord(summary string, fields map[string]string) *Record {
	return &Record{Status: StatusError, Summary: summary, Fields: fields}
}

// IsClarification reports whether a message reads as a question back
// to the user rather than a completed outcome.
func IsClarification(r Result) bool {
	m, ok := r.(Message)
	return ok && strings.HasSuffix(strings.TrimSpace(string(m)), "?")
}
