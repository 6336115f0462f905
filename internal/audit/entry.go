package audit

import (
	"net/http"
	"time"
)

// TimeFormat is the timestamp layout of Entry.Timestamp.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Entry is one line in the decision log. It records how a submission was
// settled, never what was submitted. All fields are scalars so json.Marshal
// output is deterministic for hashing.
type Entry struct {
	Timestamp string `json:"ts"`
	RequestID string `json:"request_id"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Passed    bool   `json:"passed"`
	Stage     string `json:"stage"`
	Error     string `json:"error,omitempty"`
	PrevHash  string `json:"prev_hash"`
}

// NewEntry describes the decision taken for r.
func NewEntry(r *http.Request, requestID string, passed bool, stage string, err error) Entry {
	e := Entry{
		Timestamp: time.Now().UTC().Format(TimeFormat),
		RequestID: requestID,
		Passed:    passed,
		Stage:     stage,
	}
	if r != nil {
		e.Method = r.Method
		e.Path = r.URL.Path
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
