// Package alert posts spam-prevention events to webhooks.
package alert

// Event names a Config can subscribe to.
const (
	EventEscalated   = "escalated"
	EventUnavailable = "unavailable"
)

// Config defines a webhook alert destination.
type Config struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["escalated", "unavailable"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints. It describes how a
// submission was settled, never what was submitted.
type Event struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Event     string `json:"event"`
	Stage     string `json:"stage"`
	Reason    string `json:"reason,omitempty"`
}
