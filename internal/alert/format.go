package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event Event) ([]byte, error) {
	reason := event.Reason
	if reason == "" {
		reason = "-"
	}
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("politecaptcha: %s", event.Event),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Path:* %s %s", event.Method, event.Path)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Stage:* %s", event.Stage)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Request:* %s", event.RequestID)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", reason)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("politecaptcha %s: %s %s", event.Event, event.Method, event.Path),
			"severity": severityFor(event.Event),
			"source":   "politecaptcha",
			"custom_details": map[string]any{
				"stage":      event.Stage,
				"reason":     event.Reason,
				"request_id": event.RequestID,
			},
		},
	}
	return json.Marshal(payload)
}

// severityFor rates an outage above a rejected submission.
func severityFor(event string) string {
	switch event {
	case EventUnavailable:
		return "error"
	case EventEscalated:
		return "warning"
	default:
		return "info"
	}
}
