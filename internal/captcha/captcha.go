// Package captcha defines the capabilities the spam guard consumes from a
// CAPTCHA provider, plus bypass implementations for trusted environments.
package captcha

import (
	"html/template"
	"net/http"
)

// DefaultFallbackMessage is shown above the CAPTCHA when the caller supplies none.
const DefaultFallbackMessage = "Your request failed spam prevention. You must complete the CAPTCHA form below to proceed."

// Generator produces the CAPTCHA markup for a render.
type Generator interface {
	// Generate returns the widget markup wrapping fallbackMessage, or the
	// default message when fallbackMessage is empty.
	Generate(r *http.Request, fallbackMessage string) (template.HTML, error)
}

// AjaxGenerator supports forms that create the CAPTCHA from script, e.g.
// forms submitted asynchronously.
type AjaxGenerator interface {
	Generator

	// CreationScript returns a script that creates the widget inside the
	// element rendered by Placeholder.
	CreationScript(r *http.Request, fallbackMessage string) (template.HTML, error)

	// Placeholder returns the element the widget is created in.
	Placeholder() template.HTML
}

// Validator checks a submitted CAPTCHA challenge/response pair.
type Validator interface {
	Validate(r *http.Request) (bool, error)
}

// FallbackMessage returns msg, or DefaultFallbackMessage when msg is empty.
func FallbackMessage(msg string) string {
	if msg == "" {
		return DefaultFallbackMessage
	}
	return msg
}
