// Package honeypot implements the invisible "polite" challenge: a random token
// rendered as a hidden field, which a page script reverses into a second field
// on submit. Clients that never run the script never produce a valid response.
package honeypot

import (
	"crypto/rand"
	"encoding/hex"
	"html/template"
	"net/http"
	"strings"
)

// Form field names shared by the render and validate sides.
const (
	ChallengeField = "polite_challenge"
	ResponseField  = "polite_response"
)

// tokenBytes is 128 bits of entropy.
const tokenBytes = 16

// Mint returns a fresh challenge token as 32 lowercase hex characters.
func Mint() string {
	b := make([]byte, tokenBytes)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Validate reports whether response is the reversal of challenge.
// Either value being empty or whitespace-only is a failure. The comparison is
// case-insensitive and locale-independent.
func Validate(challenge, response string) bool {
	if strings.TrimSpace(challenge) == "" {
		return false
	}
	if strings.TrimSpace(response) == "" {
		return false
	}
	return strings.EqualFold(challenge, Reverse(response))
}

// Reverse returns s with its characters in reverse order.
func Reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// FromRequest reads the submitted challenge and response fields.
// Missing fields come back empty.
func FromRequest(r *http.Request) (challenge, response string) {
	return r.PostFormValue(ChallengeField), r.PostFormValue(ResponseField)
}

var fieldTmpl = template.Must(template.New("field").Parse(
	`<input type="hidden" name="{{.Name}}" id="{{.Name}}" value="{{.Value}}" />`))

// Field renders the hidden challenge input for token.
func Field(token string) template.HTML {
	var b strings.Builder
	_ = fieldTmpl.Execute(&b, struct{ Name, Value string }{ChallengeField, token})
	return template.HTML(b.String())
}
