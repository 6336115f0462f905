// Package guard decides whether a form submission passes spam prevention and
// what the next render of the form must show.
//
// A submission passes when the honeypot response is the reversal of its
// challenge. Otherwise the CAPTCHA validator is consulted, and if that fails
// too the request is escalated: the validation state gets EscalationKey and
// the redisplayed form shows a CAPTCHA instead of the honeypot field.
package guard

import (
	"net/http"

	"github.com/ppiankov/politecaptcha/internal/captcha"
	"github.com/ppiankov/politecaptcha/internal/honeypot"
)

// Stage names the step that settled a submission.
type Stage string

const (
	StageHoneypot  Stage = "honeypot"
	StageCaptcha   Stage = "captcha"
	StageEscalated Stage = "escalated"
)

// Outcome is the result of evaluating one submission.
type Outcome struct {
	Passed bool
	Stage  Stage
}

// Apply records the outcome on state. A passing outcome leaves state untouched.
func (o Outcome) Apply(state *State) {
	if o.Passed || state == nil {
		return
	}
	state.Set(EscalationKey, "")
}

// Evaluate runs the honeypot check, then the CAPTCHA validator if needed.
// The validator is not called when the honeypot passes. Validator errors are
// returned as is.
func Evaluate(r *http.Request, v captcha.Validator) (Outcome, error) {
	if r == nil {
		return Outcome{}, captcha.MissingArgument("request")
	}
	if v == nil {
		return Outcome{}, captcha.MissingArgument("captchaValidator")
	}

	if honeypot.Validate(honeypot.FromRequest(r)) {
		return Outcome{Passed: true, Stage: StageHoneypot}, nil
	}

	ok, err := v.Validate(r)
	if err != nil {
		return Outcome{}, err
	}
	if ok {
		return Outcome{Passed: true, Stage: StageCaptcha}, nil
	}

	return Outcome{Passed: false, Stage: StageEscalated}, nil
}

// Authorize evaluates r and, on failure, sets EscalationKey on state with an
// empty message. Repeated failures leave a single key.
func Authorize(r *http.Request, state *State, v captcha.Validator) error {
	if r == nil {
		return captcha.MissingArgument("request")
	}
	if state == nil {
		return captcha.MissingArgument("validationState")
	}
	if v == nil {
		return captcha.MissingArgument("captchaValidator")
	}

	out, err := Evaluate(r, v)
	if err != nil {
		return err
	}
	out.Apply(state)
	return nil
}
