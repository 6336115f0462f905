package guard

import (
	"html/template"
	"net/http"

	"github.com/ppiankov/politecaptcha/internal/captcha"
	"github.com/ppiankov/politecaptcha/internal/honeypot"
)

// RenderChoice is what a form shows for spam prevention.
type RenderChoice int

const (
	ShowHoneypot RenderChoice = iota
	ShowCaptcha
)

func (c RenderChoice) String() string {
	switch c {
	case ShowCaptcha:
		return "captcha"
	default:
		return "honeypot"
	}
}

// DecideFields returns ShowCaptcha when state carries the escalation signal.
func DecideFields(state *State) RenderChoice {
	if state.Escalated() {
		return ShowCaptcha
	}
	return ShowHoneypot
}

// Fields renders the spam-prevention fields for a form: a fresh honeypot
// challenge, or the CAPTCHA widget after an escalation.
func Fields(r *http.Request, state *State, gen captcha.Generator, fallbackMessage string) (template.HTML, error) {
	if gen == nil {
		return "", captcha.MissingArgument("captchaGenerator")
	}
	if DecideFields(state) == ShowCaptcha {
		return gen.Generate(r, captcha.FallbackMessage(fallbackMessage))
	}
	return honeypot.Field(honeypot.Mint()), nil
}

// AjaxCreationScript returns the generator's script that creates the CAPTCHA
// inside AjaxPlaceholder.
func AjaxCreationScript(r *http.Request, gen captcha.AjaxGenerator, fallbackMessage string) (template.HTML, error) {
	if gen == nil {
		return "", captcha.MissingArgument("captchaGenerator")
	}
	return gen.CreationScript(r, captcha.FallbackMessage(fallbackMessage))
}

// AjaxPlaceholder renders a fresh honeypot challenge next to the element
// the CAPTCHA is created in, for forms that escalate without a full render.
func AjaxPlaceholder(gen captcha.AjaxGenerator) (template.HTML, error) {
	if gen == nil {
		return "", captcha.MissingArgument("captchaGenerator")
	}
	return honeypot.Field(honeypot.Mint()) + gen.Placeholder(), nil
}
