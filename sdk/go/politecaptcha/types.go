package politecaptcha

import (
	"html/template"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/ppiankov/politecaptcha/internal/alert"
	"github.com/ppiankov/politecaptcha/internal/captcha"
	"github.com/ppiankov/politecaptcha/internal/config"
	"github.com/ppiankov/politecaptcha/internal/guard"
	"github.com/ppiankov/politecaptcha/internal/honeypot"
)

type (
	// Generator produces CAPTCHA markup.
	Generator = captcha.Generator
	// AjaxGenerator creates the CAPTCHA from script.
	AjaxGenerator = captcha.AjaxGenerator
	// Validator checks a submitted CAPTCHA.
	Validator = captcha.Validator
	// KeySource resolves provider keys.
	KeySource = config.Source
	// LocalFunc decides whether a request may use development keys.
	LocalFunc = captcha.LocalFunc

	// State is the per-request validation state.
	State = guard.State
	// Outcome is the typed result of a spam check.
	Outcome = guard.Outcome
	// Stage names the step that settled a submission.
	Stage = guard.Stage

	// ArgumentError names a nil required parameter.
	ArgumentError = captcha.ArgumentError

	// BypassGenerator renders no CAPTCHA.
	BypassGenerator = captcha.BypassGenerator
	// BypassValidator accepts every CAPTCHA.
	BypassValidator = captcha.BypassValidator

	// AlertConfig is one webhook destination for WithAlerts.
	AlertConfig = alert.Config
	// AlertDispatcher delivers events to webhooks.
	AlertDispatcher = alert.Dispatcher
)

const (
	StageHoneypot  = guard.StageHoneypot
	StageCaptcha   = guard.StageCaptcha
	StageEscalated = guard.StageEscalated

	// EscalationKey is the State key set when a submission is escalated.
	EscalationKey = guard.EscalationKey

	// DefaultFallbackMessage is shown above the CAPTCHA by default.
	DefaultFallbackMessage = captcha.DefaultFallbackMessage
)

var (
	ErrInvalidArgument = captcha.ErrInvalidArgument
	ErrConfiguration   = captcha.ErrConfiguration
)

// NewState returns an empty State.
func NewState() *State {
	return guard.NewState()
}

// Script returns the page script that answers honeypot challenges.
// Emit it once per page.
func Script() template.HTML {
	return honeypot.Script()
}

// EnvKeySource reads provider keys from POLITECAPTCHA_* environment variables.
func EnvKeySource() KeySource {
	return config.EnvSource{}
}

// MapKeySource serves provider keys from a fixed map.
func MapKeySource(keys map[string]string) KeySource {
	return config.MapSource(keys)
}

// NewAlertDispatcher returns a dispatcher for WithAlerts, or nil when
// configs is empty. A nil client gets a 5s timeout.
func NewAlertDispatcher(configs []AlertConfig, client *http.Client, logger logr.Logger) *AlertDispatcher {
	return alert.NewDispatcher(configs, client, logger)
}
