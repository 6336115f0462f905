package recaptcha

import (
	"net/http"
	"time"

	"github.com/ppiankov/politecaptcha/internal/captcha"
	"github.com/ppiankov/politecaptcha/internal/config"
)

// Provider form field names.
const (
	ChallengeField = "recaptcha_challenge_field"
	ResponseField  = "recaptcha_response_field"
)

// ElementID is the id and validation-message key of the rendered widget.
const ElementID = "PoliteCaptcha"

const (
	defaultAPIServer = "www.google.com/recaptcha/api"
	defaultVerifyURL = "http://www.google.com/recaptcha/api/verify"
	defaultTheme     = "red"
	defaultTimeout   = 10 * time.Second
)

// Options configure Generator and Validator. Zero values select defaults.
type Options struct {
	// Source resolves the key pair. nil behaves like an empty source.
	Source config.Source

	// APIServer is the widget host and path, without scheme.
	APIServer string

	// VerifyURL receives the verification POST.
	VerifyURL string

	// Theme is the widget theme: red, white, blackglass or clean.
	Theme string

	// Client performs the verification call; it owns the timeout.
	Client *http.Client

	// IsLocal decides whether development keys may be used.
	IsLocal captcha.LocalFunc
}

func (o Options) withDefaults() Options {
	if o.APIServer == "" {
		o.APIServer = defaultAPIServer
	}
	if o.VerifyURL == "" {
		o.VerifyURL = defaultVerifyURL
	}
	if o.Theme == "" {
		o.Theme = defaultTheme
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: defaultTimeout}
	}
	if o.IsLocal == nil {
		o.IsLocal = captcha.IsLocalRequest
	}
	return o
}

// FromConfig maps the settings file onto Options.
func FromConfig(p config.ProviderConfig, src config.Source) Options {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return Options{
		Source:    src,
		APIServer: p.APIServer,
		VerifyURL: p.VerifyURL,
		Theme:     p.Theme,
		Client:    &http.Client{Timeout: timeout},
	}
}
