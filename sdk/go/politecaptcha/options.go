package politecaptcha

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/ppiankov/politecaptcha/internal/alert"
)

// Option configures a Guard at creation time.
type Option func(*guardConfig)

type guardConfig struct {
	generator       Generator
	validator       Validator
	keySource       KeySource
	verifyURL       string
	apiServer       string
	theme           string
	httpClient      *http.Client
	isLocal         LocalFunc
	logger          logr.Logger
	auditPath       string
	alerts          *alert.Dispatcher
	fallbackMessage string
}

// WithGenerator replaces the provider-backed CAPTCHA generator.
func WithGenerator(g Generator) Option {
	return func(c *guardConfig) { c.generator = g }
}

// WithValidator replaces the provider-backed CAPTCHA validator.
func WithValidator(v Validator) Option {
	return func(c *guardConfig) { c.validator = v }
}

// WithBypass disables the CAPTCHA: nothing is rendered on escalation and
// every CAPTCHA check passes. For tests and demos only.
func WithBypass() Option {
	return func(c *guardConfig) {
		c.generator = BypassGenerator{}
		c.validator = BypassValidator{}
	}
}

// WithKeySource sets where provider keys are resolved (default: environment).
func WithKeySource(src KeySource) Option {
	return func(c *guardConfig) { c.keySource = src }
}

// WithVerifyURL overrides the provider verification endpoint.
func WithVerifyURL(url string) Option {
	return func(c *guardConfig) { c.verifyURL = url }
}

// WithAPIServer overrides the widget host (without scheme).
func WithAPIServer(server string) Option {
	return func(c *guardConfig) { c.apiServer = server }
}

// WithTheme sets the widget theme.
func WithTheme(theme string) Option {
	return func(c *guardConfig) { c.theme = theme }
}

// WithHTTPClient sets the client for verification calls. Its timeout bounds
// each call.
func WithHTTPClient(client *http.Client) Option {
	return func(c *guardConfig) { c.httpClient = client }
}

// WithLocalFunc overrides how local requests are recognized.
func WithLocalFunc(fn LocalFunc) Option {
	return func(c *guardConfig) { c.isLocal = fn }
}

// WithLogger sets the decision logger.
func WithLogger(logger logr.Logger) Option {
	return func(c *guardConfig) { c.logger = logger }
}

// WithAuditLog records every decision in a hash-chained JSONL file at path.
func WithAuditLog(path string) Option {
	return func(c *guardConfig) { c.auditPath = path }
}

// WithFallbackMessage sets the message shown above the CAPTCHA.
func WithFallbackMessage(msg string) Option {
	return func(c *guardConfig) { c.fallbackMessage = msg }
}

// WithAlerts posts escalations and failed checks to the dispatcher's
// webhooks. A nil dispatcher disables alerts.
func WithAlerts(d *alert.Dispatcher) Option {
	return func(c *guardConfig) { c.alerts = d }
}
