package politecaptcha

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/ppiankov/politecaptcha/internal/alert"
	"github.com/ppiankov/politecaptcha/internal/audit"
	"github.com/ppiankov/politecaptcha/internal/captcha"
	"github.com/ppiankov/politecaptcha/internal/config"
	"github.com/ppiankov/politecaptcha/internal/guard"
	"github.com/ppiankov/politecaptcha/internal/recaptcha"
)

// Guard runs spam checks and renders spam-prevention fields.
// Safe for concurrent use.
type Guard struct {
	generator       Generator
	validator       Validator
	logger          logr.Logger
	auditLog        *audit.Log
	alerts          *alert.Dispatcher
	fallbackMessage string
}

// New creates a Guard. Unless replaced by options, the generator and
// validator are provider-backed and resolve keys from the environment.
func New(opts ...Option) (*Guard, error) {
	cfg := guardConfig{
		keySource: config.EnvSource{},
		logger:    logr.Discard(),
	}
	for _, o := range opts {
		o(&cfg)
	}

	provider := recaptcha.Options{
		Source:    cfg.keySource,
		APIServer: cfg.apiServer,
		VerifyURL: cfg.verifyURL,
		Theme:     cfg.theme,
		Client:    cfg.httpClient,
		IsLocal:   cfg.isLocal,
	}
	if cfg.generator == nil {
		cfg.generator = recaptcha.NewGenerator(provider)
	}
	if cfg.validator == nil {
		cfg.validator = recaptcha.NewValidator(provider)
	}

	g := &Guard{
		generator:       cfg.generator,
		validator:       cfg.validator,
		logger:          cfg.logger,
		alerts:          cfg.alerts,
		fallbackMessage: cfg.fallbackMessage,
	}

	if cfg.auditPath != "" {
		l, err := audit.Open(cfg.auditPath)
		if err != nil {
			return nil, fmt.Errorf("politecaptcha: failed to open audit log: %w", err)
		}
		g.auditLog = l
	}

	return g, nil
}

// Close flushes pending alerts, cancelling any that outlast a short grace
// period, and releases the audit log, if any.
func (g *Guard) Close() error {
	if g.alerts != nil {
		g.alerts.Close()
	}
	if g.auditLog != nil {
		return g.auditLog.Close()
	}
	return nil
}

// Check evaluates a submission without touching any State.
func (g *Guard) Check(r *http.Request) (Outcome, error) {
	id := uuid.NewString()
	out, err := guard.Evaluate(r, g.validator)
	g.record(r, id, out, err)
	return out, err
}

// Authorize evaluates a submission and records an escalation on state.
func (g *Guard) Authorize(r *http.Request, state *State) error {
	if r == nil {
		return captcha.MissingArgument("request")
	}
	if state == nil {
		return captcha.MissingArgument("validationState")
	}
	out, err := g.Check(r)
	if err != nil {
		return err
	}
	out.Apply(state)
	return nil
}

func (g *Guard) record(r *http.Request, id string, out Outcome, err error) {
	log := g.logger.WithValues("requestID", id)
	if r != nil {
		log = log.WithValues("method", r.Method, "path", r.URL.Path)
	}
	switch {
	case err != nil:
		log.Error(err, "spam check failed to complete")
	case out.Passed:
		log.V(1).Info("spam check passed", "stage", string(out.Stage))
	default:
		log.Info("spam check escalated to captcha")
	}

	if g.alerts != nil && (err != nil || !out.Passed) {
		g.alerts.Dispatch(alertEvent(r, id, out, err))
	}

	if g.auditLog == nil {
		return
	}
	if aerr := g.auditLog.Record(audit.NewEntry(r, id, out.Passed, string(out.Stage), err)); aerr != nil {
		g.logger.Error(aerr, "failed to record decision", "requestID", id)
	}
}

func alertEvent(r *http.Request, id string, out Outcome, err error) alert.Event {
	e := alert.Event{
		Timestamp: time.Now().UTC().Format(audit.TimeFormat),
		RequestID: id,
		Event:     alert.EventEscalated,
		Stage:     string(out.Stage),
	}
	if r != nil {
		e.Method = r.Method
		e.Path = r.URL.Path
	}
	if err != nil {
		e.Event = alert.EventUnavailable
		e.Reason = err.Error()
	}
	return e
}

// Fields renders the spam-prevention fields for a form.
func (g *Guard) Fields(r *http.Request, state *State) (template.HTML, error) {
	return g.FieldsWithMessage(r, state, "")
}

// FieldsWithMessage is Fields with a per-form fallback message. An empty
// message selects the Guard's default.
func (g *Guard) FieldsWithMessage(r *http.Request, state *State, fallbackMessage string) (template.HTML, error) {
	if fallbackMessage == "" {
		fallbackMessage = g.fallbackMessage
	}
	return guard.Fields(r, state, g.generator, fallbackMessage)
}

// AjaxPlaceholder renders a honeypot field and the element the CAPTCHA is
// created in. The generator must support script creation.
func (g *Guard) AjaxPlaceholder() (template.HTML, error) {
	ag, ok := g.generator.(AjaxGenerator)
	if !ok {
		return "", fmt.Errorf("politecaptcha: generator %T does not support script creation", g.generator)
	}
	return guard.AjaxPlaceholder(ag)
}

// AjaxCreationScript returns the script that creates the CAPTCHA inside
// the AjaxPlaceholder element.
func (g *Guard) AjaxCreationScript(r *http.Request) (template.HTML, error) {
	return g.AjaxCreationScriptWithMessage(r, "")
}

// AjaxCreationScriptWithMessage is AjaxCreationScript with a per-form
// fallback message. An empty message selects the Guard's default.
func (g *Guard) AjaxCreationScriptWithMessage(r *http.Request, fallbackMessage string) (template.HTML, error) {
	ag, ok := g.generator.(AjaxGenerator)
	if !ok {
		return "", fmt.Errorf("politecaptcha: generator %T does not support script creation", g.generator)
	}
	if fallbackMessage == "" {
		fallbackMessage = g.fallbackMessage
	}
	return guard.AjaxCreationScript(r, ag, fallbackMessage)
}
