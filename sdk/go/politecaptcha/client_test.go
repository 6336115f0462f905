package politecaptcha

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/politecaptcha/internal/alert"
	"github.com/ppiankov/politecaptcha/internal/audit"
	"github.com/ppiankov/politecaptcha/internal/honeypot"
	"github.com/ppiankov/politecaptcha/internal/recaptcha"
)

func newTestGuard(t *testing.T, opts ...Option) *Guard {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func postForm(remote string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = remote
	return req
}

func honeypotForm(challenge, response string) url.Values {
	return url.Values{honeypot.ChallengeField: {challenge}, honeypot.ResponseField: {response}}
}

type stubValidator struct {
	ok    bool
	err   error
	calls int
}

func (s *stubValidator) Validate(*http.Request) (bool, error) {
	s.calls++
	return s.ok, s.err
}

func TestNewDefault(t *testing.T) {
	g := newTestGuard(t)
	_, ok := g.generator.(*recaptcha.Generator)
	assert.True(t, ok, "default generator is provider-backed")
	_, ok = g.validator.(*recaptcha.Validator)
	assert.True(t, ok, "default validator is provider-backed")
}

func TestNewBypass(t *testing.T) {
	g := newTestGuard(t, WithBypass())
	assert.Equal(t, BypassGenerator{}, g.generator)
	assert.Equal(t, BypassValidator{}, g.validator)
}

func TestAuthorizeHoneypotSkipsValidator(t *testing.T) {
	v := &stubValidator{}
	g := newTestGuard(t, WithValidator(v))

	state := NewState()
	require.NoError(t, g.Authorize(postForm("203.0.113.1:1", honeypotForm("1234", "4321")), state))
	assert.True(t, state.Valid())
	assert.Zero(t, v.calls)
}

func TestAuthorizeEscalates(t *testing.T) {
	v := &stubValidator{ok: false}
	g := newTestGuard(t, WithValidator(v))

	state := NewState()
	require.NoError(t, g.Authorize(postForm("203.0.113.1:1", honeypotForm("1234", "1234")), state))
	assert.True(t, state.Has(EscalationKey))
	assert.Equal(t, 1, v.calls)
}

func TestAuthorizeNilArguments(t *testing.T) {
	g := newTestGuard(t, WithBypass())
	err := g.Authorize(nil, NewState())
	require.ErrorIs(t, err, ErrInvalidArgument)

	err = g.Authorize(postForm("127.0.0.1:1", url.Values{}), nil)
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "validationState", argErr.Name)
}

func TestCheckNonLocalWithoutKeys(t *testing.T) {
	g := newTestGuard(t, WithKeySource(MapKeySource(nil)))
	_, err := g.Check(postForm("203.0.113.1:1", url.Values{"recaptcha_challenge_field": {"c"}, "recaptcha_response_field": {"r"}}))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestCheckLocalProviderRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("privatekey") != recaptcha.LocalhostPrivateKey {
			fmt.Fprint(w, "false\ninvalid-site-private-key")
			return
		}
		fmt.Fprint(w, "true\nsuccess")
	}))
	defer srv.Close()

	g := newTestGuard(t, WithKeySource(MapKeySource(nil)), WithVerifyURL(srv.URL), WithHTTPClient(srv.Client()))
	out, err := g.Check(postForm("127.0.0.1:1", url.Values{"recaptcha_challenge_field": {"c"}, "recaptcha_response_field": {"r"}}))
	require.NoError(t, err)
	assert.Equal(t, Outcome{Passed: true, Stage: StageCaptcha}, out)
}

func TestFieldsFollowState(t *testing.T) {
	g := newTestGuard(t, WithKeySource(MapKeySource(nil)), WithFallbackMessage("Prove it"))
	req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
	req.RemoteAddr = "127.0.0.1:1"

	html, err := g.Fields(req, NewState())
	require.NoError(t, err)
	assert.Contains(t, string(html), honeypot.ChallengeField)

	state := NewState()
	state.Set(EscalationKey, "")
	html, err = g.Fields(req, state)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Prove it")
	assert.Contains(t, string(html), "recaptcha_challenge_field")
}

func TestAjaxHelpers(t *testing.T) {
	g := newTestGuard(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:1"

	html, err := g.AjaxPlaceholder()
	require.NoError(t, err)
	assert.Contains(t, string(html), honeypot.ChallengeField)
	assert.Contains(t, string(html), `id="PoliteCaptcha"`)

	script, err := g.AjaxCreationScript(req)
	require.NoError(t, err)
	assert.Contains(t, string(script), "Recaptcha.create(")
}

func TestAjaxCreationScriptWithMessage(t *testing.T) {
	g := newTestGuard(t, WithFallbackMessage("Guard default message"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:1"

	script, err := g.AjaxCreationScriptWithMessage(req, "Per form message")
	require.NoError(t, err)
	assert.Contains(t, string(script), "Per form message")
	assert.NotContains(t, string(script), "Guard default message")

	script, err = g.AjaxCreationScriptWithMessage(req, "")
	require.NoError(t, err)
	assert.Contains(t, string(script), "Guard default message")
}

// htmlGenerator implements Generator but not AjaxGenerator.
type htmlGenerator struct{}

func (htmlGenerator) Generate(*http.Request, string) (template.HTML, error) { return "<captcha/>", nil }

func TestAjaxHelpersRequireAjaxGenerator(t *testing.T) {
	g := newTestGuard(t, WithGenerator(htmlGenerator{}))
	_, err := g.AjaxPlaceholder()
	require.Error(t, err)
	_, err = g.AjaxCreationScript(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Error(t, err)
}

func TestAuditLogRecordsDecisions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.jsonl")
	v := &stubValidator{}
	g := newTestGuard(t, WithValidator(v), WithAuditLog(path))

	_, err := g.Check(postForm("203.0.113.1:1", honeypotForm("ab", "ba")))
	require.NoError(t, err)
	_, err = g.Check(postForm("203.0.113.1:1", url.Values{}))
	require.NoError(t, err)
	v.err = errors.New("provider down")
	_, err = g.Check(postForm("203.0.113.1:1", url.Values{}))
	require.Error(t, err)
	require.NoError(t, g.Close())

	res := audit.Verify(path)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, 1, res.Passed)
	assert.Equal(t, 1, res.Escalated)
}

func TestNewAuditLogError(t *testing.T) {
	dir := t.TempDir()
	_, err := New(WithBypass(), WithAuditLog(dir))
	require.Error(t, err)
}

func TestAlertsOnEscalationAndFailure(t *testing.T) {
	var mu sync.Mutex
	var events []alert.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e alert.Event
		json.NewDecoder(r.Body).Decode(&e)
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}))
	defer srv.Close()

	d := alert.NewDispatcher([]alert.Config{
		{URL: srv.URL, Events: []string{alert.EventEscalated, alert.EventUnavailable}},
	}, nil, logr.Discard())
	v := &stubValidator{}
	g, err := New(WithValidator(v), WithAlerts(d))
	require.NoError(t, err)

	_, err = g.Check(postForm("203.0.113.1:1", honeypotForm("ab", "ba")))
	require.NoError(t, err)
	_, err = g.Check(postForm("203.0.113.1:1", url.Values{}))
	require.NoError(t, err)
	v.err = errors.New("provider down")
	_, err = g.Check(postForm("203.0.113.1:1", url.Values{}))
	require.Error(t, err)
	require.NoError(t, g.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	kinds := map[string]string{}
	for _, e := range events {
		kinds[e.Event] = e.Reason
		assert.Equal(t, "/feedback", e.Path)
	}
	assert.Contains(t, kinds, alert.EventEscalated)
	assert.Equal(t, "provider down", kinds[alert.EventUnavailable])
}
