package recaptcha

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/politecaptcha/internal/captcha"
)

// maxVerifyBody bounds how much of the verify response is read.
const maxVerifyBody = 4 << 10

// Validator verifies a submitted challenge/response pair with the provider.
type Validator struct {
	opts Options
}

// NewValidator returns a Validator with opts applied over the defaults.
func NewValidator(opts Options) *Validator {
	return &Validator{opts: opts.withDefaults()}
}

var _ captcha.Validator = (*Validator)(nil)

// Validate makes a single verification round trip. Missing or blank
// challenge/response fields fail without contacting the provider.
func (v *Validator) Validate(r *http.Request) (bool, error) {
	if r == nil {
		return false, captcha.MissingArgument("request")
	}

	keys, err := ResolveKeys(r.Context(), v.opts.Source, v.opts.IsLocal(r))
	if err != nil {
		return false, err
	}

	challenge := r.PostFormValue(ChallengeField)
	if strings.TrimSpace(challenge) == "" {
		return false, nil
	}
	response := r.PostFormValue(ResponseField)
	if strings.TrimSpace(response) == "" {
		return false, nil
	}

	form := url.Values{
		"privatekey": {keys.Private},
		"remoteip":   {captcha.RemoteIP(r)},
		"challenge":  {challenge},
		"response":   {response},
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, v.opts.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("verify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.opts.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("verify: provider returned HTTP %d", resp.StatusCode)
	}

	return parseVerifyResponse(io.LimitReader(resp.Body, maxVerifyBody))
}

// parseVerifyResponse reads the line-oriented verify answer: the first line
// is "true" or "false", the second an error code.
func parseVerifyResponse(body io.Reader) (bool, error) {
	sc := bufio.NewScanner(body)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return false, fmt.Errorf("verify: read response: %w", err)
		}
		return false, fmt.Errorf("verify: empty response")
	}
	switch strings.TrimSpace(sc.Text()) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("verify: unexpected response %q", sc.Text())
	}
}
