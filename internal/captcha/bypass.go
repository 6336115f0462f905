package captcha

import (
	"html/template"
	"net/http"
)

// BypassGenerator renders nothing. Use it where no CAPTCHA should be shown,
// such as tests and demos.
type BypassGenerator struct{}

func (BypassGenerator) Generate(r *http.Request, fallbackMessage string) (template.HTML, error) {
	return "", nil
}

func (BypassGenerator) CreationScript(r *http.Request, fallbackMessage string) (template.HTML, error) {
	return "", nil
}

func (BypassGenerator) Placeholder() template.HTML {
	return ""
}

// BypassValidator accepts every submission.
type BypassValidator struct{}

func (BypassValidator) Validate(r *http.Request) (bool, error) {
	return true, nil
}

var (
	_ AjaxGenerator = BypassGenerator{}
	_ Validator     = BypassValidator{}
)
