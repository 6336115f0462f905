package recaptcha

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/ppiankov/politecaptcha/internal/captcha"
)

var widgetTmpl = template.Must(template.New("widget").Parse(
	`<div class="PoliteCaptcha editor-field">` +
		`<span class="field-validation-error" data-valmsg-for="{{.ID}}"><span htmlfor="{{.ID}}">{{.Message}}</span></span>` +
		`<script type="text/javascript">
		var RecaptchaOptions = {
			theme : '{{.Theme}}',
			tabindex : 0
		};
</script>` +
		`<script type="text/javascript" src="{{.Server}}/challenge?k={{.PublicKey}}"></script>` +
		`<noscript>
		<iframe src="{{.Server}}/noscript?k={{.PublicKey}}" width="500" height="300" frameborder="0"></iframe><br />` +
		`<textarea name="{{.ChallengeField}}" rows="3" cols="40"></textarea>` +
		`<input name="{{.ResponseField}}" value="manual_challenge" type="hidden" />
</noscript></div>`))

var ajaxScriptTmpl = template.Must(template.New("ajax").Parse(
	`<script type="text/javascript" src="{{.Server}}/js/recaptcha_ajax.js"></script>` +
		`<script type="text/javascript">
function politeCaptchaCreate() {
    var message = document.getElementById('{{.ID}}Message');
    if (message) {
        message.textContent = '{{.Message}}';
        message.style.display = '';
    }
    Recaptcha.create('{{.PublicKey}}', '{{.ID}}', {
        theme: '{{.Theme}}',
        callback: Recaptcha.focus_response_field
    });
}
</script>`))

var placeholderTmpl = template.Must(template.New("placeholder").Parse(
	`<div class="PoliteCaptcha editor-field">` +
		`<span class="field-validation-error" data-valmsg-for="{{.}}"><span htmlfor="{{.}}" id="{{.}}Message" style="display:none"></span></span>` +
		`<div id="{{.}}"></div></div>`))

type widgetData struct {
	ID             string
	Message        string
	Theme          string
	Server         string
	PublicKey      string
	ChallengeField string
	ResponseField  string
}

// Generator renders the provider widget.
type Generator struct {
	opts Options
}

// NewGenerator returns a Generator with opts applied over the defaults.
func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts.withDefaults()}
}

var _ captcha.AjaxGenerator = (*Generator)(nil)

func (g *Generator) Generate(r *http.Request, fallbackMessage string) (template.HTML, error) {
	data, err := g.widgetData(r, fallbackMessage)
	if err != nil {
		return "", err
	}
	return render(widgetTmpl, data)
}

func (g *Generator) CreationScript(r *http.Request, fallbackMessage string) (template.HTML, error) {
	data, err := g.widgetData(r, fallbackMessage)
	if err != nil {
		return "", err
	}
	return render(ajaxScriptTmpl, data)
}

func (g *Generator) Placeholder() template.HTML {
	html, _ := render(placeholderTmpl, ElementID)
	return html
}

func (g *Generator) widgetData(r *http.Request, fallbackMessage string) (widgetData, error) {
	if r == nil {
		return widgetData{}, captcha.MissingArgument("request")
	}
	keys, err := ResolveKeys(r.Context(), g.opts.Source, g.opts.IsLocal(r))
	if err != nil {
		return widgetData{}, err
	}
	return widgetData{
		ID:             ElementID,
		Message:        captcha.FallbackMessage(fallbackMessage),
		Theme:          g.opts.Theme,
		Server:         scheme(r) + "://" + g.opts.APIServer,
		PublicKey:      keys.Public,
		ChallengeField: ChallengeField,
		ResponseField:  ResponseField,
	}, nil
}

// scheme follows the security of the rendering request so the widget does
// not trigger mixed-content warnings.
func scheme(r *http.Request) string {
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}

func render(t *template.Template, data any) (template.HTML, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
