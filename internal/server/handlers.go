package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/ppiankov/politecaptcha/sdk/go/politecaptcha"
)

const withFallbackMessage = "We could not confirm you are human. Please complete the CAPTCHA below and send your feedback again."

const successMessage = "Spam prevention validation passed. If this was a real feedback form, we'd have sent your feedback."

var pages = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{block "content" .}}{{end}}
{{.Script}}
</body>
</html>`))

var indexPage = template.Must(template.Must(pages.Clone()).Parse(`{{define "content"}}
<ul>
<li><a href="/without-fallback">Feedback form, default CAPTCHA message</a></li>
<li><a href="/with-fallback">Feedback form, custom CAPTCHA message</a></li>
<li><a href="/bypass/without-fallback">Feedback form, CAPTCHA bypassed</a></li>
<li><a href="/bypass/with-fallback">Feedback form, CAPTCHA bypassed, custom message</a></li>
</ul>
{{end}}`))

var formPage = template.Must(template.Must(pages.Clone()).Parse(`{{define "content"}}
{{if .Success}}<p>{{.Success}} (<a href="/">Back to Home</a>)</p>{{else}}
<form method="post" action="{{.Action}}">
<p><label>Email address <input type="email" name="EmailAddress" value="{{.Email}}"></label>
{{with .Errors.EmailAddress}}<span class="field-validation-error">{{.}}</span>{{end}}</p>
<p><label>Feedback <textarea name="Feedback">{{.Feedback}}</textarea></label>
{{with .Errors.Feedback}}<span class="field-validation-error">{{.}}</span>{{end}}</p>
{{.Fields}}
<p><button type="submit">Send</button></p>
</form>{{end}}
{{end}}`))

type pageData struct {
	Title    string
	Action   string
	Email    string
	Feedback string
	Errors   map[string]string
	Fields   template.HTML
	Script   template.HTML
	Success  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, indexPage, pageData{Title: "Polite CAPTCHA demo"})
}

// feedbackForm renders the form on GET and handles submissions. Field
// validation shares the State with the spam check, so a single Valid()
// covers both.
func (s *Server) feedbackForm(g *politecaptcha.Guard, fallbackMessage string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := politecaptcha.StateFrom(r.Context())
		data := pageData{
			Title:  "Send feedback",
			Action: r.URL.Path,
			Script: politecaptcha.Script(),
			Errors: map[string]string{},
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead:
		case http.MethodPost:
			data.Email = strings.TrimSpace(r.PostFormValue("EmailAddress"))
			data.Feedback = strings.TrimSpace(r.PostFormValue("Feedback"))
			validateFeedback(state, data.Email, data.Feedback)
			if state.Valid() {
				data.Success = successMessage
				s.render(w, formPage, data)
				return
			}
			for _, k := range state.Keys() {
				if msg, _ := state.Message(k); msg != "" {
					data.Errors[k] = msg
				}
			}
		default:
			w.Header().Set("Allow", "GET, HEAD, POST")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		fields, err := g.FieldsWithMessage(r, state, fallbackMessage)
		if err != nil {
			s.logger.Error(err, "failed to render spam prevention fields", "path", r.URL.Path)
			http.Error(w, "spam prevention unavailable", http.StatusInternalServerError)
			return
		}
		data.Fields = fields
		s.render(w, formPage, data)
	})
}

func validateFeedback(state *politecaptcha.State, email, feedback string) {
	if email == "" {
		state.Set("EmailAddress", "The email address is required.")
	} else if !strings.Contains(email, "@") {
		state.Set("EmailAddress", "The email address is not valid.")
	}
	if feedback == "" {
		state.Set("Feedback", "Feedback is required.")
	}
}

// handleAPIFeedback is the scripted counterpart of the feedback form; it
// runs behind Enforce, so reaching it means the spam check passed.
func (s *Server) handleAPIFeedback(w http.ResponseWriter, r *http.Request) {
	state := politecaptcha.NewState()
	validateFeedback(state, strings.TrimSpace(r.PostFormValue("EmailAddress")), strings.TrimSpace(r.PostFormValue("Feedback")))

	w.Header().Set("Content-Type", "application/json")
	if !state.Valid() {
		errs := map[string]string{}
		for _, k := range state.Keys() {
			errs[k], _ = state.Message(k)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "errors": errs})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "message": successMessage})
}

func (s *Server) render(w http.ResponseWriter, t *template.Template, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		s.logger.Error(err, "failed to render page")
	}
}
