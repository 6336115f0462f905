package politecaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type stateKey struct{}

// WithState returns a copy of ctx carrying state.
func WithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// StateFrom returns the State stored by Middleware, or an empty State when
// there is none.
func StateFrom(ctx context.Context) *State {
	if s, ok := ctx.Value(stateKey{}).(*State); ok && s != nil {
		return s
	}
	return NewState()
}

// isSubmission reports whether r carries a form submission to check.
func isSubmission(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Middleware returns an http.Handler that runs the spam check on form
// submissions and stores the request's State in the context for next.
// A failed check does not stop the request: next inspects
// StateFrom(r.Context()).Valid() and redisplays the form, which then renders
// a CAPTCHA. Checks that cannot complete receive a 500 with a JSON body.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := NewState()
		if isSubmission(r) {
			if err := g.Authorize(r, state); err != nil {
				writeError(w, err)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
	})
}

// Enforce is like Middleware but rejects escalated submissions with a 403
// and a JSON body instead of calling next. Use it for endpoints that cannot
// redisplay a form.
func (g *Guard) Enforce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isSubmission(r) {
			next.ServeHTTP(w, r)
			return
		}
		out, err := g.Check(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if !out.Passed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{
				"blocked": true,
				"stage":   string(out.Stage),
				"reason":  "spam prevention failed; complete the CAPTCHA",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, err error) {
	reason := "spam prevention unavailable"
	if errors.Is(err, ErrConfiguration) {
		reason = "spam prevention is not configured"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]any{
		"blocked": true,
		"reason":  reason,
	})
}
