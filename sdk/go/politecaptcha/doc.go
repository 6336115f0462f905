// Package politecaptcha provides polite spam prevention for net/http forms.
// Every form first gets an invisible honeypot challenge that a page script
// answers on submit. Only a submission that fails it, and then also fails the
// CAPTCHA check, is escalated: the redisplayed form shows a CAPTCHA.
//
// Usage:
//
//	pc, err := politecaptcha.New(politecaptcha.WithLogger(logger))
//	mux.Handle("/feedback", pc.Middleware(feedbackHandler))
//
//	// in feedbackHandler, on POST:
//	state := politecaptcha.StateFrom(r.Context())
//	if !state.Valid() {
//	    fields, err := pc.Fields(r, state) // now renders the CAPTCHA
//	    ...
//	}
//
// Templates emit pc.Fields(r, state) inside each form and
// politecaptcha.Script() once per page.
package politecaptcha
