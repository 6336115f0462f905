package guard

import "sort"

// EscalationKey marks a request whose spam check failed. Its presence, not
// its message, tells the renderer to show a CAPTCHA.
const EscalationKey = "PoliteCaptcha"

// State is the request-scoped validation state shared between the
// submission handler and the renderer. Each key holds at most one message.
// A State must not be shared across requests.
type State struct {
	errs map[string]string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{errs: make(map[string]string)}
}

// Set records message under key, replacing any previous message.
func (s *State) Set(key, message string) {
	if s.errs == nil {
		s.errs = make(map[string]string)
	}
	s.errs[key] = message
}

// Has reports whether key is present.
func (s *State) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.errs[key]
	return ok
}

// Message returns the message stored under key.
func (s *State) Message(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	m, ok := s.errs[key]
	return m, ok
}

// Valid reports whether no key has been recorded.
func (s *State) Valid() bool {
	return s == nil || len(s.errs) == 0
}

// Escalated reports whether the spam check failed for this request.
func (s *State) Escalated() bool {
	return s.Has(EscalationKey)
}

// Keys returns the recorded keys in sorted order.
func (s *State) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.errs))
	for k := range s.errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
