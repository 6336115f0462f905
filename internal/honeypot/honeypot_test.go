package honeypot

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestMintFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		tok := Mint()
		require.Regexp(t, hexToken, tok)
	}
}

func TestMintUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := Mint()
		require.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
}

func TestValidateReversed(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := Mint()
		assert.True(t, Validate(c, Reverse(c)), "challenge %s", c)
	}
}

func TestValidateCaseInsensitive(t *testing.T) {
	c := "abcdef0123"
	assert.True(t, Validate(c, strings.ToUpper(Reverse(c))))
	assert.True(t, Validate(strings.ToUpper(c), Reverse(c)))
}

func TestValidateRejectsSingleCharMutation(t *testing.T) {
	for n := 0; n < 20; n++ {
		c := Mint()
		rev := []byte(Reverse(c))
		for i := range rev {
			mutated := make([]byte, len(rev))
			copy(mutated, rev)
			if mutated[i] == 'z' {
				mutated[i] = 'y'
			} else {
				mutated[i] = 'z'
			}
			assert.False(t, Validate(c, string(mutated)), "mutation at %d of %s", i, c)
		}
	}
}

func TestValidateNotReversed(t *testing.T) {
	assert.False(t, Validate("1234", "1234"))
	assert.True(t, Validate("1234", "4321"))
}

func TestValidateBlankInputs(t *testing.T) {
	blanks := []string{"", " ", "\t", "\n  \r"}
	for _, b := range blanks {
		assert.False(t, Validate(b, "4321"), "challenge %q", b)
		assert.False(t, Validate("1234", b), "response %q", b)
		for _, b2 := range blanks {
			assert.False(t, Validate(b, b2), "challenge %q response %q", b, b2)
		}
	}
}

func TestReverseRunes(t *testing.T) {
	assert.Equal(t, "", Reverse(""))
	assert.Equal(t, "a", Reverse("a"))
	assert.Equal(t, "cba", Reverse("abc"))
	assert.Equal(t, "üéä", Reverse("äéü"))
}

func TestFromRequest(t *testing.T) {
	form := url.Values{}
	form.Set(ChallengeField, "1234")
	form.Set(ResponseField, "4321")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c, r := FromRequest(req)
	assert.Equal(t, "1234", c)
	assert.Equal(t, "4321", r)
}

func TestFromRequestMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c, r := FromRequest(req)
	assert.Empty(t, c)
	assert.Empty(t, r)
}

func TestFieldMarkup(t *testing.T) {
	html := string(Field("abc123"))
	assert.Contains(t, html, `type="hidden"`)
	assert.Contains(t, html, `name="polite_challenge"`)
	assert.Contains(t, html, `value="abc123"`)
}

func TestScriptNamesBothFields(t *testing.T) {
	s := string(Script())
	assert.True(t, strings.HasPrefix(s, "<script>"))
	assert.Contains(t, s, `input[name="polite_challenge"]`)
	assert.Contains(t, s, `'polite_response'`)
	assert.Contains(t, s, "reverse()")
}

func TestScriptPairsResponseWithItsOwnField(t *testing.T) {
	s := string(Script())
	assert.Contains(t, s, "field.nextElementSibling")
	assert.Contains(t, s, "insertAdjacentElement('afterend'")
	assert.NotContains(t, s, "parentNode.querySelector", "a shared parent must not hand one response to several fields")
}
