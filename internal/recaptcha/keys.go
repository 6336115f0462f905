// Package recaptcha is the provider-backed implementation of the captcha
// capabilities, speaking the reCAPTCHA challenge/response protocol.
package recaptcha

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/politecaptcha/internal/captcha"
	"github.com/ppiankov/politecaptcha/internal/config"
)

// Development key pair, valid only for requests from localhost.
const (
	LocalhostPublicKey  = "6LehOM0SAAAAAPgsjOy-6_grqy1JiB_W_jJa_aCw"
	LocalhostPrivateKey = "6LehOM0SAAAAAKzKqSmTb1fXRSw7ZtNEpoF7lPuu"
)

// ErrDevelopmentKeysNotAllowed is returned when credentials are missing for
// a non-local request.
var ErrDevelopmentKeysNotAllowed = fmt.Errorf("%w: default reCAPTCHA API keys are only allowed for local requests; configure %s and %s",
	captcha.ErrConfiguration, config.PublicKeyKey, config.PrivateKeyKey)

// KeyPair is the provider credential pair.
type KeyPair struct {
	Public  string
	Private string
}

// ResolveKeys looks up both keys. A missing key falls back to the
// development key only when local is true.
func ResolveKeys(ctx context.Context, src config.Source, local bool) (KeyPair, error) {
	pub, err := resolveKey(ctx, src, config.PublicKeyKey, LocalhostPublicKey, local)
	if err != nil {
		return KeyPair{}, err
	}
	priv, err := resolveKey(ctx, src, config.PrivateKeyKey, LocalhostPrivateKey, local)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// resolveKey treats an empty value the same as a missing one.
func resolveKey(ctx context.Context, src config.Source, key, fallback string, local bool) (string, error) {
	if src != nil {
		v, ok, err := src.Value(ctx, key)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", key, err)
		}
		if ok && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	if !local {
		return "", ErrDevelopmentKeysNotAllowed
	}
	return fallback, nil
}
