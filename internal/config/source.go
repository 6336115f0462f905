package config

import (
	"context"
	"os"
	"strings"
)

// Well-known configuration keys.
const (
	PublicKeyKey  = "recaptcha_public_key"
	PrivateKeyKey = "recaptcha_private_key"
)

// Source resolves named configuration values. A missing key is reported as
// ok=false with a nil error; err is reserved for a store that could not be read.
type Source interface {
	Value(ctx context.Context, key string) (value string, ok bool, err error)
}

// MapSource is a fixed in-memory Source.
type MapSource map[string]string

func (m MapSource) Value(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

// EnvPrefix is prepended to upper-cased keys by EnvSource.
const EnvPrefix = "POLITECAPTCHA_"

// EnvSource reads keys from the process environment, e.g.
// recaptcha_private_key → POLITECAPTCHA_RECAPTCHA_PRIVATE_KEY.
type EnvSource struct{}

func (EnvSource) Value(_ context.Context, key string) (string, bool, error) {
	v, ok := os.LookupEnv(EnvName(key))
	return v, ok, nil
}

// EnvName returns the environment variable EnvSource reads for key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Chain consults each Source in order and returns the first non-blank value.
// A blank value falls through like a missing one. The first error stops the
// lookup.
type Chain []Source

func (c Chain) Value(ctx context.Context, key string) (string, bool, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		v, ok, err := s.Value(ctx, key)
		if err != nil {
			return "", false, err
		}
		if ok && strings.TrimSpace(v) != "" {
			return v, true, nil
		}
	}
	return "", false, nil
}
