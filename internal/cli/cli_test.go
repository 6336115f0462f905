package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/politecaptcha/internal/audit"
	"github.com/ppiankov/politecaptcha/internal/captcha"
	"github.com/ppiankov/politecaptcha/internal/config"
	"github.com/ppiankov/politecaptcha/internal/honeypot"
	"github.com/ppiankov/politecaptcha/internal/recaptcha"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel = "", ""
	keysLocal, serveAddr, tailLines = false, "", 10

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func clearKeyEnv(t *testing.T) {
	t.Setenv(config.EnvName(config.PublicKeyKey), "")
	t.Setenv(config.EnvName(config.PrivateKeyKey), "")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "politecaptcha", info["name"])
	assert.Equal(t, version, info["version"])
}

func TestMintThenVerify(t *testing.T) {
	out, err := run(t, "mint")
	require.NoError(t, err)

	var pair map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &pair))
	challenge, response := pair[honeypot.ChallengeField], pair[honeypot.ResponseField]
	assert.Len(t, challenge, 32)

	out, err = run(t, "verify", challenge, response)
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)
}

func TestVerifyMismatch(t *testing.T) {
	out, err := run(t, "verify", "abc", "abc")
	require.ErrorIs(t, err, errMismatch)
	assert.Equal(t, "MISMATCH\n", out)

	_, err = run(t, "verify", "abc")
	require.Error(t, err)
}

func TestKeysLocalFallsBackToDevelopment(t *testing.T) {
	clearKeyEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := run(t, "keys", "--config", cfgPath, "--local")
	require.NoError(t, err)

	var report keysReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Development)
	assert.Equal(t, recaptcha.LocalhostPublicKey, report.PublicKey)
	assert.NotContains(t, out, recaptcha.LocalhostPrivateKey)
}

func TestKeysNonLocalRequiresConfiguration(t *testing.T) {
	clearKeyEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := run(t, "keys", "--config", cfgPath)
	require.ErrorIs(t, err, captcha.ErrConfiguration)
}

func TestKeysFromFile(t *testing.T) {
	clearKeyEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("keys_file: keys.yaml\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keys.yaml"),
		[]byte("keys:\n  recaptcha_public_key: site-public\n  recaptcha_private_key: site-private-1234\n"), 0o600))

	out, err := run(t, "keys", "--config", cfgPath)
	require.NoError(t, err)

	var report keysReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "site-public", report.PublicKey)
	assert.Equal(t, "*************1234", report.PrivateKey)
	assert.False(t, report.Development)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", mask(""))
	assert.Equal(t, "***", mask("abc"))
	assert.Equal(t, "**cdef", mask("abcdef"))
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "keys", "--config", filepath.Join(t.TempDir(), "x.yaml"), "--log-level", "loud")
	require.Error(t, err)
}

func writeDecisions(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decisions.jsonl")
	l, err := audit.Open(path)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/feedback", nil)
	require.NoError(t, l.Record(audit.NewEntry(req, "req-1", true, "honeypot", nil)))
	require.NoError(t, l.Record(audit.NewEntry(req, "req-2", false, "escalated", nil)))
	require.NoError(t, l.Close())
	return path
}

func TestAuditVerify(t *testing.T) {
	path := writeDecisions(t)

	out, err := run(t, "audit", "verify", path)
	require.NoError(t, err)
	assert.Equal(t, "OK: 2 entries verified (1 passed, 1 escalated)\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := bytes.Replace(data, []byte(`"req-1"`), []byte(`"req-9"`), 1)
	require.NoError(t, os.WriteFile(path, tampered, 0o644))

	_, err = run(t, "audit", "verify", path)
	require.Error(t, err)
}

func TestAuditTail(t *testing.T) {
	path := writeDecisions(t)

	out, err := run(t, "audit", "tail", "-n", "1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "req-2")
	assert.NotContains(t, out, "req-1")
}
