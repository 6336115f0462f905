package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decisions.jsonl")
	l, err := Open(path)
	require.NoError(t, err)
	return l, path
}

func testEntry(passed bool, stage string) Entry {
	req := httptest.NewRequest(http.MethodPost, "/feedback?x=1", nil)
	return NewEntry(req, "req-1", passed, stage, nil)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestNewEntry(t *testing.T) {
	e := testEntry(true, "honeypot")
	assert.Equal(t, "POST", e.Method)
	assert.Equal(t, "/feedback", e.Path)
	assert.Equal(t, "req-1", e.RequestID)
	assert.NotEmpty(t, e.Timestamp)
	assert.Empty(t, e.Error)

	e = NewEntry(nil, "req-2", false, "", errors.New("provider down"))
	assert.Equal(t, "provider down", e.Error)
	assert.Empty(t, e.Path)
}

func TestSequentialWritesProduceValidChain(t *testing.T) {
	l, path := newTestLog(t)
	require.NoError(t, l.Record(testEntry(true, "honeypot")))
	require.NoError(t, l.Record(testEntry(true, "captcha")))
	require.NoError(t, l.Record(testEntry(false, "escalated")))
	require.NoError(t, l.Close())

	res := Verify(path)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, 2, res.Passed)
	assert.Equal(t, 1, res.Escalated)
}

func TestFirstEntryReferencesGenesis(t *testing.T) {
	l, path := newTestLog(t)
	require.NoError(t, l.Record(testEntry(true, "honeypot")))
	l.Close()

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(readLines(t, path)[0]), &e))
	assert.Equal(t, GenesisHash, e.PrevHash)
}

func TestReopenContinuesChain(t *testing.T) {
	l, path := newTestLog(t)
	require.NoError(t, l.Record(testEntry(true, "honeypot")))
	l.Close()

	l2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l2.Record(testEntry(false, "escalated")))
	l2.Close()

	res := Verify(path)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, 2, res.Lines)
}

func TestVerifyDetectsTamperedEntry(t *testing.T) {
	l, path := newTestLog(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Record(testEntry(false, "escalated")))
	}
	l.Close()

	lines := readLines(t, path)
	lines[1] = strings.Replace(lines[1], `"passed":false`, `"passed":true`, 1)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600))

	res := Verify(path)
	assert.False(t, res.Valid)
	assert.Equal(t, 3, res.ErrorLine)
}

func TestVerifyDetectsDeletedEntry(t *testing.T) {
	l, path := newTestLog(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Record(testEntry(true, "honeypot")))
	}
	l.Close()

	lines := readLines(t, path)
	kept := []string{lines[0], lines[2]}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(kept, "\n")+"\n"), 0600))

	res := Verify(path)
	assert.False(t, res.Valid)
	assert.Equal(t, 2, res.ErrorLine)
}

func TestVerifyMissingFile(t *testing.T) {
	res := Verify(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Error)
}

func TestConcurrentWritesKeepChain(t *testing.T) {
	l, path := newTestLog(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, l.Record(testEntry(true, "honeypot")))
			}
		}()
	}
	wg.Wait()
	l.Close()

	res := Verify(path)
	require.True(t, res.Valid, res.Error)
	assert.Equal(t, 100, res.Lines)
}
