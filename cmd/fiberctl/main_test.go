package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/fiber/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDemoListsScenarios(t *testing.T) {
	out, err := execute(t, "demo", "-C", t.TempDir())
	require.NoError(t, err)
	for _, s := range scenarios {
		assert.Contains(t, out, s.name)
	}
}

func TestDemoUnknownScenario(t *testing.T) {
	_, err := execute(t, "demo", "nope", "-C", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, "F040", errors.Code(err))

	var fe *errors.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "nope", fe.Subject)
	assert.Equal(t, "Available scenarios: reorder, counter, effects, preempt", fe.Suggestion)
}

func TestDemoScenarios(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"reorder", []string{"reverse to [e d c b a]", "li[d]", "insert", "remove"}},
		{"counter", []string{"clicked 3 times", "set-text"}},
		{"effects", []string{"effect: mount", "effect: subscribe parity 1", "effect: unsubscribe parity 0", "effect: unmount"}},
		{"preempt", []string{"paused render on lane default", "status busy", "sync", "default"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "demo", tt.name, "-C", t.TempDir())
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestEffectsOrder(t *testing.T) {
	out, err := execute(t, "demo", "effects", "-C", t.TempDir())
	require.NoError(t, err)

	unsubscribe := strings.Index(out, "effect: unsubscribe parity 0")
	subscribe := strings.Index(out, "effect: subscribe parity 1")
	require.NotEqual(t, -1, unsubscribe)
	assert.Less(t, unsubscribe, subscribe, "cleanups run before new effects")
}

func TestConfigPrintsDefaults(t *testing.T) {
	out, err := execute(t, "config", "-C", t.TempDir(), "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "addr: localhost:7070")
	assert.Contains(t, out, "namespace: fiber")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "config", "init", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "fiber.json")
	_, statErr := os.Stat(filepath.Join(dir, "fiber.json"))
	assert.NoError(t, statErr)

	_, err = execute(t, "config", "init", "-C", dir)
	require.Error(t, err, "an existing file is not overwritten")
	assert.Equal(t, "F043", errors.Code(err))

	var fe *errors.Error
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.Suggestion)
}

func TestConfigRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fiber.json"), []byte(`{"maxRenderRetries": -2}`), 0644))

	_, err := execute(t, "demo", "counter", "-C", dir)
	require.Error(t, err)
	assert.Equal(t, "F021", errors.Code(err))
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestErrorsListsCodes(t *testing.T) {
	out, err := execute(t, "errors")
	require.NoError(t, err)
	for _, code := range errors.GetAllCodes() {
		assert.Contains(t, out, code)
	}
	assert.Contains(t, out, "Duplicate key among siblings")
}

func TestErrorsExplainsCode(t *testing.T) {
	out, err := execute(t, "errors", "F002", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "ERROR F002: Rendered more hooks")
	assert.Contains(t, out, "Hint: Move conditional hook calls")
	assert.NotContains(t, out, "\033[")

	_, err = execute(t, "errors", "F999")
	require.Error(t, err)
	assert.Equal(t, "F042", errors.Code(err))
}

func TestReportErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, errors.New("F040").WithSubject("nope"), true)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "F040", decoded["code"])
	assert.Equal(t, "nope", decoded["subject"])
	assert.Equal(t, "cli", decoded["category"])

	buf.Reset()
	reportError(&buf, fmt.Errorf("unknown flag: --bogus"), true)
	decoded = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "F041", decoded["code"])
	assert.Equal(t, "unknown flag: --bogus", decoded["cause"])
}

func TestReportErrorText(t *testing.T) {
	_, err := execute(t, "demo", "--no-color")
	require.NoError(t, err)

	var buf bytes.Buffer
	reportError(&buf, errors.New("F040").WithSubject("nope"), false)
	assert.Contains(t, buf.String(), "ERROR F040: Unknown demo scenario")
	assert.Contains(t, buf.String(), "Hint:")
}
