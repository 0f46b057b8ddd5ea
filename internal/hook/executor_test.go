package hook

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeHook creates dir/name with a hook.json manifest and a shell executable.
func writeHook(t *testing.T, dir, name, script string, gestures ...string) *Hook {
	t.Helper()

	hookDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(hookDir, 0o755))

	manifest := Manifest{
		Name:       name,
		Version:    "1.0.0",
		Executable: "run.sh",
		Gestures:   gestures,
		Settings:   json.RawMessage(`{"level":3}`),
	}
	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(hookDir, ManifestFile), data, 0o644))

	exe := filepath.Join(hookDir, "run.sh")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"+script), 0o755))

	return &Hook{Manifest: manifest, Path: hookDir, Executable: exe}
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts need a POSIX shell")
	}
}

func TestExecutor_Run(t *testing.T) {
	skipOnWindows(t)

	h := writeHook(t, t.TempDir(), "ok", `echo '{"success":true,"data":{"message":"hello"}}'`, "love")

	resp, err := NewExecutor(5*time.Second).Run(context.Background(), h, Request{Gesture: "love"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.JSONEq(t, `{"message":"hello"}`, string(resp.Data))
}

func TestExecutor_Run_ReadsStdin(t *testing.T) {
	skipOnWindows(t)

	h := writeHook(t, t.TempDir(), "echo", `INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"`, AnyGesture)

	req := Request{Event: "commit", Gesture: "victory", Previous: "open", Shape: "text", Color: "#FFD700", Tension: 0.25}
	resp, err := NewExecutor(0).Run(context.Background(), h, req)
	require.NoError(t, err)

	var got Request
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "victory", got.Gesture)
	assert.Equal(t, "open", got.Previous)
	assert.Equal(t, "#FFD700", got.Color)
	assert.InDelta(t, 0.25, got.Tension, 1e-12)
	assert.JSONEq(t, `{"level":3}`, string(got.Settings), "manifest settings forwarded")
}

func TestExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)

	h := writeHook(t, t.TempDir(), "slow", "sleep 10\necho '{\"success\":true}'", "fist")

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Run(context.Background(), h, Request{Gesture: "fist"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecutor_Failures(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		script string
		errMsg string
	}{
		{name: "non-zero exit", script: "echo boom >&2\nexit 3", errMsg: "boom"},
		{name: "garbage output", script: "echo not-json", errMsg: "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := writeHook(t, dir, tt.name, tt.script, AnyGesture)
			_, err := NewExecutor(time.Second).Run(context.Background(), h, Request{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestExecutor_ReportedFailure(t *testing.T) {
	skipOnWindows(t)

	h := writeHook(t, t.TempDir(), "nope", `echo '{"success":false,"error":"unknown gesture"}'`, AnyGesture)

	resp, err := NewExecutor(time.Second).Run(context.Background(), h, Request{Gesture: "point"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown gesture", resp.Error)
}
