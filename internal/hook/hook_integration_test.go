package hook

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs the bundled hooks when their binaries have been built in place, e.g.
// go build -o plugins/system-control/system-control ./plugins/system-control
func TestBundledHooks_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dir := filepath.Join("..", "..", "plugins")
	r := NewRegistry(dir, zerolog.Nop())
	require.NoError(t, r.Discover())

	tests := []struct {
		hook    string
		gesture string
	}{
		{hook: "system-control", gesture: "victory"},
		{hook: "keyboard", gesture: "love"},
	}

	for _, tt := range tests {
		t.Run(tt.hook, func(t *testing.T) {
			h, err := r.Get(tt.hook)
			require.NoError(t, err)

			if _, err := os.Stat(h.Executable); err != nil {
				t.Skipf("%s not built", tt.hook)
			}

			// An unmapped gesture fails inside the hook without side effects.
			resp, err := NewExecutor(5*time.Second).Run(context.Background(), h, Request{Gesture: tt.gesture})
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.gesture)
		})
	}
}
