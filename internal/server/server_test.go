package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/vmath"
)

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "ok", response["status"])
		assert.Contains(t, response, "uptime")
	})

	t.Run("only allows GET method", func(t *testing.T) {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/nonexistent", "/api/state", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestServer_Shapes(t *testing.T) {
	rec := httptest.NewRecorder()
	New(Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shapes", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"saturn"`)
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()

	testContent := "<html><body>mudra</body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(testContent), 0o644))
	jsContent := "console.log('points')"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "viewer.js"), []byte(jsContent), 0o644))

	s := New(Config{StaticDir: dir})

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{name: "index at root", path: "/", status: http.StatusOK, body: testContent},
		{name: "direct file", path: "/viewer.js", status: http.StatusOK, body: jsContent},
		{name: "missing file", path: "/nonexistent.html", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	f := morph.Frame{
		Positions: []vmath.Vec3{{X: 1, Y: -2, Z: 0.5}, {X: 0, Y: 0, Z: 4}},
		Display: morph.Display{
			PointSize: 0.05,
			Opacity:   0.8,
			RotationX: 0.1,
			RotationY: 3,
			Color:     "#FF69B4",
		},
	}

	buf := EncodeFrame(f)
	require.Len(t, buf, FrameHeaderSize+2*12)

	h, coords, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), h.Count)
	assert.InDelta(t, 0.05, h.PointSize, 1e-6)
	assert.InDelta(t, 0.8, h.Opacity, 1e-6)
	assert.InDelta(t, 0.1, h.RotationX, 1e-6)
	assert.InDelta(t, 3.0, h.RotationY, 1e-6)
	assert.Equal(t, uint32(0xFF69B4), h.RGB)
	assert.Equal(t, []float32{1, -2, 0.5, 0, 0, 4}, coords)

	// Layout is fixed: count first, little-endian.
	assert.Equal(t, []byte{2, 0, 0, 0}, buf[:4])
}

func TestEncodeFrame_Edges(t *testing.T) {
	buf := EncodeFrame(morph.Frame{Display: morph.Display{Color: "bogus"}})
	h, coords, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.Zero(t, h.Count)
	assert.Empty(t, coords)
	assert.Equal(t, uint32(0xFFFFFF), h.RGB)

	_, _, err = DecodeFrame(buf[:10])
	assert.ErrorIs(t, err, ErrShortFrame)

	full := EncodeFrame(morph.Frame{Positions: make([]vmath.Vec3, 3)})
	_, _, err = DecodeFrame(full[:len(full)-1])
	assert.ErrorIs(t, err, ErrShortFrame)
}
