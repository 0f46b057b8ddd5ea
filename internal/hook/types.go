// Package hook runs external executables when a gesture is committed.
//
// A hook is a directory holding a hook.json manifest and an executable. The
// executable receives one JSON Request on stdin and answers with one JSON
// Response on stdout.
package hook

import (
	"encoding/json"
	"slices"
)

// ManifestFile is the manifest name looked up in every hook directory.
const ManifestFile = "hook.json"

// AnyGesture subscribes a hook to every committed gesture.
const AnyGesture = "*"

// Manifest describes a hook.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Gestures    []string `json:"gestures"`
	// Settings is passed through to the hook untouched.
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Request is written to the hook's stdin.
type Request struct {
	Event    string          `json:"event"`
	Gesture  string          `json:"gesture"`
	Previous string          `json:"previous"`
	Shape    string          `json:"shape"`
	Color    string          `json:"color"`
	Tension  float64         `json:"tension"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook and its location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribed to gesture.
func (h *Hook) Handles(gesture string) bool {
	return slices.Contains(h.Manifest.Gestures, AnyGesture) || slices.Contains(h.Manifest.Gestures, gesture)
}
