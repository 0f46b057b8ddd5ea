// Package main is a gesture hook that sends macOS keystrokes.
//
// The hook.json settings map committed gestures to keys:
//
//	{"keys": {"point": {"key": "]", "modifiers": ["command"]}}}
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Request is the gesture event written by the hook executor.
type Request struct {
	Event    string          `json:"event"`
	Gesture  string          `json:"gesture"`
	Previous string          `json:"previous"`
	Shape    string          `json:"shape"`
	Color    string          `json:"color"`
	Tension  float64         `json:"tension"`
	Settings json.RawMessage `json:"settings"`
}

// Response is read back by the hook executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Keystroke is one key with optional modifiers.
type Keystroke struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// Settings maps gesture names to keystrokes.
type Settings struct {
	Keys map[string]Keystroke `json:"keys"`
}

var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	resp := handle(os.Stdin, runAppleScript)
	json.NewEncoder(os.Stdout).Encode(resp)
}

func handle(r io.Reader, run func(script string) error) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
	}

	var s Settings
	if len(req.Settings) > 0 {
		if err := json.Unmarshal(req.Settings, &s); err != nil {
			return Response{Error: fmt.Sprintf("failed to parse settings: %v", err)}
		}
	}

	ks, ok := s.Keys[req.Gesture]
	if !ok {
		return Response{Error: fmt.Sprintf("no key for gesture %q", req.Gesture)}
	}
	if ks.Key == "" {
		return Response{Error: "key is required"}
	}

	if err := run(buildKeystrokeScript(ks.Key, ks.Modifiers)); err != nil {
		return Response{Error: fmt.Sprintf("keystroke failed: %v", err)}
	}
	return Response{Success: true}
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}

	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, strings.Join(appleModifiers, ", "))
}

func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
