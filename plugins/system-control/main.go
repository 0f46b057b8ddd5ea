// Package main is a gesture hook for macOS media, volume and brightness keys.
//
// The hook.json settings map committed gestures to actions:
//
//	{"actions": {"love": "media-play-pause", "thumbs_up": "volume-up"}}
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
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

// Settings maps gesture names to action names.
type Settings struct {
	Actions map[string]string `json:"actions"`
}

// defaultActions applies when the manifest carries no mapping.
var defaultActions = map[string]string{
	"love":      "media-play-pause",
	"thumbs_up": "volume-up",
	"point":     "media-next",
}

var actionScripts = map[string]string{
	"volume-up":        `set volume output volume ((output volume of (get volume settings)) + 10)`,
	"volume-down":      `set volume output volume ((output volume of (get volume settings)) - 10)`,
	"volume-mute":      `set volume output muted (not (output muted of (get volume settings)))`,
	"brightness-up":    "tell application \"System Events\"\n\tkey code 144\nend tell",
	"brightness-down":  "tell application \"System Events\"\n\tkey code 145\nend tell",
	"media-play-pause": "tell application \"System Events\"\n\tkey code 100\nend tell",
	"media-next":       "tell application \"System Events\"\n\tkey code 101\nend tell",
	"media-prev":       "tell application \"System Events\"\n\tkey code 98\nend tell",
}

func main() {
	resp := handle(os.Stdin, runAppleScript)
	json.NewEncoder(os.Stdout).Encode(resp)
}

// handle decodes one request from r and runs the mapped action through run.
func handle(r io.Reader, run func(script string) error) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
	}

	action, err := resolveAction(req)
	if err != nil {
		return Response{Error: err.Error()}
	}

	script, ok := actionScripts[action]
	if !ok {
		return Response{Error: fmt.Sprintf("unknown action: %s", action)}
	}

	if err := run(script); err != nil {
		return Response{Error: fmt.Sprintf("action %s failed: %v", action, err)}
	}

	data, _ := json.Marshal(map[string]string{"action": action})
	return Response{Success: true, Data: data}
}

// resolveAction picks the action for req.Gesture from the settings, falling
// back to defaultActions when no mapping is configured.
func resolveAction(req Request) (string, error) {
	actions := defaultActions
	if len(req.Settings) > 0 {
		var s Settings
		if err := json.Unmarshal(req.Settings, &s); err != nil {
			return "", fmt.Errorf("failed to parse settings: %w", err)
		}
		if len(s.Actions) > 0 {
			actions = s.Actions
		}
	}

	action, ok := actions[req.Gesture]
	if !ok {
		return "", fmt.Errorf("no action for gesture %q", req.Gesture)
	}
	return action, nil
}

func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
