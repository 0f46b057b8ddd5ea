// Package api provides the JSON handlers of the mudra HTTP API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/store"
)

// Controller is the application surface the handlers drive.
type Controller interface {
	Snapshot() app.Snapshot
	Selection() app.Selection
	SetSelection(app.Selection) error
	SetSignal(app.Signal) error
	StartTracking() error
	StopTracking()
	Tracking() bool
	Events(limit int) ([]*store.Event, error)
	Event(id string) (*store.Event, []*store.HookRun, error)
	Hooks() []*hook.Hook
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
