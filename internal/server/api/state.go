package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/shape"
	"github.com/ayusman/mudra/internal/tracker"
)

// StateHandler serves GET /api/state.
type StateHandler struct {
	ctl Controller
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(ctl Controller) *StateHandler {
	return &StateHandler{ctl: ctl}
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.Snapshot())
}

// SignalHandler serves POST /api/signal, the entry point for a remote
// tension and gesture source.
type SignalHandler struct {
	ctl Controller
}

// NewSignalHandler creates a SignalHandler.
func NewSignalHandler(ctl Controller) *SignalHandler {
	return &SignalHandler{ctl: ctl}
}

func (h *SignalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sig app.Signal
	if err := json.NewDecoder(r.Body).Decode(&sig); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch err := h.ctl.SetSignal(sig); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, app.ErrLocalSignal):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidSignal):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Failed to apply signal")
	}
}

// TrackingHandler serves POST /api/tracking/start and /api/tracking/stop.
type TrackingHandler struct {
	ctl Controller
}

// NewTrackingHandler creates a TrackingHandler.
func NewTrackingHandler(ctl Controller) *TrackingHandler {
	return &TrackingHandler{ctl: ctl}
}

type trackingResponse struct {
	Tracking bool `json:"tracking"`
}

func (h *TrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/tracking/") {
	case "start":
		if err := h.ctl.StartTracking(); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, tracker.ErrRemoteSignal) || errors.Is(err, app.ErrNoTracker) {
				status = http.StatusConflict
			}
			writeError(w, status, err.Error())
			return
		}
	case "stop":
		h.ctl.StopTracking()
	default:
		writeError(w, http.StatusNotFound, "Unknown tracking action")
		return
	}

	writeJSON(w, http.StatusOK, trackingResponse{Tracking: h.ctl.Tracking()})
}

// ShapesHandler serves GET /api/shapes: the shape catalog and the look each
// special gesture switches to.
type ShapesHandler struct{}

type shapesResponse struct {
	Shapes   []shape.Kind                  `json:"shapes"`
	Gestures map[gesture.Type]gesture.Look `json:"gestures"`
}

func (ShapesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, shapesResponse{
		Shapes:   shape.Kinds(),
		Gestures: gesture.DefaultMapping(),
	})
}
