package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// Event list limits.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

// EventsHandler serves the gesture journal: GET /api/events?limit=n and
// GET /api/events/{id}.
type EventsHandler struct {
	ctl Controller
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(ctl Controller) *EventsHandler {
	return &EventsHandler{ctl: ctl}
}

type listEventsResponse struct {
	Events []*store.Event `json:"events"`
}

type eventResponse struct {
	*store.Event
	HookRuns []*store.HookRun `json:"hookRuns"`
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/events"), "/")
	if id == "" {
		h.list(w, r)
		return
	}
	h.get(w, id)
}

func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventLimit)
	}

	events, err := h.ctl.Events(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []*store.Event{}
	}

	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

func (h *EventsHandler) get(w http.ResponseWriter, id string) {
	e, runs, err := h.ctl.Event(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	if runs == nil {
		runs = []*store.HookRun{}
	}

	writeJSON(w, http.StatusOK, eventResponse{Event: e, HookRuns: runs})
}

// HooksHandler serves GET /api/hooks.
type HooksHandler struct {
	ctl Controller
}

// NewHooksHandler creates a HooksHandler.
func NewHooksHandler(ctl Controller) *HooksHandler {
	return &HooksHandler{ctl: ctl}
}

type hookResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Gestures    []string `json:"gestures"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

func (h *HooksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hooks := h.ctl.Hooks()
	response := listHooksResponse{Hooks: make([]hookResponse, 0, len(hooks))}
	for _, hk := range hooks {
		response.Hooks = append(response.Hooks, hookResponse{
			Name:        hk.Manifest.Name,
			Version:     hk.Manifest.Version,
			Description: hk.Manifest.Description,
			Gestures:    hk.Manifest.Gestures,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
