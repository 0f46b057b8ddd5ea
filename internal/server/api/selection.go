package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/shape"
)

// SelectionHandler serves GET and PUT /api/selection.
type SelectionHandler struct {
	ctl Controller
}

// NewSelectionHandler creates a SelectionHandler.
func NewSelectionHandler(ctl Controller) *SelectionHandler {
	return &SelectionHandler{ctl: ctl}
}

// updateSelectionRequest holds the fields to change; absent fields keep
// their current value.
type updateSelectionRequest struct {
	Shape *string `json:"shape"`
	Color *string `json:"color"`
	Count *int    `json:"count"`
	Text  *string `json:"text"`
}

func (h *SelectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctl.Selection())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SelectionHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sel := h.ctl.Selection()
	if req.Shape != nil {
		sel.Shape = shape.Kind(*req.Shape)
	}
	if req.Color != nil {
		sel.Color = *req.Color
	}
	if req.Count != nil {
		sel.Count = *req.Count
	}
	if req.Text != nil {
		sel.Text = *req.Text
	}

	if err := h.ctl.SetSelection(sel); err != nil {
		if errors.Is(err, app.ErrInvalidSelection) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save selection")
		return
	}

	writeJSON(w, http.StatusOK, h.ctl.Selection())
}
