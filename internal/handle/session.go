package handle

import (
	"errors"
	"net/http"
	"strings"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/store"
)

type sessionResp struct {
	SessionID string               `json:"sessionId"`
	State     *dialogue.GraphState `json:"state"`
}

// Session serves the stored snapshot under /v1/session/{id}: GET inspects,
// DELETE drops it.
func (h *Handle) Session(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/session/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		state, err := h.store.Load(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "load session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sessionResp{SessionID: id, State: state})

	case http.MethodDelete:
		if err := h.store.Delete(r.Context(), id); err != nil {
			http.Error(w, "delete session: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "GET or DELETE only", http.StatusMethodNotAllowed)
	}
}
