// Package handle exposes the tutoring dialogue over HTTP: one endpoint
// runs a turn, one inspects or deletes a stored session.
package handle

import (
	"encoding/json"
	"net/http"

	"tutor-bot/internal/llm"
	"tutor-bot/internal/store"
)

type Handle struct {
	engs    *llm.Engines
	manager *llm.Manager
	store   store.Store
}

func New(engs *llm.Engines, manager *llm.Manager, st store.Store) *Handle {
	return &Handle{
		engs:    engs,
		manager: manager,
		store:   st,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
