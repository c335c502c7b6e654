package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/graph"
	"tutor-bot/internal/store"
)

type turnReq struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
	Engine    string `json:"engine,omitempty"`
}

type turnResp struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
	Done      bool   `json:"done"`
	Phase     string `json:"phase,omitempty"`
	Level     int    `json:"level,omitempty"`
	Goal      string `json:"goal,omitempty"`
}

// Turn runs one orchestration pass. An empty sessionId starts a fresh
// session; an unknown or expired one restarts transparently.
func (h *Handle) Turn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req turnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	deadline := 60 * time.Second
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), deadline)
	defer cancel()

	sid := strings.TrimSpace(req.SessionID)
	var state *dialogue.GraphState
	if sid == "" {
		sid = uuid.NewString()
		state = dialogue.NewGraphState()
	} else {
		var err error
		state, err = h.store.Load(ctx, sid)
		if errors.Is(err, store.ErrNotFound) {
			state = dialogue.NewGraphState()
		} else if err != nil {
			http.Error(w, "load session: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if req.Engine != "" {
		eng, err := h.engs.Get(req.Engine)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.manager.Set(sid, eng)
	}

	res := graph.New(h.manager.Get(sid)).RunTurn(ctx, state, req.Input)

	if err := h.store.Save(ctx, sid, state); err != nil {
		http.Error(w, "save session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	out := turnResp{SessionID: sid, Reply: res.Reply, Done: res.Done}
	if item := state.ActiveItem(); item != nil {
		out.Phase = string(dialogue.DetectPhase(item))
		out.Level = int(item.CurrentLevel)
		out.Goal = item.Goal
	}
	writeJSON(w, http.StatusOK, out)
}
