// Package store persists dialogue state between turns. One snapshot per
// session id; round-tripping a snapshot reproduces the same orchestration
// trajectory. Backends: in-process memory, a directory of JSON files and a
// Postgres table.
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"tutor-bot/internal/dialogue"
)

var ErrNotFound = sql.ErrNoRows

// Store persists one state snapshot per session id.
type Store interface {
	Load(ctx context.Context, id string) (*dialogue.GraphState, error)
	Save(ctx context.Context, id string, st *dialogue.GraphState) error
	Delete(ctx context.Context, id string) error
}

// decodeState unmarshals a stored snapshot and restores the invariant a
// fresh state carries: the item map is never nil.
func decodeState(js []byte) (*dialogue.GraphState, error) {
	var st dialogue.GraphState
	if err := json.Unmarshal(js, &st); err != nil {
		return nil, err
	}
	if st.LearningItems == nil {
		st.LearningItems = map[string]*dialogue.LearningItem{}
	}
	return &st, nil
}
