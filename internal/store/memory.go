package store

import (
	"context"
	"encoding/json"
	"sync"

	"tutor-bot/internal/dialogue"
)

// Memory keeps snapshots in process memory. Snapshots are held as the
// serialized bytes so callers never share live pointers with the store.
type Memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: map[string][]byte{}}
}

func (s *Memory) Load(_ context.Context, id string) (*dialogue.GraphState, error) {
	s.mu.Lock()
	js, ok := s.m[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	st, err := decodeState(js)
	if err != nil {
		return nil, ErrNotFound
	}
	return st, nil
}

func (s *Memory) Save(_ context.Context, id string, st *dialogue.GraphState) error {
	js, _ := json.Marshal(st)
	s.mu.Lock()
	s.m[id] = js
	s.mu.Unlock()
	return nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
	return nil
}
