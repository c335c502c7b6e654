package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tutor-bot/internal/dialogue"
)

// File keeps one JSON file per session under a directory.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: dir}, nil
}

// path maps a session id to its file. Ids that could escape the directory
// are rejected outright.
func (s *File) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("bad session id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *File) Load(_ context.Context, id string) (*dialogue.GraphState, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	js, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	st, err := decodeState(js)
	if err != nil {
		// A snapshot that no longer parses reads as absent.
		return nil, ErrNotFound
	}
	return st, nil
}

func (s *File) Save(_ context.Context, id string, st *dialogue.GraphState) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	js, _ := json.Marshal(st)
	return os.WriteFile(p, js, 0o600)
}

func (s *File) Delete(_ context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
