// Package llm defines the collaborator boundary: the engine interface the
// orchestration talks to, the provider registry and the shared parsing of
// model replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"tutor-bot/internal/dialogue"
)

// AssessRequest carries the learner's answer plus the item snapshot the
// assessment model needs for context.
type AssessRequest struct {
	Input        string `json:"input"`
	Goal         string `json:"goal"`
	Summary      string `json:"summary"`
	MissingParts string `json:"missingParts,omitempty"`
}

// Assessment is the validated verdict of the assessment collaborator.
type Assessment struct {
	CognitiveState dialogue.CognitiveStateLabel `json:"cognitiveState"`
	Reasoning      string                       `json:"reasoning"`
}

// GuideRequest carries one composed guidance call: the system instruction,
// the recent transcript window and the sampling temperature.
type GuideRequest struct {
	System      string
	History     []dialogue.Message
	Temperature float32
}

type Engine interface {
	Name() string
	GetModel() string
	ExtractGoal(ctx context.Context, utterance string) (string, error)
	Assess(ctx context.Context, in AssessRequest) (Assessment, error)
	Guide(ctx context.Context, in GuideRequest) (string, error)
}

// Manager hands out the engine for a session, honoring per-session
// overrides.
type Manager struct {
	def Engine
	m   sync.Map // sessionID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(sessionID string) Engine {
	if v, ok := m.m.Load(sessionID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(sessionID string, e Engine) {
	m.m.Store(sessionID, e)
}

// Engines is the set of configured providers, resolvable by name.
type Engines struct {
	Gemini   Engine
	Deepseek Engine
}

func (e *Engines) Get(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		if e.Gemini == nil {
			return nil, errors.New("gemini is not configured")
		}
		return e.Gemini, nil
	case "deepseek":
		if e.Deepseek == nil {
			return nil, errors.New("deepseek is not configured")
		}
		return e.Deepseek, nil
	default:
		return nil, fmt.Errorf("unknown engine %q; use gemini or deepseek", name)
	}
}
