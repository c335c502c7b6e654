// Package gemini implements the engine contract on Google's hosted Gemini
// models through the official SDK.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/prompt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// ExtractGoal distills the learner's first utterance into one goal line.
func (e *Engine) ExtractGoal(ctx context.Context, utterance string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(e.Model))
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(prompt.TempJSON),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemGoalExtract)},
	}

	userObj := map[string]any{
		"task":  "提取学习目标，只返回约定的 JSON。",
		"input": map[string]string{"utterance": utterance},
	}
	userJSON, _ := json.Marshal(userObj)

	parts := []genai.Part{genai.Text("INPUT_JSON:\n" + string(userJSON))}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return "", fmt.Errorf("gemini goal: empty response")
		}
		goal, err := llm.ParseGoal(txt)
		if err != nil {
			return "", fmt.Errorf("gemini goal: %w", err)
		}
		return goal, nil
	}
	return "", lastErr
}

// Assess judges the learner's latest answer against the closed label set.
func (e *Engine) Assess(ctx context.Context, in llm.AssessRequest) (llm.Assessment, error) {
	if e.APIKey == "" {
		return llm.Assessment{}, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return llm.Assessment{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(e.Model))
	if m == nil {
		return llm.Assessment{}, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(prompt.TempJSON),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt.SystemAssess)},
	}

	userObj := map[string]any{
		"task":  "评估学习者的最新回答，只返回约定的 JSON。",
		"input": in,
	}
	userJSON, _ := json.Marshal(userObj)

	parts := []genai.Part{genai.Text("INPUT_JSON:\n" + string(userJSON))}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return llm.Assessment{}, fmt.Errorf("gemini assess: empty response")
		}
		out, err := llm.ParseAssessment(txt)
		if err != nil {
			return llm.Assessment{}, fmt.Errorf("gemini assess: %w", err)
		}
		return out, nil
	}
	return llm.Assessment{}, lastErr
}

// Guide produces the tutor's next visible message. Unlike the JSON calls it
// samples at the request's temperature and returns free text.
func (e *Engine) Guide(ctx context.Context, in llm.GuideRequest) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(e.Model))
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(in.Temperature),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(in.System)},
	}

	parts := []genai.Part{genai.Text(renderHistory(in.History))}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := strings.TrimSpace(firstText(resp))
		if txt == "" {
			return "", fmt.Errorf("gemini guide: empty response")
		}
		return txt, nil
	}
	return "", lastErr
}

// renderHistory flattens the transcript window into one labeled text part.
// Gemini sees the dialogue as the user turn; the roles live in the labels.
func renderHistory(history []dialogue.Message) string {
	if len(history) == 0 {
		return "（对话刚开始，还没有内容。请开口。）"
	}
	var b strings.Builder
	b.WriteString("最近的对话：\n")
	for _, msg := range history {
		switch msg.Role {
		case dialogue.RoleUser:
			b.WriteString("学习者：")
		default:
			b.WriteString("导师：")
		}
		b.WriteString(msg.Content)
		b.WriteByte('\n')
	}
	b.WriteString("请接着给出导师的下一句话。")
	return b.String()
}

// --------------------------- helpers ---------------------------

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
