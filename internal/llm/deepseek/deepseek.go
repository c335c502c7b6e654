// Package deepseek implements the engine contract on DeepSeek's
// OpenAI-compatible chat completions API over raw HTTP.
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/prompt"
)

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func New(key, model, baseURL string) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second, // TCP connect
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		// First headers can take a while on long generations; the request
		// context carries the overall deadline.
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}

	return &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		// Timeout=0 so a slow body read is not cut off mid-reply.
		httpc: &http.Client{
			Timeout:   0,
			Transport: tr,
		},
	}
}

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts or tracing).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) Name() string     { return "deepseek" }
func (e *Engine) GetModel() string { return e.Model }

// ExtractGoal distills the learner's first utterance into one goal line.
func (e *Engine) ExtractGoal(ctx context.Context, utterance string) (string, error) {
	userObj := map[string]any{
		"task":  "提取学习目标，只返回约定的 JSON。",
		"input": map[string]string{"utterance": utterance},
	}
	userJSON, _ := json.Marshal(userObj)

	raw, err := e.chat(ctx, []chatMessage{
		{Role: "system", Content: prompt.SystemGoalExtract},
		{Role: "user", Content: "INPUT_JSON:\n" + string(userJSON)},
	}, prompt.TempJSON, true)
	if err != nil {
		return "", err
	}
	goal, err := llm.ParseGoal(raw)
	if err != nil {
		return "", fmt.Errorf("deepseek goal: %w", err)
	}
	return goal, nil
}

// Assess judges the learner's latest answer against the closed label set.
func (e *Engine) Assess(ctx context.Context, in llm.AssessRequest) (llm.Assessment, error) {
	userObj := map[string]any{
		"task":  "评估学习者的最新回答，只返回约定的 JSON。",
		"input": in,
	}
	userJSON, _ := json.Marshal(userObj)

	raw, err := e.chat(ctx, []chatMessage{
		{Role: "system", Content: prompt.SystemAssess},
		{Role: "user", Content: "INPUT_JSON:\n" + string(userJSON)},
	}, prompt.TempJSON, true)
	if err != nil {
		return llm.Assessment{}, err
	}
	out, err := llm.ParseAssessment(raw)
	if err != nil {
		return llm.Assessment{}, fmt.Errorf("deepseek assess: %w", err)
	}
	return out, nil
}

// Guide produces the tutor's next visible message. The transcript maps onto
// native chat roles; the reply comes back as free text.
func (e *Engine) Guide(ctx context.Context, in llm.GuideRequest) (string, error) {
	msgs := make([]chatMessage, 0, len(in.History)+1)
	msgs = append(msgs, chatMessage{Role: "system", Content: in.System})
	for _, m := range in.History {
		role := "assistant"
		if m.Role == dialogue.RoleUser {
			role = "user"
		}
		msgs = append(msgs, chatMessage{Role: role, Content: m.Content})
	}
	if len(in.History) == 0 {
		msgs = append(msgs, chatMessage{Role: "user", Content: "（对话刚开始，还没有内容。请开口。）"})
	}

	raw, err := e.chat(ctx, msgs, in.Temperature, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chat runs one completion round trip with retries on transport errors and
// 5xx/429 answers. Contract errors come back immediately.
func (e *Engine) chat(ctx context.Context, msgs []chatMessage, temperature float32, wantJSON bool) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY is empty")
	}

	body := map[string]any{
		"model":       e.Model,
		"messages":    msgs,
		"temperature": temperature,
		"stream":      false,
	}
	if wantJSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}
	payload, _ := json.Marshal(body)
	url := e.BaseURL + "/chat/completions"

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+e.APIKey)

		resp, err := e.httpc.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("deepseek %d: %s", resp.StatusCode, truncateBytes(raw, 1024))
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
				continue
			}
			return "", lastErr
		}

		var env struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return "", fmt.Errorf("deepseek: bad envelope: %w", err)
		}
		if len(env.Choices) == 0 || strings.TrimSpace(env.Choices[0].Message.Content) == "" {
			return "", fmt.Errorf("deepseek: empty output; body=%s", truncateBytes(raw, 1024))
		}
		return env.Choices[0].Message.Content, nil
	}
	return "", lastErr
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
