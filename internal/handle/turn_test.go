package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/prompt"
	"tutor-bot/internal/store"
)

type mockEngine struct {
	name        string
	assessCalls int
	guideCalls  []llm.GuideRequest
}

func (m *mockEngine) Name() string     { return m.name }
func (m *mockEngine) GetModel() string { return m.name + "-model" }

func (m *mockEngine) ExtractGoal(context.Context, string) (string, error) {
	return "理解二分查找的原理", nil
}

func (m *mockEngine) Assess(context.Context, llm.AssessRequest) (llm.Assessment, error) {
	m.assessCalls++
	return llm.Assessment{CognitiveState: dialogue.LabelTooVague, Reasoning: "内容太少"}, nil
}

func (m *mockEngine) Guide(_ context.Context, in llm.GuideRequest) (string, error) {
	m.guideCalls = append(m.guideCalls, in)
	return "导师的回复", nil
}

func newTestHandle() (*Handle, *mockEngine, *mockEngine) {
	gem := &mockEngine{name: "gemini"}
	dsk := &mockEngine{name: "deepseek"}
	engs := &llm.Engines{Gemini: gem, Deepseek: dsk}
	return New(engs, llm.NewManager(gem), store.NewMemory()), gem, dsk
}

func postTurn(t *testing.T, h *Handle, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/turn", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Turn(rr, req)
	return rr
}

func decodeTurn(t *testing.T, rr *httptest.ResponseRecorder) turnResp {
	t.Helper()
	var out turnResp
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
	}
	return out
}

func TestTurnMethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandle()
	req := httptest.NewRequest(http.MethodGet, "/v1/turn", nil)
	rr := httptest.NewRecorder()
	h.Turn(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("code = %d, want 405", rr.Code)
	}
}

func TestTurnBadJSON(t *testing.T) {
	h, _, _ := newTestHandle()
	if rr := postTurn(t, h, "{"); rr.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rr.Code)
	}
}

func TestTurnOpenerWithoutInput(t *testing.T) {
	h, gem, _ := newTestHandle()
	rr := postTurn(t, h, `{}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rr.Code, rr.Body.String())
	}
	out := decodeTurn(t, rr)
	if out.SessionID == "" || out.Reply == "" || out.Done {
		t.Errorf("response = %+v", out)
	}
	if out.Phase != string(dialogue.PhaseInfoCollection) {
		t.Errorf("phase = %q, want info_collection", out.Phase)
	}
	if out.Goal != dialogue.GoalAwaitingTopic {
		t.Errorf("goal = %q, want the placeholder", out.Goal)
	}
	if len(gem.guideCalls) != 1 || gem.guideCalls[0].Temperature != prompt.TempOpening {
		t.Errorf("guide calls = %+v, want one opener call", gem.guideCalls)
	}
}

func TestTurnNewSessionWithInput(t *testing.T) {
	h, gem, _ := newTestHandle()
	rr := postTurn(t, h, `{"input":"我想学二分查找"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rr.Code, rr.Body.String())
	}
	out := decodeTurn(t, rr)
	if out.SessionID == "" {
		t.Fatal("no session id assigned")
	}
	if out.Phase != "collecting_info" {
		t.Errorf("phase = %q, want collecting_info", out.Phase)
	}
	if out.Level != 1 {
		t.Errorf("level = %d, want 1", out.Level)
	}
	if out.Goal != "理解二分查找的原理" {
		t.Errorf("goal = %q", out.Goal)
	}
	if gem.assessCalls != 0 {
		t.Errorf("assess calls = %d; the first turn extracts a goal instead", gem.assessCalls)
	}
}

func TestTurnResumesSession(t *testing.T) {
	h, gem, _ := newTestHandle()
	first := decodeTurn(t, postTurn(t, h, `{"input":"我想学二分查找"}`))

	rr := postTurn(t, h, `{"sessionId":"`+first.SessionID+`","input":"我觉得是每次把范围砍一半"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rr.Code, rr.Body.String())
	}
	second := decodeTurn(t, rr)
	if second.SessionID != first.SessionID {
		t.Errorf("session id changed: %q -> %q", first.SessionID, second.SessionID)
	}
	if gem.assessCalls != 1 {
		t.Errorf("assess calls = %d, want 1 on the resumed turn", gem.assessCalls)
	}
	if second.Reply == "" || second.Done {
		t.Errorf("response = %+v", second)
	}
}

func TestTurnUnknownEngine(t *testing.T) {
	h, _, _ := newTestHandle()
	rr := postTurn(t, h, `{"input":"你好","engine":"claude"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rr.Code)
	}
}

func TestTurnEngineOverrideSticks(t *testing.T) {
	h, gem, dsk := newTestHandle()
	first := decodeTurn(t, postTurn(t, h, `{"input":"我想学递归","engine":"deepseek"}`))
	if len(dsk.guideCalls) != 1 || len(gem.guideCalls) != 0 {
		t.Fatalf("guide calls gemini=%d deepseek=%d, want the override used",
			len(gem.guideCalls), len(dsk.guideCalls))
	}

	// The override is per session and persists across turns.
	postTurn(t, h, `{"sessionId":"`+first.SessionID+`","input":"递归就是自己调自己"}`)
	if len(dsk.guideCalls) != 2 {
		t.Errorf("deepseek guide calls = %d, want 2", len(dsk.guideCalls))
	}
}

func TestSessionGetAndDelete(t *testing.T) {
	h, _, _ := newTestHandle()
	created := decodeTurn(t, postTurn(t, h, `{"input":"我想学二分查找"}`))

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/session/"+created.SessionID, nil)
		rr := httptest.NewRecorder()
		h.Session(rr, req)
		return rr
	}

	rr := get()
	if rr.Code != http.StatusOK {
		t.Fatalf("GET code = %d: %s", rr.Code, rr.Body.String())
	}
	var snap sessionResp
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.State == nil || snap.State.ActiveItem() == nil {
		t.Fatal("snapshot carries no active item")
	}
	if got := snap.State.ActiveItem().Goal; got != "理解二分查找的原理" {
		t.Errorf("goal = %q", got)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/session/"+created.SessionID, nil)
	del := httptest.NewRecorder()
	h.Session(del, req)
	if del.Code != http.StatusNoContent {
		t.Fatalf("DELETE code = %d", del.Code)
	}
	if rr := get(); rr.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rr.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	h, _, _ := newTestHandle()
	req := httptest.NewRequest(http.MethodGet, "/v1/session/nope", nil)
	rr := httptest.NewRecorder()
	h.Session(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rr.Code)
	}
}

func TestSessionMissingID(t *testing.T) {
	h, _, _ := newTestHandle()
	req := httptest.NewRequest(http.MethodGet, "/v1/session/", nil)
	rr := httptest.NewRecorder()
	h.Session(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", rr.Code)
	}
}
