package telegram

import (
	"strings"
	"testing"

	"tutor-bot/internal/dialogue"
)

func TestSessionID(t *testing.T) {
	if got := sessionID(42); got != "tg-42" {
		t.Fatalf("sessionID(42) = %q", got)
	}
	if got := sessionID(-100123); got != "tg--100123" {
		t.Fatalf("sessionID(-100123) = %q", got)
	}
}

func TestFormatStatus(t *testing.T) {
	state := dialogue.NewGraphState()
	item := dialogue.NewLearningItem("item-1")
	item.Goal = "理解二分查找"
	item.CurrentLevel = dialogue.CanDescribe
	item.NextIntent = dialogue.IntentIntroduceStructure
	item.CognitiveState = dialogue.CognitiveState{
		Summary:      "能描述大概流程",
		MissingParts: "结构化理解",
	}
	item.RecentEvidence = dialogue.AppendEvidence(item.RecentEvidence,
		dialogue.NewEvidence(dialogue.SourceUserInput, "每次取中间"))
	state.LearningItems[item.ID] = item
	state.ActiveItemID = item.ID
	state.AppendMessage(dialogue.RoleUser, "每次取中间")

	got := formatStatus(item, state)
	for _, want := range []string{
		"理解二分查找",
		"2/4",
		"能描述大概流程",
		"结构化理解",
		"证据条数：1/5",
		"对话轮数：1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStatus missing %q in:\n%s", want, got)
		}
	}
}

func TestDoneText(t *testing.T) {
	state := dialogue.NewGraphState()
	if got := doneText(state); !strings.Contains(got, "/reset") {
		t.Fatalf("doneText without item = %q", got)
	}

	item := dialogue.NewLearningItem("item-1")
	item.Goal = "理解二分查找"
	state.LearningItems[item.ID] = item
	state.ActiveItemID = item.ID
	got := doneText(state)
	if !strings.Contains(got, "理解二分查找") || !strings.Contains(got, "🎓") {
		t.Fatalf("doneText with item = %q", got)
	}
}
