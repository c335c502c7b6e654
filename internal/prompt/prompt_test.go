package prompt

import (
	"strings"
	"testing"

	"tutor-bot/internal/dialogue"
)

func TestTemplateForCoversAllPhases(t *testing.T) {
	for _, ph := range dialogue.AllPhases() {
		if TemplateFor(ph) == "" {
			t.Errorf("TemplateFor(%q) is empty", ph)
		}
	}
}

func TestBuildGuideOpener(t *testing.T) {
	item := dialogue.NewLearningItem("item-1")
	g := BuildGuide(item)
	if !g.Opening {
		t.Error("topic-less item should build the opener")
	}
	if g.Temperature != TempOpening {
		t.Errorf("Temperature = %v, want %v", g.Temperature, TempOpening)
	}
	if strings.Contains(g.System, dialogue.GoalAwaitingTopic) {
		t.Error("opener must not leak the goal sentinel to the model")
	}
}

func TestBuildGuideSelectsPhaseTemplate(t *testing.T) {
	tests := []struct {
		name     string
		level    dialogue.CognitiveLevel
		evidence int
		phase    dialogue.TeachingPhase
	}{
		{"info collection", dialogue.IntuitionOnly, 1, dialogue.PhaseInfoCollection},
		{"understanding", dialogue.IntuitionOnly, 3, dialogue.PhaseUnderstanding},
		{"clarification", dialogue.IntuitionOnly, 4, dialogue.PhaseClarification},
		{"structured", dialogue.CanDescribe, 4, dialogue.PhaseStructured},
		{"transfer", dialogue.Structured, 4, dialogue.PhaseTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := dialogue.NewLearningItem("item-2")
			item.Goal = "理解二分查找的原理"
			item.CurrentLevel = tt.level
			item.Status = dialogue.StatusLearning(tt.evidence >= 2)
			item.CognitiveState = dialogue.CognitiveState{Summary: "测试", MissingParts: "测试欠缺"}
			for i := 0; i < tt.evidence; i++ {
				item.RecentEvidence = dialogue.AppendEvidence(item.RecentEvidence,
					dialogue.NewEvidence(dialogue.SourceUserInput, "回答"))
			}

			if got := dialogue.DetectPhase(item); got != tt.phase {
				t.Fatalf("fixture detects phase %q, want %q", got, tt.phase)
			}

			g := BuildGuide(item)
			if g.Opening {
				t.Error("item with a goal must not build the opener")
			}
			if g.Temperature != TempGuide {
				t.Errorf("Temperature = %v, want %v", g.Temperature, TempGuide)
			}
			if !strings.Contains(g.System, TemplateFor(tt.phase)) {
				t.Errorf("system instruction does not contain the %q template", tt.phase)
			}
			if !strings.Contains(g.System, item.Goal) {
				t.Error("system instruction does not state the goal")
			}
			if !strings.Contains(g.System, "测试欠缺") {
				t.Error("system instruction does not state the missing parts")
			}
		})
	}
}
