// Package graph sequences one tutoring turn: select the learning item,
// assess the learner's answer, decide whether to continue and produce the
// next guiding message. Between turns the state lives entirely with the
// caller; a pass owns it only while running.
package graph

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tutor-bot/internal/dialogue"
	"tutor-bot/internal/llm"
	"tutor-bot/internal/prompt"
)

// Tutor runs orchestration passes against one engine.
type Tutor struct {
	engine llm.Engine
}

func New(engine llm.Engine) *Tutor {
	return &Tutor{engine: engine}
}

// Result is what one pass hands back to the caller. Done means the session
// reached its end state and no further input is expected.
type Result struct {
	Reply string
	Done  bool
}

// RunTurn executes one orchestration pass over the caller-owned state. A
// session with no active item runs the opening pass (select, optionally a
// first assessment, guide); every later call resumes at assess. Failures
// inside the pass degrade into dialogue behavior, never into a panic or a
// lost turn.
func (t *Tutor) RunTurn(ctx context.Context, s *dialogue.GraphState, input string) Result {
	input = strings.TrimSpace(input)

	if s.ActiveItemID == "" {
		t.selectItem(s)
		if input != "" {
			s.LastUserInput = input
			s.AppendMessage(dialogue.RoleUser, input)
			t.assess(ctx, s, input)
		}
		reply := t.guide(ctx, s)
		s.NextAction = dialogue.ActionGuide
		return Result{Reply: reply}
	}

	if input != "" {
		s.LastUserInput = input
		s.AppendMessage(dialogue.RoleUser, input)
	}
	t.assess(ctx, s, input)

	if t.decide(s) == dialogue.ActionEnd {
		s.NextAction = dialogue.ActionEnd
		log.Printf("[graph] session ended")
		return Result{Done: true}
	}
	reply := t.guide(ctx, s)
	s.NextAction = dialogue.ActionGuide
	return Result{Reply: reply}
}

// selectItem makes sure an active learning item exists. Calling it on a
// state that already has one is a no-op.
func (t *Tutor) selectItem(s *dialogue.GraphState) {
	if s.ActiveItem() != nil {
		return
	}
	id := fmt.Sprintf("item-%d", time.Now().UnixNano())
	s.LearningItems[id] = dialogue.NewLearningItem(id)
	s.ActiveItemID = id
	log.Printf("[graph] new learning item %s", id)
}

// assess consumes the learner's input and mutates the active item. The
// first substantive turn extracts the goal; every later turn runs the
// assessment collaborator and the decision table.
func (t *Tutor) assess(ctx context.Context, s *dialogue.GraphState, input string) {
	item := s.ActiveItem()
	if item == nil {
		log.Printf("[graph] assess: no active item, skipping")
		return
	}
	if input == "" {
		return
	}
	if item.Goal == dialogue.GoalAwaitingTopic && len(item.RecentEvidence) == 0 {
		t.assessFirstTurn(ctx, item, input)
		return
	}
	t.assessTurn(ctx, item, input)
}

// assessFirstTurn turns the learner's first utterance into a goal. Goal
// extraction failing is not fatal here; the default goal keeps the
// dialogue moving.
func (t *Tutor) assessFirstTurn(ctx context.Context, item *dialogue.LearningItem, input string) {
	goal, err := t.engine.ExtractGoal(ctx, input)
	if err != nil {
		log.Printf("[graph] goal extraction failed, using default: %v", err)
		goal = dialogue.DefaultGoal
	} else {
		log.Printf("[graph] goal extracted: %s", goal)
	}

	item.Goal = goal
	item.CognitiveState = dialogue.CognitiveState{Summary: dialogue.SummaryJustStarted}
	item.RecentEvidence = []dialogue.Evidence{dialogue.NewEvidence(dialogue.SourceUserInput, input)}
	item.NextIntent = dialogue.IntentElicitIntuition
	item.Status = dialogue.StatusCollectingInfo(false)
}

// assessTurn runs the assessment collaborator and applies the decision
// table. On any failure the learner's evidence is kept but level, intent
// and status stay frozen: stall, don't fabricate.
func (t *Tutor) assessTurn(ctx context.Context, item *dialogue.LearningItem, input string) {
	verdict, err := t.engine.Assess(ctx, llm.AssessRequest{
		Input:        input,
		Goal:         item.Goal,
		Summary:      item.CognitiveState.Summary,
		MissingParts: item.CognitiveState.MissingParts,
	})
	if err != nil {
		log.Printf("[graph] assessment failed, stalling: %v", err)
		item.RecentEvidence = dialogue.AppendEvidence(item.RecentEvidence,
			dialogue.NewEvidence(dialogue.SourceUserInput, input))
		return
	}

	decision, err := dialogue.DecideNext(verdict.CognitiveState, item.CurrentLevel)
	if err != nil {
		log.Printf("[graph] assessment rejected, stalling: %v", err)
		item.RecentEvidence = dialogue.AppendEvidence(item.RecentEvidence,
			dialogue.NewEvidence(dialogue.SourceUserInput, input))
		return
	}

	// The basic-info check reads the evidence the guiding step saw, so it
	// runs before this turn's entries land in the ring.
	hasInfo := dialogue.HasCollectedBasicInfo(item)

	item.RecentEvidence = dialogue.AppendEvidence(item.RecentEvidence,
		dialogue.NewEvidence(dialogue.SourceUserInput, input),
		dialogue.NewEvidence(dialogue.SourceAssessment,
			string(verdict.CognitiveState)+"："+verdict.Reasoning))
	item.CognitiveState = dialogue.CognitiveState{
		Summary:      string(verdict.CognitiveState),
		MissingParts: dialogue.MissingParts(verdict.CognitiveState),
	}
	item.NextIntent = decision.NextIntent
	item.CurrentLevel = decision.NewLevel
	item.Status = dialogue.StatusLearning(hasInfo)

	log.Printf("[graph] assessed %s: level=%d intent=%s", verdict.CognitiveState,
		decision.NewLevel, decision.NextIntent)
}

// decide yields the continue/stop signal. No resolvable item ends the
// session; so does reaching the top level.
func (t *Tutor) decide(s *dialogue.GraphState) dialogue.NextAction {
	item := s.ActiveItem()
	if item == nil {
		log.Printf("[graph] decide: no active item, ending")
		return dialogue.ActionEnd
	}
	if item.CurrentLevel >= dialogue.Transferable {
		return dialogue.ActionEnd
	}
	return dialogue.ActionGuide
}

// guide produces the tutor's next visible message and appends it to the
// transcript. A collaborator failure renders as the apology line; the
// learner never sees the error.
func (t *Tutor) guide(ctx context.Context, s *dialogue.GraphState) string {
	item := s.ActiveItem()
	if item == nil {
		log.Printf("[graph] guide: no active item")
		s.AppendMessage(dialogue.RoleAssistant, prompt.ApologyMessage)
		return prompt.ApologyMessage
	}

	g := prompt.BuildGuide(item)
	if g.Opening {
		log.Printf("[graph] guiding: opening prompt")
	} else {
		log.Printf("[graph] guiding: phase=%s goal=%q", dialogue.DetectPhase(item), item.Goal)
	}

	text, err := t.engine.Guide(ctx, llm.GuideRequest{
		System:      g.System,
		History:     s.LastTurns(prompt.ContextTurns),
		Temperature: g.Temperature,
	})
	if err != nil {
		log.Printf("[graph] guide failed: %v", err)
		text = prompt.ApologyMessage
	}
	s.AppendMessage(dialogue.RoleAssistant, text)
	return text
}
