// Package dialogue holds the learning-item data model and the pure rules
// that drive the tutoring state machine: phase detection, the
// evidence-to-decision mapping and the missing-parts lookup.
package dialogue

import (
	"fmt"
	"time"
)

// CognitiveLevel is the ordinal stage of demonstrated understanding,
// tracked per learning item. Levels are set by the decision table, never
// incremented, so a later answer that reads as less structured may move
// the level down.
type CognitiveLevel int

const (
	IntuitionOnly CognitiveLevel = iota + 1
	CanDescribe
	Structured
	Transferable
)

func (l CognitiveLevel) IsValid() bool {
	return l >= IntuitionOnly && l <= Transferable
}

func (l CognitiveLevel) String() string {
	switch l {
	case IntuitionOnly:
		return "intuition_only"
	case CanDescribe:
		return "can_describe"
	case Structured:
		return "structured"
	case Transferable:
		return "transferable"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// AllLevels lists the levels in ascending order.
func AllLevels() []CognitiveLevel {
	return []CognitiveLevel{IntuitionOnly, CanDescribe, Structured, Transferable}
}

// CognitiveStateLabel is the closed output vocabulary of the assessment
// collaborator. Anything outside this set is a contract violation and must
// be rejected, never coerced to a neighbor.
type CognitiveStateLabel string

const (
	LabelTooVague                 CognitiveStateLabel = "too_vague"
	LabelIntuitionButUnclear      CognitiveStateLabel = "intuition_but_unclear"
	LabelCanDescribeWithStructure CognitiveStateLabel = "can_describe_with_structure"
	LabelFullyStructured          CognitiveStateLabel = "fully_structured"
	LabelTransferable             CognitiveStateLabel = "transferable"
)

func (l CognitiveStateLabel) IsValid() bool {
	switch l {
	case LabelTooVague, LabelIntuitionButUnclear, LabelCanDescribeWithStructure,
		LabelFullyStructured, LabelTransferable:
		return true
	}
	return false
}

// AllLabels lists the assessment vocabulary.
func AllLabels() []CognitiveStateLabel {
	return []CognitiveStateLabel{
		LabelTooVague,
		LabelIntuitionButUnclear,
		LabelCanDescribeWithStructure,
		LabelFullyStructured,
		LabelTransferable,
	}
}

// TeachingIntent is the next pedagogical action the system commits to
// before generating its next message. Exactly one is active at a time.
type TeachingIntent string

const (
	IntentElicitIntuition    TeachingIntent = "elicit_intuition"
	IntentForceClarification TeachingIntent = "force_clarification"
	IntentIntroduceStructure TeachingIntent = "introduce_structure"
	IntentTestTransfer       TeachingIntent = "test_transfer"
)

// TeachingPhase is a derived, read-only view over a learning item. It is
// recomputed on every use and never persisted as authoritative state.
type TeachingPhase string

const (
	PhaseInfoCollection TeachingPhase = "info_collection"
	PhaseUnderstanding  TeachingPhase = "understanding"
	PhaseClarification  TeachingPhase = "clarification"
	PhaseStructured     TeachingPhase = "structured"
	PhaseTransfer       TeachingPhase = "transfer"
)

// AllPhases lists the teaching phases.
func AllPhases() []TeachingPhase {
	return []TeachingPhase{
		PhaseInfoCollection,
		PhaseUnderstanding,
		PhaseClarification,
		PhaseStructured,
		PhaseTransfer,
	}
}

type EvidenceSource string

const (
	SourceUserInput  EvidenceSource = "user_input"
	SourceAssessment EvidenceSource = "assessment"
)

// Evidence is one timestamped record of learner-produced text or a system
// assessment note.
type Evidence struct {
	Source    EvidenceSource `json:"source"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
}

// CognitiveState is the system's current belief about the learner. The
// assessment step overwrites it wholesale; fields are never merged.
type CognitiveState struct {
	Summary        string   `json:"summary"`
	MissingParts   string   `json:"missingParts,omitempty"`
	Misconceptions []string `json:"misconceptions,omitempty"`
}

const (
	// GoalAwaitingTopic is the goal placeholder before the learner has
	// named a topic.
	GoalAwaitingTopic = "待定主题"

	// DefaultGoal substitutes when goal extraction fails; the dialogue
	// continues with it rather than stopping.
	DefaultGoal = "理解一个新概念"

	// SummaryJustStarted seeds the cognitive state right after the goal
	// has been extracted.
	SummaryJustStarted = "刚开始学习，还没有任何评估"
)

// LearningItem is the per-topic unit of pedagogical state. A session holds
// at most one active item; it is created once by the select step and
// mutated only by the assess step.
type LearningItem struct {
	ID             string         `json:"id"`
	Goal           string         `json:"goal"`
	CurrentLevel   CognitiveLevel `json:"currentLevel"`
	CognitiveState CognitiveState `json:"cognitiveState"`
	RecentEvidence []Evidence     `json:"recentEvidence"`
	NextIntent     TeachingIntent `json:"nextIntent"`
	Status         Status         `json:"status"`
}

// NewLearningItem returns an item in its initial lifecycle state: topic
// still awaited, lowest level, intuition elicitation queued.
func NewLearningItem(id string) *LearningItem {
	return &LearningItem{
		ID:           id,
		Goal:         GoalAwaitingTopic,
		CurrentLevel: IntuitionOnly,
		NextIntent:   IntentElicitIntuition,
		Status:       StatusAwaitingTopic(),
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry, in literal turn order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type NextAction string

const (
	ActionGuide NextAction = "guide"
	ActionEnd   NextAction = "end"
)

// GraphState is the sole unit of state passed between orchestration
// passes. The caller owns it between turns; the orchestration owns it
// during a pass. Sessions share nothing.
type GraphState struct {
	LearningItems map[string]*LearningItem `json:"learningItems"`
	ActiveItemID  string                   `json:"activeItemId"`
	LastUserInput string                   `json:"lastUserInput"`
	Messages      []Message                `json:"messages"`
	NextAction    NextAction               `json:"nextAction"`
}

func NewGraphState() *GraphState {
	return &GraphState{
		LearningItems: map[string]*LearningItem{},
		NextAction:    ActionGuide,
	}
}

// ActiveItem resolves the active learning item, nil when there is none or
// the id does not key into the map.
func (s *GraphState) ActiveItem() *LearningItem {
	if s.ActiveItemID == "" {
		return nil
	}
	return s.LearningItems[s.ActiveItemID]
}

func (s *GraphState) AppendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// LastTurns returns up to n most recent transcript entries in turn order.
func (s *GraphState) LastTurns(n int) []Message {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
