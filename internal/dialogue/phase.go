package dialogue

import "unicode/utf8"

// minGoalRunes guards the basic-info heuristic: goals at or below this
// length read as placeholders rather than real topics.
const minGoalRunes = 5

// HasCollectedBasicInfo reports whether the item carries enough grounding
// to leave info collection. The status flag is trusted once true; while it
// is false or absent a content heuristic re-checks every turn, so a first
// answer that already carried enough substance is not held back by a flag
// that was never set.
func HasCollectedBasicInfo(item *LearningItem) bool {
	if v, ok := item.Status.HasBasicInfo(); ok && v {
		return true
	}
	return item.Goal != GoalAwaitingTopic &&
		utf8.RuneCountInString(item.Goal) > minGoalRunes &&
		len(item.RecentEvidence) >= 2
}

// DetectPhase derives the teaching phase from the item. Pure: it reads the
// item and nothing else.
//
// Priority order: items still short on basic info collect it first; items
// at the lowest level get an understanding probe while evidence is thin and
// boundary clarification once it is not; higher levels map straight through
// to structuring and transfer.
func DetectPhase(item *LearningItem) TeachingPhase {
	n := len(item.RecentEvidence)

	if !HasCollectedBasicInfo(item) && n <= 2 {
		return PhaseInfoCollection
	}

	if item.CurrentLevel == IntuitionOnly {
		if n <= 3 {
			return PhaseUnderstanding
		}
		return PhaseClarification
	}

	if item.CurrentLevel == CanDescribe {
		return PhaseStructured
	}
	return PhaseTransfer
}
