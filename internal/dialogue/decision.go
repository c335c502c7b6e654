package dialogue

import "fmt"

// Decision is what one assessment maps to: the next pedagogical move and
// the level the latest evidence is consistent with.
type Decision struct {
	NextIntent TeachingIntent
	NewLevel   CognitiveLevel
}

// decisionTable sets levels rather than incrementing them: each row asserts
// "this evidence reads as level X". A single lucky answer cannot inflate
// the level past what it demonstrates, and a weaker later answer is allowed
// to read lower.
var decisionTable = map[CognitiveStateLabel]func(current CognitiveLevel) Decision{
	LabelTooVague: func(CognitiveLevel) Decision {
		return Decision{NextIntent: IntentElicitIntuition, NewLevel: IntuitionOnly}
	},
	LabelIntuitionButUnclear: func(current CognitiveLevel) Decision {
		if current == IntuitionOnly {
			return Decision{NextIntent: IntentForceClarification, NewLevel: IntuitionOnly}
		}
		return Decision{NextIntent: IntentElicitIntuition, NewLevel: IntuitionOnly}
	},
	LabelCanDescribeWithStructure: func(CognitiveLevel) Decision {
		return Decision{NextIntent: IntentIntroduceStructure, NewLevel: CanDescribe}
	},
	LabelFullyStructured: func(CognitiveLevel) Decision {
		return Decision{NextIntent: IntentTestTransfer, NewLevel: Structured}
	},
	LabelTransferable: func(CognitiveLevel) Decision {
		return Decision{NextIntent: IntentTestTransfer, NewLevel: Transferable}
	},
}

func init() {
	for _, l := range AllLabels() {
		if _, ok := decisionTable[l]; !ok {
			panic(fmt.Sprintf("decision table: no entry for label %q", l))
		}
		if _, ok := missingPartsTable[l]; !ok {
			panic(fmt.Sprintf("missing-parts table: no entry for label %q", l))
		}
	}
}

// DecideNext maps an assessed label and the current level to the next
// teaching decision. An unknown label is rejected with an error, never
// coerced.
func DecideNext(label CognitiveStateLabel, current CognitiveLevel) (Decision, error) {
	row, ok := decisionTable[label]
	if !ok {
		return Decision{}, fmt.Errorf("cognitive state label %q is outside the vocabulary", label)
	}
	return row(current), nil
}
