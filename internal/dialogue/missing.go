package dialogue

// missingPartsTable tells the learner what the latest answer lacked, keyed
// by the assessed label. Kept separate from the decision table: what to do
// next and what to report as missing are orthogonal choices. Completeness
// is checked at startup alongside the decision table.
var missingPartsTable = map[CognitiveStateLabel]string{
	LabelTooVague:                 "需要更具体的表达",
	LabelIntuitionButUnclear:      "需要把直觉讲清楚",
	LabelCanDescribeWithStructure: "需要明确背后的结构",
	LabelFullyStructured:          "需要在新场景中应用",
	LabelTransferable:             "无",
}

// MissingParts looks up the learner-facing gap description for a label.
func MissingParts(label CognitiveStateLabel) string {
	return missingPartsTable[label]
}
