package dialogue

import "time"

// MaxEvidenceCount bounds the evidence ring: the model's short-term memory
// of what the learner has said.
const MaxEvidenceCount = 5

func NewEvidence(source EvidenceSource, content string) Evidence {
	return Evidence{Source: source, Content: content, Timestamp: time.Now()}
}

// AppendEvidence appends entries and keeps only the newest MaxEvidenceCount,
// oldest evicted first, relative order preserved.
func AppendEvidence(ring []Evidence, entries ...Evidence) []Evidence {
	ring = append(ring, entries...)
	if n := len(ring); n > MaxEvidenceCount {
		ring = ring[n-MaxEvidenceCount:]
	}
	return ring
}
