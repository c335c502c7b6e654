package dialogue

import (
	"fmt"
	"testing"
)

func TestAppendEvidenceBounded(t *testing.T) {
	var ring []Evidence
	for i := 0; i < 7; i++ {
		ring = AppendEvidence(ring, NewEvidence(SourceUserInput, fmt.Sprintf("turn %d", i)))
		if len(ring) > MaxEvidenceCount {
			t.Fatalf("after %d appends ring has %d entries, max is %d", i+1, len(ring), MaxEvidenceCount)
		}
	}
	if len(ring) != MaxEvidenceCount {
		t.Fatalf("ring length = %d, want %d", len(ring), MaxEvidenceCount)
	}
	// Oldest two evicted; the survivors keep their relative order.
	for i, ev := range ring {
		want := fmt.Sprintf("turn %d", i+2)
		if ev.Content != want {
			t.Errorf("ring[%d].Content = %q, want %q", i, ev.Content, want)
		}
	}
}

func TestAppendEvidenceMultipleEntries(t *testing.T) {
	ring := []Evidence{
		NewEvidence(SourceUserInput, "a"),
		NewEvidence(SourceUserInput, "b"),
		NewEvidence(SourceUserInput, "c"),
		NewEvidence(SourceUserInput, "d"),
	}
	ring = AppendEvidence(ring,
		NewEvidence(SourceUserInput, "e"),
		NewEvidence(SourceAssessment, "f"),
	)
	if len(ring) != MaxEvidenceCount {
		t.Fatalf("ring length = %d, want %d", len(ring), MaxEvidenceCount)
	}
	wantOrder := []string{"b", "c", "d", "e", "f"}
	for i, want := range wantOrder {
		if ring[i].Content != want {
			t.Errorf("ring[%d].Content = %q, want %q", i, ring[i].Content, want)
		}
	}
	if ring[4].Source != SourceAssessment {
		t.Errorf("ring[4].Source = %q, want %q", ring[4].Source, SourceAssessment)
	}
}

func TestAppendEvidenceNoOp(t *testing.T) {
	ring := AppendEvidence(nil)
	if len(ring) != 0 {
		t.Errorf("appending nothing to nil gave %d entries", len(ring))
	}
}
