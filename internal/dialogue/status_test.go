package dialogue

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatusPhase(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   string
	}{
		{"awaiting topic", StatusAwaitingTopic(), "awaiting_topic"},
		{"collecting info", StatusCollectingInfo(false), "collecting_info"},
		{"learning", StatusLearning(true), "learning"},
		{"zero value reads as awaiting", Status{}, "awaiting_topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Phase(); got != tt.want {
				t.Errorf("Phase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusHasBasicInfo(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		wantValue bool
		wantOK    bool
	}{
		{"awaiting topic carries no flag", StatusAwaitingTopic(), false, false},
		{"collecting without info", StatusCollectingInfo(false), false, true},
		{"collecting with info", StatusCollectingInfo(true), true, true},
		{"learning without info", StatusLearning(false), false, true},
		{"learning with info", StatusLearning(true), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := tt.status.HasBasicInfo()
			if value != tt.wantValue || ok != tt.wantOK {
				t.Errorf("HasBasicInfo() = (%v, %v), want (%v, %v)", value, ok, tt.wantValue, tt.wantOK)
			}
		})
	}
}

func TestStatusJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		status Status
	}{
		{"awaiting topic", StatusAwaitingTopic()},
		{"collecting false", StatusCollectingInfo(false)},
		{"collecting true", StatusCollectingInfo(true)},
		{"learning true", StatusLearning(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.status)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got Status
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal %s: %v", b, err)
			}
			if got != tt.status {
				t.Errorf("round trip = %+v, want %+v", got, tt.status)
			}
		})
	}
}

func TestStatusJSONShape(t *testing.T) {
	b, err := json.Marshal(StatusAwaitingTopic())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "hasBasicInfo") {
		t.Errorf("awaiting_topic must not carry hasBasicInfo, got %s", b)
	}

	b, err = json.Marshal(StatusLearning(false))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"hasBasicInfo":false`) {
		t.Errorf("learning must carry an explicit hasBasicInfo, got %s", b)
	}
}

func TestStatusUnmarshalRejectsUnknownPhase(t *testing.T) {
	var s Status
	err := json.Unmarshal([]byte(`{"phase":"finished"}`), &s)
	if err == nil {
		t.Fatal("expected an error for an unknown phase tag")
	}
}
