package dialogue

import (
	"encoding/json"
	"fmt"
)

type statusKind string

const (
	statusAwaitingTopic  statusKind = "awaiting_topic"
	statusCollectingInfo statusKind = "collecting_info"
	statusLearning       statusKind = "learning"
)

// Status is the lifecycle position of a learning item, a tagged union of
// awaiting_topic, collecting_info{hasBasicInfo} and learning{hasBasicInfo}.
// The hasBasicInfo payload exists only once a topic has been named, so the
// question "does it have basic info" cannot be asked of an item that is
// still awaiting its topic.
type Status struct {
	kind         statusKind
	hasBasicInfo bool
}

func StatusAwaitingTopic() Status {
	return Status{kind: statusAwaitingTopic}
}

func StatusCollectingInfo(hasBasicInfo bool) Status {
	return Status{kind: statusCollectingInfo, hasBasicInfo: hasBasicInfo}
}

func StatusLearning(hasBasicInfo bool) Status {
	return Status{kind: statusLearning, hasBasicInfo: hasBasicInfo}
}

// Phase returns the lifecycle tag: awaiting_topic, collecting_info or
// learning. Distinct from TeachingPhase, which is derived from the whole
// item. The zero value reads as awaiting_topic.
func (s Status) Phase() string {
	if s.kind == "" {
		return string(statusAwaitingTopic)
	}
	return string(s.kind)
}

// HasBasicInfo returns the flag and whether the variant carries one.
// awaiting_topic has no flag and reports (false, false).
func (s Status) HasBasicInfo() (value, ok bool) {
	switch s.kind {
	case statusCollectingInfo, statusLearning:
		return s.hasBasicInfo, true
	default:
		return false, false
	}
}

type statusJSON struct {
	Phase        string `json:"phase"`
	HasBasicInfo *bool  `json:"hasBasicInfo,omitempty"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	out := statusJSON{Phase: s.Phase()}
	if _, ok := s.HasBasicInfo(); ok {
		v := s.hasBasicInfo
		out.HasBasicInfo = &v
	}
	return json.Marshal(out)
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var in statusJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	flag := in.HasBasicInfo != nil && *in.HasBasicInfo
	switch statusKind(in.Phase) {
	case statusAwaitingTopic:
		*s = StatusAwaitingTopic()
	case statusCollectingInfo:
		*s = StatusCollectingInfo(flag)
	case statusLearning:
		*s = StatusLearning(flag)
	default:
		return fmt.Errorf("unknown status phase %q", in.Phase)
	}
	return nil
}
