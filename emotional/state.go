// Package emotional models a student's inferred emotional state across five
// dimensions, with derived metrics and a rule-based teaching-strategy
// selector. States are immutable values: a new one is produced per assessed
// message, never mutated.
package emotional

import (
	"encoding/json"
	"strconv"
)

// State holds the five emotional dimensions, each in [0.0, 1.0].
type State struct {
	Engagement    float64 `json:"engagement"`
	Confidence    float64 `json:"confidence"`
	Frustration   float64 `json:"frustration"`
	Curiosity     float64 `json:"curiosity"`
	CognitiveLoad float64 `json:"cognitive_load"`
}

// Default returns the baseline state assumed before any assessment.
func Default() State {
	return State{
		Engagement:    0.5,
		Confidence:    0.5,
		Frustration:   0.0,
		Curiosity:     0.5,
		CognitiveLoad: 0.3,
	}
}

// FromMap constructs a State from an untyped mapping, such as a specialist
// assessment result. Unrecognized keys are ignored and missing dimensions
// keep their defaults; values are coerced to numbers and clamped to [0, 1].
func FromMap(raw map[string]interface{}) State {
	s := Default()
	for key, val := range raw {
		f, ok := asFloat(val)
		if !ok {
			continue
		}
		switch key {
		case "engagement":
			s.Engagement = clamp01(f)
		case "confidence":
			s.Confidence = clamp01(f)
		case "frustration":
			s.Frustration = clamp01(f)
		case "curiosity":
			s.Curiosity = clamp01(f)
		case "cognitive_load":
			s.CognitiveLoad = clamp01(f)
		}
	}
	return s
}

// ToMap is the exact inverse of FromMap for the five dimensions.
func (s State) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"engagement":     s.Engagement,
		"confidence":     s.Confidence,
		"frustration":    s.Frustration,
		"curiosity":      s.Curiosity,
		"cognitive_load": s.CognitiveLoad,
	}
}

// FlowScore measures how close the student is to flow state: high
// engagement, confidence, and curiosity with low frustration and load.
func (s State) FlowScore() float64 {
	return (s.Engagement + s.Confidence + s.Curiosity - s.Frustration - s.CognitiveLoad*0.5) / 3.5
}

// DropoutRisk estimates the risk of the student disengaging.
func (s State) DropoutRisk() float64 {
	return s.Frustration*0.4 + (1-s.Engagement)*0.3 + s.CognitiveLoad*0.3
}

// ReadinessForChallenge estimates whether the student can absorb harder
// content right now.
func (s State) ReadinessForChallenge() float64 {
	return (s.Confidence*0.4 + s.Engagement*0.3 + s.Curiosity*0.3) * (1 - s.Frustration)
}

// AdaptationStrategy maps the state to teaching directives. Rules are
// evaluated independently in a fixed order and later rules overwrite earlier
// keys on conflict; that later-wins ordering is load-bearing.
func (s State) AdaptationStrategy() map[string]string {
	strategies := make(map[string]string)

	if s.Frustration > 0.6 {
		strategies["tone"] = "encouraging"
		strategies["complexity"] = "simplified"
		strategies["approach"] = "break_into_steps"
	}
	if s.Engagement < 0.3 {
		strategies["tone"] = "enthusiastic"
		strategies["approach"] = "gamify"
		strategies["examples"] = "real_world"
	}
	if s.Curiosity > 0.7 {
		strategies["depth"] = "deep_dive"
		strategies["extras"] = "tangential_facts"
	}
	if s.CognitiveLoad > 0.7 {
		strategies["complexity"] = "scaffolded"
		strategies["pacing"] = "slower"
	}
	if s.Confidence > 0.8 && s.Frustration < 0.3 {
		strategies["complexity"] = "advanced"
		strategies["challenge"] = "increased"
	}

	return strategies
}

// HistoryEntry is a snapshot of a state tagged with the transcript index it
// followed, carrying the derived metrics for the progress view.
type HistoryEntry struct {
	State
	MessageIndex int     `json:"message_index"`
	FlowScore    float64 `json:"flow_score"`
	DropoutRisk  float64 `json:"dropout_risk"`
}

// NewHistoryEntry snapshots a state at the given message index.
func NewHistoryEntry(s State, messageIndex int) HistoryEntry {
	return HistoryEntry{
		State:        s,
		MessageIndex: messageIndex,
		FlowScore:    s.FlowScore(),
		DropoutRisk:  s.DropoutRisk(),
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
