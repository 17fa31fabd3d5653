package daemon

import (
	"sort"
	"strings"
)

// TriggerType names a dispatchable background worker kind.
type TriggerType string

const (
	// TriggerResearch is a background investigation task.
	TriggerResearch TriggerType = "research"

	// TriggerAudit is a background code or config review task.
	TriggerAudit TriggerType = "audit"

	// TriggerConsolidation is a one-off learning-store consolidation pass.
	TriggerConsolidation TriggerType = "pattern-consolidation"

	// TriggerMetrics is a one-off host resource snapshot.
	TriggerMetrics TriggerType = "metrics"
)

// Trigger is one detected dispatch candidate.
type Trigger struct {
	Type       TriggerType `json:"type"`
	Confidence float64     `json:"confidence"`
	Matched    []string    `json:"matched,omitempty"`
}

// triggerKeywords drives prompt-text detection. Confidence is the fraction
// of a type's keywords present in the prompt, so longer keyword lists demand
// stronger evidence.
var triggerKeywords = map[TriggerType][]string{
	TriggerResearch:      {"research", "investigate", "explore", "compare", "deep dive"},
	TriggerAudit:         {"audit", "review", "security", "verify", "inspect"},
	TriggerConsolidation: {"consolidate", "prune", "cleanup", "patterns"},
	TriggerMetrics:       {"metrics", "resource", "load", "usage"},
}

// DetectTriggers scans free prompt text for background-work hints and
// returns candidates ordered by confidence. An empty result means nothing to
// dispatch; scores are advisory and the caller picks its own threshold.
func DetectTriggers(prompt string) []Trigger {
	text := strings.ToLower(prompt)
	var out []Trigger
	for typ, keywords := range triggerKeywords {
		var matched []string
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}
		out = append(out, Trigger{
			Type:       typ,
			Confidence: float64(len(matched)) / float64(len(keywords)),
			Matched:    matched,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Type < out[j].Type
	})
	return out
}
