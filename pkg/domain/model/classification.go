package model

import "github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"

// Classification is the output of the classifier. Fallback is set when the
// code is the sentinel substituted for an unusable answer.
type Classification struct {
	Code           string                `json:"code"`
	Entry          *ClassificationEntry  `json:"entry,omitempty"`
	CategoryTitle  string                `json:"category_title,omitempty"`
	GroupTitle     string                `json:"group_title,omitempty"`
	ControlReasons []types.ControlReason `json:"control_reasons"`
	Rationale      string                `json:"rationale"`
	Fallback       bool                  `json:"fallback"`
}

// NewSentinelClassification returns the sentinel classification
func NewSentinelClassification(rationale string, fallback bool) *Classification {
	return &Classification{
		Code:      SentinelCode,
		Rationale: rationale,
		Fallback:  fallback,
	}
}

// NewClassificationFromEntry returns a classification backed by a catalog entry
func NewClassificationFromEntry(entry *ClassificationEntry, rationale string) *Classification {
	reasons := make([]types.ControlReason, len(entry.ControlReasons))
	copy(reasons, entry.ControlReasons)
	return &Classification{
		Code:           entry.Code,
		Entry:          entry,
		CategoryTitle:  entry.CategoryTitle,
		GroupTitle:     entry.GroupTitle,
		ControlReasons: reasons,
		Rationale:      rationale,
	}
}

// IsSentinel reports whether the classification is the catch-all code
func (c *Classification) IsSentinel() bool {
	return c == nil || c.Code == SentinelCode
}
