package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// minScreeningQueryRunes is the shortest end-user text that is searched inside registry names
const minScreeningQueryRunes = 3

// Screener checks end users against the restricted-party registry.
// Matching is substring containment on normalized names; a hit is a signal for review,
// not proof of identity, and a miss does not prove the party is unlisted.
type Screener struct {
	registry *model.RestrictedPartyRegistry
	names    []string
}

// NewScreener creates a Screener. Registry names are normalized once.
func NewScreener(registry *model.RestrictedPartyRegistry) *Screener {
	s := &Screener{registry: registry}
	if registry != nil {
		s.names = make([]string, len(registry.Records))
		for i, rec := range registry.Records {
			s.names[i] = normalizeName(rec.Name)
		}
	}
	return s
}

// Screen returns the first registry record whose name contains the end user or is
// contained in it. An empty end user skips the stage.
func (s *Screener) Screen(endUser string) model.StageResult[*model.ScreeningResult] {
	query := strings.TrimSpace(endUser)
	result := &model.ScreeningResult{Query: query}

	q := normalizeName(query)
	if q == "" {
		return model.Skipped(types.StageScreening, result, "end user unknown")
	}

	for i, name := range s.names {
		if name == "" {
			continue
		}
		if strings.Contains(q, name) ||
			(utf8.RuneCountInString(q) >= minScreeningQueryRunes && strings.Contains(name, q)) {
			result.Hit = true
			result.Record = s.registry.Records[i]
			break
		}
	}

	return model.OK(types.StageScreening, result)
}
