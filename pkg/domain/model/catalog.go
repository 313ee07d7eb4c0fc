package model

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// SentinelCode is the catch-all classification for items not listed in the catalog
const SentinelCode = "EAR99"

var classificationCodePattern = regexp.MustCompile(`^[0-9][A-Z][0-9]{3}$`)

// NormalizeClassificationCode trims and upper-cases a classification code
func NormalizeClassificationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsWellFormedClassificationCode reports whether code has the digit-letter-three-digit shape
func IsWellFormedClassificationCode(code string) bool {
	return classificationCodePattern.MatchString(code)
}

// ClassificationEntry is one controlled item of the classification catalog
type ClassificationEntry struct {
	Code           string                `json:"code"`
	CategoryID     string                `json:"category_id"`
	CategoryTitle  string                `json:"category_title"`
	GroupLetter    string                `json:"group_letter"`
	GroupTitle     string                `json:"group_title"`
	Description    string                `json:"description"`
	ControlReasons []types.ControlReason `json:"control_reasons"`
}

// ClassificationGroup is a product group within a category
type ClassificationGroup struct {
	Letter  string
	Title   string
	Entries []*ClassificationEntry
}

// ClassificationCategory is a top-level catalog category
type ClassificationCategory struct {
	ID     string
	Title  string
	Groups []*ClassificationGroup
}

// ClassificationCatalog is the read-only, ordered classification catalog.
// It must not be modified after construction.
type ClassificationCatalog struct {
	categories []*ClassificationCategory
	index      map[string]*ClassificationEntry
	entries    []*ClassificationEntry
}

// NewClassificationCatalog builds the code index. When a code appears more than once,
// the first occurrence in catalog order is kept in the index.
func NewClassificationCatalog(categories []*ClassificationCategory) *ClassificationCatalog {
	c := &ClassificationCatalog{
		categories: categories,
		index:      make(map[string]*ClassificationEntry),
	}
	for _, cat := range categories {
		for _, grp := range cat.Groups {
			for _, e := range grp.Entries {
				c.entries = append(c.entries, e)
				if _, exists := c.index[e.Code]; !exists {
					c.index[e.Code] = e
				}
			}
		}
	}
	return c
}

// Categories returns the categories in catalog order
func (c *ClassificationCatalog) Categories() []*ClassificationCategory {
	return c.categories
}

// Entries returns every entry in catalog order
func (c *ClassificationCatalog) Entries() []*ClassificationEntry {
	return c.entries
}

// Len returns the number of entries
func (c *ClassificationCatalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for the code, if present
func (c *ClassificationCatalog) Lookup(code string) (*ClassificationEntry, bool) {
	e, ok := c.index[NormalizeClassificationCode(code)]
	return e, ok
}

// Search returns entries whose description shares words with the query, best first.
// Ties keep catalog order. At most limit entries are returned; limit <= 0 means no limit.
func (c *ClassificationCatalog) Search(query string, limit int) []*ClassificationEntry {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		entry *ClassificationEntry
		score int
	}
	var hits []scored
	for _, e := range c.entries {
		text := strings.ToLower(e.Description + " " + e.GroupTitle)
		score := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{entry: e, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	result := make([]*ClassificationEntry, len(hits))
	for i, h := range hits {
		result[i] = h.entry
	}
	return result
}

// CategorySummary is the entry count of one category
type CategorySummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Groups  int    `json:"groups"`
	Entries int    `json:"entries"`
}

// Summary returns per-category counts in catalog order
func (c *ClassificationCatalog) Summary() []CategorySummary {
	summaries := make([]CategorySummary, 0, len(c.categories))
	for _, cat := range c.categories {
		s := CategorySummary{ID: cat.ID, Title: cat.Title, Groups: len(cat.Groups)}
		for _, grp := range cat.Groups {
			s.Entries += len(grp.Entries)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// searchTerms splits a query into lower-cased words of at least three runes.
// Very common words are dropped so they do not dominate the ranking.
func searchTerms(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := make(map[string]struct{}, len(words))
	var terms []string
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "that": {},
	"this": {}, "are": {}, "not": {}, "other": {}, "than": {}, "having": {},
}
