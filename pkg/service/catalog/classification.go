package catalog

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type classificationFile struct {
	Categories []categoryJSON `json:"ccl_categories"`
}

type categoryJSON struct {
	Number        json.RawMessage `json:"category_number"`
	Title         string          `json:"title"`
	ProductGroups []groupJSON     `json:"product_groups"`
}

type groupJSON struct {
	Letter string     `json:"group_letter"`
	Title  string     `json:"group_title"`
	Items  []itemJSON `json:"items"`
}

type itemJSON struct {
	ECCN           string   `json:"eccn"`
	Description    string   `json:"description"`
	ControlReason  string   `json:"control_reason"`
	ControlReasons []string `json:"control_reasons"`
}

// ParseClassification reads the classification catalog JSON. Items listing several
// codes ("0A998, 0A999") become one entry per code. Items without a well-formed code
// are skipped.
func ParseClassification(r io.Reader) (*model.ClassificationCatalog, error) {
	var file classificationFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, loadError(err, "failed to decode classification catalog")
	}
	if len(file.Categories) == 0 {
		return nil, goerr.Wrap(model.ErrCatalogLoad, "classification catalog has no categories")
	}

	categories := make([]*model.ClassificationCategory, 0, len(file.Categories))
	for _, c := range file.Categories {
		cat := &model.ClassificationCategory{
			ID:    rawString(c.Number),
			Title: strings.TrimSpace(c.Title),
		}

		for _, g := range c.ProductGroups {
			grp := &model.ClassificationGroup{
				Letter: strings.TrimSpace(g.Letter),
				Title:  strings.TrimSpace(g.Title),
			}

			for _, item := range g.Items {
				for _, code := range SplitCodes(item.ECCN) {
					grp.Entries = append(grp.Entries, &model.ClassificationEntry{
						Code:           code,
						CategoryID:     cat.ID,
						CategoryTitle:  cat.Title,
						GroupLetter:    grp.Letter,
						GroupTitle:     grp.Title,
						Description:    strings.TrimSpace(item.Description),
						ControlReasons: itemReasons(item, code),
					})
				}
			}
			cat.Groups = append(cat.Groups, grp)
		}
		categories = append(categories, cat)
	}

	return model.NewClassificationCatalog(categories), nil
}

// SplitCodes splits a multi-code field and keeps only well-formed codes
func SplitCodes(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == ' ' || r == '、'
	})

	var codes []string
	for _, p := range parts {
		code := model.NormalizeClassificationCode(p)
		if model.IsWellFormedClassificationCode(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

func itemReasons(item itemJSON, code string) []types.ControlReason {
	var reasons []types.ControlReason
	for _, r := range item.ControlReasons {
		reasons = append(reasons, types.ParseControlReasons(r)...)
	}
	reasons = append(reasons, types.ParseControlReasons(item.ControlReason)...)
	if len(reasons) > 0 {
		return dedupReasons(reasons)
	}
	return DeriveControlReasons(code)
}

// DeriveControlReasons infers control-reason families from the third character of a
// classification code. Every listed item is also controlled for anti-terrorism.
func DeriveControlReasons(code string) []types.ControlReason {
	if len(code) < 3 {
		return nil
	}

	switch code[2] {
	case '0', '6':
		return []types.ControlReason{types.ControlReasonNS, types.ControlReasonAT}
	case '1':
		return []types.ControlReason{types.ControlReasonMT, types.ControlReasonAT}
	case '2':
		return []types.ControlReason{types.ControlReasonNP, types.ControlReasonAT}
	case '3':
		return []types.ControlReason{types.ControlReasonCB, types.ControlReasonAT}
	default:
		return []types.ControlReason{types.ControlReasonAT}
	}
}

func dedupReasons(reasons []types.ControlReason) []types.ControlReason {
	seen := make(map[types.ControlReason]struct{}, len(reasons))
	result := make([]types.ControlReason, 0, len(reasons))
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		result = append(result, r)
	}
	return result
}

// rawString accepts both JSON strings and numbers
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
