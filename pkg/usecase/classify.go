package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"text/template"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

//go:embed prompt/classify.md
var classifyPromptTmpl string

var classifyPrompt = template.Must(template.New("classify").Parse(classifyPromptTmpl))

const (
	classifySystemPrompt = "You classify export-controlled items. Respond only with JSON that follows the schema."

	// catalogDescriptionRunes bounds each entry description in the prompt
	catalogDescriptionRunes = 200
)

// codeInTextPattern finds a code in a response that is not valid JSON
var codeInTextPattern = regexp.MustCompile(`\b(?:[0-9][A-Z][0-9]{3}|EAR99)\b`)

// Classifier maps an item description to a catalog code
type Classifier struct {
	llm     llm.Service
	catalog *model.ClassificationCatalog
	policy  *config.Policy
}

// NewClassifier creates a Classifier
func NewClassifier(llmSvc llm.Service, catalog *model.ClassificationCatalog, policy *config.Policy) *Classifier {
	return &Classifier{llm: llmSvc, catalog: catalog, policy: policy}
}

type classifyPromptData struct {
	Item     string
	EndUse   string
	Catalog  string
	Sentinel string
}

type classificationResponse struct {
	Code      string `json:"code"`
	Rationale string `json:"rationale"`
}

// Classify asks the completion service for a code and validates it against the catalog.
// It never returns an error; failures are reported in the stage status with the
// sentinel classification as fallback value.
func (c *Classifier) Classify(ctx context.Context, item, endUse string) model.StageResult[*model.Classification] {
	item = strings.TrimSpace(truncateRunes(item, c.policy.MaxItemChars))
	if item == "" {
		return model.Unavailable(types.StageClassification,
			model.NewSentinelClassification("item description is unknown", true),
			"item description is empty", nil)
	}

	var buf bytes.Buffer
	if err := classifyPrompt.Execute(&buf, classifyPromptData{
		Item:     item,
		EndUse:   endUse,
		Catalog:  c.catalogExcerpt(item),
		Sentinel: model.SentinelCode,
	}); err != nil {
		err = goerr.Wrap(err, "failed to render classification prompt")
		return model.Unavailable(types.StageClassification,
			model.NewSentinelClassification("classification prompt could not be built", true),
			"classification prompt failed", err)
	}

	callCtx, cancel := withStageTimeout(ctx, c.policy.StageTimeout)
	defer cancel()

	raw, err := c.llm.Complete(callCtx, llm.CompleteInput{
		SystemPrompt: classifySystemPrompt,
		Prompt:       buf.String(),
		Temperature:  c.policy.ClassificationTemperature,
		MaxTokens:    c.policy.MaxTokens,
		Schema:       classificationSchema(),
	})
	if err != nil {
		err = stageError(err, "classification completion failed")
		return model.Unavailable(types.StageClassification,
			model.NewSentinelClassification("classification service unavailable", true),
			stageReason(err, "classification"), err)
	}

	resp := parseClassificationResponse(raw)
	return c.validate(ctx, resp)
}

// validate round-trips the model's answer through the catalog
func (c *Classifier) validate(ctx context.Context, resp classificationResponse) model.StageResult[*model.Classification] {
	code := model.NormalizeClassificationCode(resp.Code)

	if code == model.SentinelCode {
		return model.OK(types.StageClassification, model.NewSentinelClassification(resp.Rationale, false))
	}

	if model.IsWellFormedClassificationCode(code) {
		if entry, ok := c.catalog.Lookup(code); ok {
			return model.OK(types.StageClassification, model.NewClassificationFromEntry(entry, resp.Rationale))
		}
	}

	logging.From(ctx).Warn("classification code rejected", slog.String("code", resp.Code))
	err := goerr.Wrap(model.ErrClassificationMismatch, "returned code is not in the catalog",
		goerr.V(model.CodeKey, resp.Code))
	fallback := model.NewSentinelClassification(
		fmt.Sprintf("model answer %q is not a catalog code: %s", resp.Code, resp.Rationale), true)
	return model.Degraded(types.StageClassification, fallback,
		fmt.Sprintf("code %q is not in the catalog", resp.Code), err)
}

// parseClassificationResponse decodes the JSON answer. When the answer is not JSON,
// the first code-shaped token of the text is used.
func parseClassificationResponse(raw string) classificationResponse {
	var resp classificationResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err == nil && resp.Code != "" {
		return resp
	}

	upper := strings.ToUpper(raw)
	return classificationResponse{
		Code:      codeInTextPattern.FindString(upper),
		Rationale: strings.TrimSpace(truncateRunes(raw, catalogDescriptionRunes)),
	}
}

// catalogExcerpt serialises a deterministic, bounded subset of the catalog: entries
// matching the item's keywords first, then every group in catalog order.
func (c *Classifier) catalogExcerpt(item string) string {
	perGroup := c.policy.CatalogItemsPerGroup

	var b strings.Builder
	if hits := c.catalog.Search(item, perGroup*2); len(hits) > 0 {
		b.WriteString("### Entries matching the item description\n")
		for _, e := range hits {
			writeCatalogEntry(&b, e)
		}
		b.WriteString("\n")
	}

	for _, cat := range c.catalog.Categories() {
		fmt.Fprintf(&b, "### Category %s: %s\n", cat.ID, cat.Title)
		for _, grp := range cat.Groups {
			fmt.Fprintf(&b, "#### %s%s: %s\n", cat.ID, grp.Letter, grp.Title)
			for i, e := range grp.Entries {
				if perGroup > 0 && i >= perGroup {
					break
				}
				writeCatalogEntry(&b, e)
			}
		}
	}

	return truncateLines(b.String(), c.policy.CatalogPromptChars)
}

func writeCatalogEntry(b *strings.Builder, e *model.ClassificationEntry) {
	desc := strings.Join(strings.Fields(e.Description), " ")
	fmt.Fprintf(b, "- %s: %s\n", e.Code, truncateRunes(desc, catalogDescriptionRunes))
}

func classificationSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "Classification",
		Description: "Classification code for the item",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"code": {
				Type:        gollem.TypeString,
				Description: "Catalog code such as 5A002, or EAR99 when no entry applies",
				Required:    true,
			},
			"rationale": {
				Type:        gollem.TypeString,
				Description: "Why this code applies",
				Required:    true,
			},
		},
	}
}
