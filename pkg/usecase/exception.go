package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/template"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

//go:embed prompt/exception.md
var exceptionPromptTmpl string

var exceptionPrompt = template.Must(template.New("exception").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(exceptionPromptTmpl))

const exceptionSystemPrompt = "You assess export license exceptions using only the retrieved references. Respond only with JSON that follows the schema."

// ExceptionRetriever proposes license exceptions grounded on retrieved precedents
type ExceptionRetriever struct {
	llm        llm.Service
	precedents interfaces.PrecedentRepository
	policy     *config.Policy
}

// NewExceptionRetriever creates an ExceptionRetriever
func NewExceptionRetriever(llmSvc llm.Service, precedents interfaces.PrecedentRepository, policy *config.Policy) *ExceptionRetriever {
	return &ExceptionRetriever{llm: llmSvc, precedents: precedents, policy: policy}
}

// ExceptionInput is what the exception stage needs from the earlier stages
type ExceptionInput struct {
	Fields         model.ExtractedFields
	Classification *model.Classification
	Destination    *model.DestinationControl
}

func (x ExceptionInput) code() string {
	if x.Classification == nil {
		return model.SentinelCode
	}
	return x.Classification.Code
}

func (x ExceptionInput) destination() string {
	if x.Destination != nil && x.Destination.Resolution.Resolved() {
		return x.Destination.Resolution.Row.Destination
	}
	return x.Fields.Destination
}

// requiredColumns lists the matrix columns that require a license at the destination
func (x ExceptionInput) requiredColumns() []string {
	if x.Destination == nil {
		return nil
	}
	var columns []string
	for _, r := range x.Destination.Evaluation.Required() {
		columns = append(columns, r.Column.String())
	}
	return columns
}

// BuildExceptionQuery synthesizes the retrieval query from the transaction
func BuildExceptionQuery(input ExceptionInput) string {
	parts := []string{"ECCN " + input.code()}
	if d := input.destination(); d != "" {
		parts = append(parts, "Destination: "+d)
	}
	if input.Fields.ItemDescription != "" {
		parts = append(parts, "Product: "+input.Fields.ItemDescription)
	}
	if input.Fields.EndUser != "" {
		parts = append(parts, "End user: "+input.Fields.EndUser)
	}
	if input.Fields.EndUse != "" {
		parts = append(parts, "End use: "+input.Fields.EndUse)
	}
	parts = append(parts, "What license exceptions are available?")
	return strings.Join(parts, "\n")
}

// Retrieve runs embedding, nearest-neighbour search and the exception prompt.
// Any backend failure or an empty retrieval makes the stage unavailable; it never
// returns an empty analysis in place of a failure.
func (x *ExceptionRetriever) Retrieve(ctx context.Context, input ExceptionInput) model.StageResult[*model.ExceptionAnalysis] {
	analysis := &model.ExceptionAnalysis{
		Query:      BuildExceptionQuery(input),
		Records:    []*model.PrecedentMatch{},
		Candidates: []*model.ExceptionCandidate{},
	}

	records, err := x.search(ctx, analysis.Query)
	if err != nil {
		return model.Unavailable(types.StageExceptions, analysis, stageReason(err, "precedent retrieval"), err)
	}
	analysis.Records = records
	if len(records) == 0 {
		err := goerr.Wrap(model.ErrNoPrecedent, "precedent index returned no record", goerr.V("top_k", x.policy.TopK))
		return model.Unavailable(types.StageExceptions, analysis, "no precedent retrieved", err)
	}

	raw, err := x.complete(ctx, input, records)
	if err != nil {
		return model.Unavailable(types.StageExceptions, analysis, stageReason(err, "exception analysis"), err)
	}

	candidates, err := parseExceptionCandidates(raw, records)
	if err != nil {
		return model.Unavailable(types.StageExceptions, analysis, "exception analysis returned an unreadable answer", err)
	}
	analysis.Candidates = candidates

	logging.From(ctx).Debug("exception analysis done",
		slog.Int("records", len(records)),
		slog.Int("candidates", len(candidates)),
	)
	return model.OK(types.StageExceptions, analysis)
}

func (x *ExceptionRetriever) search(ctx context.Context, query string) ([]*model.PrecedentMatch, error) {
	embedCtx, cancel := withStageTimeout(ctx, x.policy.StageTimeout)
	defer cancel()

	embedding, err := x.llm.Embed(embedCtx, query)
	if err != nil {
		return nil, stageError(err, "failed to embed exception query")
	}

	searchCtx, cancel := withStageTimeout(ctx, x.policy.StageTimeout)
	defer cancel()

	records, err := x.precedents.Search(searchCtx, embedding, x.policy.TopK)
	if err != nil {
		return nil, stageError(err, "failed to search precedents", goerr.V("top_k", x.policy.TopK))
	}
	return records, nil
}

type exceptionPromptData struct {
	Code          string
	Fallback      bool
	Destination   string
	Item          string
	EndUser       string
	EndUse        string
	ContractValue string
	Required      []string
	Context       string
}

func (x *ExceptionRetriever) complete(ctx context.Context, input ExceptionInput, records []*model.PrecedentMatch) (string, error) {
	data := exceptionPromptData{
		Code:          input.code(),
		Fallback:      input.Classification == nil || input.Classification.Fallback,
		Destination:   input.destination(),
		Item:          truncateRunes(input.Fields.ItemDescription, x.policy.MaxItemChars),
		EndUser:       input.Fields.EndUser,
		EndUse:        input.Fields.EndUse,
		ContractValue: formatContractValue(input.Fields.ContractValue),
		Required:      input.requiredColumns(),
		Context:       BuildRecordContext(records, x.policy.ContextChars),
	}

	var buf bytes.Buffer
	if err := exceptionPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render exception prompt")
	}

	callCtx, cancel := withStageTimeout(ctx, x.policy.StageTimeout)
	defer cancel()

	raw, err := x.llm.Complete(callCtx, llm.CompleteInput{
		SystemPrompt: exceptionSystemPrompt,
		Prompt:       buf.String(),
		Temperature:  x.policy.ExceptionTemperature,
		MaxTokens:    x.policy.MaxTokens,
		Schema:       exceptionSchema(),
	})
	if err != nil {
		return "", stageError(err, "exception completion failed")
	}
	return raw, nil
}

// formatContractValue appends the parsed amount to the raw value when it can be read
func formatContractValue(raw string) string {
	v, ok := ParseContractValue(raw)
	if !ok {
		return raw
	}
	if v.Currency == "" {
		return fmt.Sprintf("%s (amount %.0f)", raw, v.Amount)
	}
	return fmt.Sprintf("%s (%s %.0f)", raw, v.Currency, v.Amount)
}

// BuildRecordContext serializes the retrieved records in rank order with sorted metadata
// keys. The block is cut at a line boundary to limit runes.
func BuildRecordContext(records []*model.PrecedentMatch, limit int) string {
	var b strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&b, "[Result %d] (score %.4f) ID: %s\n", i+1, rec.Score, rec.ID)

		keys := make([]string, 0, len(rec.Metadata))
		for k := range rec.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, strings.Join(strings.Fields(rec.Metadata[k]), " "))
		}
		b.WriteString("\n")
	}
	return truncateLines(b.String(), limit)
}

type exceptionResponse struct {
	Candidates []struct {
		ExceptionCode  string   `json:"exception_code"`
		Applicability  string   `json:"applicability"`
		ControlReasons []string `json:"control_reasons"`
		Conditions     []string `json:"conditions"`
		Rationale      string   `json:"rationale"`
		Citation       string   `json:"citation"`
		SourceIDs      []string `json:"source_ids"`
	} `json:"candidates"`
}

// parseExceptionCandidates decodes and grounds the candidates. A candidate that cites no
// retrieved record can not be applicable and is lowered to conditional.
func parseExceptionCandidates(raw string, records []*model.PrecedentMatch) ([]*model.ExceptionCandidate, error) {
	var resp exceptionResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse exception response", goerr.V("response", truncateRunes(raw, 500)))
	}

	retrieved := make(map[string]struct{}, len(records))
	for _, r := range records {
		retrieved[string(r.ID)] = struct{}{}
	}

	candidates := []*model.ExceptionCandidate{}
	for _, c := range resp.Candidates {
		code := strings.ToUpper(strings.TrimSpace(c.ExceptionCode))
		if code == "" {
			continue
		}

		candidate := &model.ExceptionCandidate{
			ExceptionCode: code,
			Applicability: types.NormalizeApplicability(c.Applicability),
			Conditions:    nonEmpty(c.Conditions),
			Rationale:     strings.TrimSpace(c.Rationale),
			Citation:      strings.TrimSpace(c.Citation),
			SourceIDs:     []string{},
		}
		for _, r := range c.ControlReasons {
			candidate.ControlReasons = append(candidate.ControlReasons, types.ParseControlReasons(r)...)
		}
		for _, id := range c.SourceIDs {
			id = strings.TrimSpace(id)
			if _, ok := retrieved[id]; ok {
				candidate.SourceIDs = append(candidate.SourceIDs, id)
				candidate.Grounded = true
			}
		}
		if !candidate.Grounded && candidate.Applicability == types.ApplicabilityApplicable {
			candidate.Applicability = types.ApplicabilityConditional
		}

		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func nonEmpty(list []string) []string {
	out := []string{}
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func exceptionSchema() *gollem.Parameter {
	stringList := func(desc string) *gollem.Parameter {
		return &gollem.Parameter{
			Type:        gollem.TypeArray,
			Description: desc,
			Items:       &gollem.Parameter{Type: gollem.TypeString},
		}
	}

	return &gollem.Parameter{
		Title:       "ExceptionAnalysis",
		Description: "License exception candidates for the transaction",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"candidates": {
				Type:        gollem.TypeArray,
				Description: "One entry per plausible license exception",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"exception_code": {
							Type:        gollem.TypeString,
							Description: "License exception mnemonic such as LVS, GBS, TSR or ENC",
							Required:    true,
						},
						"applicability": {
							Type:        gollem.TypeString,
							Description: "applicable, conditional or not_applicable",
							Enum:        []string{"applicable", "conditional", "not_applicable"},
							Required:    true,
						},
						"control_reasons": stringList("Control reasons the exception lifts"),
						"conditions":      stringList("Conditions to verify before use"),
						"rationale": {
							Type:        gollem.TypeString,
							Description: "Why the exception applies or not",
							Required:    true,
						},
						"citation": {
							Type:        gollem.TypeString,
							Description: "Regulation section supporting the exception",
						},
						"source_ids": stringList("IDs of the retrieved references that support the candidate"),
					},
				},
			},
		},
	}
}
