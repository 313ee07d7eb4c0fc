package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestClassifier_Classify(t *testing.T) {
	refs := newTestReferenceData()
	policy := config.DefaultPolicy()

	t.Run("catalog code is accepted", func(t *testing.T) {
		svc := &mockLLMService{classifyCode: "5a002"}
		c := usecase.NewClassifier(svc, refs.Classification, policy)

		got := c.Classify(context.Background(), "Networking encryption hardware", "")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.V(t, got.Value.Code).Equal("5A002")
		gt.V(t, got.Value.ControlReasons).Equal(reasons("NS1", "AT1"))
		gt.B(t, got.Value.Fallback).False()
		gt.V(t, got.Value.Rationale).Equal("matched by description")
	})

	t.Run("sentinel answer is accepted without fallback", func(t *testing.T) {
		svc := &mockLLMService{classifyCode: "EAR99"}
		c := usecase.NewClassifier(svc, refs.Classification, policy)

		got := c.Classify(context.Background(), "Standard laptop", "")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.B(t, got.Value.IsSentinel()).True()
		gt.B(t, got.Value.Fallback).False()
	})

	t.Run("malformed codes are replaced by the sentinel", func(t *testing.T) {
		for _, code := range []string{"5A00", "XA002", "5A002X", "see list", ""} {
			svc := &mockLLMService{classifyCode: code}
			c := usecase.NewClassifier(svc, refs.Classification, policy)

			got := c.Classify(context.Background(), "Networking encryption hardware", "")
			gt.V(t, got.Status).Equal(types.StageStatusDegraded)
			gt.V(t, got.Value.Code).Equal(model.SentinelCode)
			gt.B(t, got.Value.Fallback).True()
			gt.Error(t, got.Err).Is(model.ErrClassificationMismatch)
		}
	})

	t.Run("well-formed code missing from the catalog is replaced", func(t *testing.T) {
		svc := &mockLLMService{classifyCode: "9A012"}
		c := usecase.NewClassifier(svc, refs.Classification, policy)

		got := c.Classify(context.Background(), "Unmanned aerial vehicle", "")
		gt.V(t, got.Status).Equal(types.StageStatusDegraded)
		gt.V(t, got.Value.Code).Equal(model.SentinelCode)
		gt.Error(t, got.Err).Is(model.ErrClassificationMismatch)
	})

	t.Run("non-JSON answer is scanned for a code", func(t *testing.T) {
		svc := &mockLLMService{completeFn: func(ctx context.Context, input llm.CompleteInput) (string, error) {
			return "The best match is 4A994 because it is a general purpose computer.", nil
		}}
		c := usecase.NewClassifier(svc, refs.Classification, policy)

		got := c.Classify(context.Background(), "Office computer", "")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.V(t, got.Value.Code).Equal("4A994")
	})

	t.Run("service error makes the stage unavailable", func(t *testing.T) {
		svc := &mockLLMService{completeFn: func(ctx context.Context, input llm.CompleteInput) (string, error) {
			return "", errors.New("quota exceeded")
		}}
		c := usecase.NewClassifier(svc, refs.Classification, policy)

		got := c.Classify(context.Background(), "Networking encryption hardware", "")
		gt.V(t, got.Status).Equal(types.StageStatusUnavailable)
		gt.V(t, got.Value.Code).Equal(model.SentinelCode)
		gt.B(t, got.Value.Fallback).True()
		gt.Error(t, got.Err).Is(model.ErrService)
	})

	t.Run("timeout is reported as stage timeout", func(t *testing.T) {
		p := config.DefaultPolicy()
		p.StageTimeout = 10 * time.Millisecond
		svc := &mockLLMService{completeFn: func(ctx context.Context, input llm.CompleteInput) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}}
		c := usecase.NewClassifier(svc, refs.Classification, p)

		got := c.Classify(context.Background(), "Networking encryption hardware", "")
		gt.V(t, got.Status).Equal(types.StageStatusUnavailable)
		gt.Error(t, got.Err).Is(model.ErrStageTimeout)
		gt.Error(t, got.Err).Is(model.ErrService)
	})

	t.Run("empty item is not sent to the service", func(t *testing.T) {
		svc := &mockLLMService{classifyCode: "5A002"}
		c := usecase.NewClassifier(svc, refs.Classification, policy)

		got := c.Classify(context.Background(), "  ", "")
		gt.V(t, got.Status).Equal(types.StageStatusUnavailable)
		gt.B(t, got.Value.Fallback).True()
		gt.A(t, svc.calls()).Length(0)
	})

	t.Run("prompt carries catalog and policy settings", func(t *testing.T) {
		svc := &mockLLMService{classifyCode: "5A002"}
		c := usecase.NewClassifier(svc, refs.Classification, policy)
		c.Classify(context.Background(), "Networking encryption hardware", "Data center links")

		calls := svc.calls()
		gt.A(t, calls).Length(1).Required()
		gt.V(t, calls[0].Temperature).Equal(policy.ClassificationTemperature)
		gt.V(t, calls[0].MaxTokens).Equal(policy.MaxTokens)
		gt.B(t, calls[0].Schema != nil).True()
		gt.B(t, strings.Contains(calls[0].Prompt, "5A002")).True()
		gt.B(t, strings.Contains(calls[0].Prompt, "Data center links")).True()
		gt.B(t, strings.Contains(calls[0].Prompt, model.SentinelCode)).True()
	})
}

func TestClassifier_CatalogExcerpt(t *testing.T) {
	refs := newTestReferenceData()

	t.Run("keyword matches come first", func(t *testing.T) {
		c := usecase.NewClassifier(&mockLLMService{}, refs.Classification, config.DefaultPolicy())
		got := usecase.CatalogExcerpt(c, "encryption hardware")

		first := strings.Index(got, "5A002")
		category := strings.Index(got, "### Category 4")
		gt.N(t, first).GreaterOrEqual(0)
		gt.B(t, first < category).True()
	})

	t.Run("entries per group are bounded", func(t *testing.T) {
		p := config.DefaultPolicy()
		p.CatalogItemsPerGroup = 1
		c := usecase.NewClassifier(&mockLLMService{}, refs.Classification, p)
		got := usecase.CatalogExcerpt(c, "zzz")

		gt.B(t, strings.Contains(got, "4A003")).True()
		gt.B(t, strings.Contains(got, "4A994")).False()
	})

	t.Run("block is bounded", func(t *testing.T) {
		p := config.DefaultPolicy()
		p.CatalogPromptChars = 80
		c := usecase.NewClassifier(&mockLLMService{}, refs.Classification, p)
		got := usecase.CatalogExcerpt(c, "zzz")

		gt.B(t, len([]rune(got)) <= 80).True()
		gt.B(t, strings.HasSuffix(got, "\n")).True()
	})

	t.Run("same input gives the same excerpt", func(t *testing.T) {
		c := usecase.NewClassifier(&mockLLMService{}, refs.Classification, config.DefaultPolicy())
		gt.V(t, usecase.CatalogExcerpt(c, "encryption")).Equal(usecase.CatalogExcerpt(c, "encryption"))
	})
}

func TestParseClassificationResponse(t *testing.T) {
	code, rationale := usecase.ParseClassificationResponse(`{"code": "5A002", "rationale": "encryption"}`)
	gt.V(t, code).Equal("5A002")
	gt.V(t, rationale).Equal("encryption")

	code, _ = usecase.ParseClassificationResponse("no licence needed, ear99")
	gt.V(t, code).Equal("EAR99")

	code, _ = usecase.ParseClassificationResponse("I am not sure")
	gt.V(t, code).Equal("")
}
