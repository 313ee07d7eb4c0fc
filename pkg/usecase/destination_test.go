package usecase_test

import (
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestDestinationResolver_Resolve(t *testing.T) {
	refs := newTestReferenceData()
	r := usecase.NewDestinationResolver(refs.Matrix, config.DefaultPolicy())

	t.Run("case-insensitive substring match", func(t *testing.T) {
		got := r.Resolve("  canada ")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.V(t, got.Value.Resolution.Row.Destination).Equal("Canada")
		gt.B(t, got.Value.Resolution.Embargoed).False()
	})

	t.Run("word order does not matter", func(t *testing.T) {
		got := r.Resolve("North Korea")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.V(t, got.Value.Resolution.Row.Destination).Equal("Korea, North")
		gt.B(t, got.Value.Resolution.Embargoed).True()
		gt.V(t, got.Value.Resolution.Embargo).Equal("North Korea")
	})

	t.Run("exact name wins among several matches", func(t *testing.T) {
		got := r.Resolve("Nigeria")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.V(t, got.Value.Resolution.Row.Destination).Equal("Nigeria")
	})

	t.Run("several matches without exact name are ambiguous", func(t *testing.T) {
		got := r.Resolve("Korea")
		gt.V(t, got.Status).Equal(types.StageStatusDegraded)
		gt.B(t, got.Value.Resolution.Resolved()).False()
		gt.V(t, got.Value.Resolution.Candidates).Equal([]string{"Korea, North", "Korea, South"})
		gt.Error(t, got.Err).Is(model.ErrAmbiguousDestination)
	})

	t.Run("zero matches never yield a default row", func(t *testing.T) {
		for _, dest := range []string{"Atlantis", "", "   "} {
			got := r.Resolve(dest)
			gt.V(t, got.Status).Equal(types.StageStatusDegraded)
			gt.B(t, got.Value.Resolution.Resolved()).False()
			gt.V(t, got.Value.Evaluation).Equal((*model.DestinationEvaluation)(nil))
			gt.Error(t, got.Err).Is(model.ErrAmbiguousDestination)
		}
	})

	t.Run("embargo applies to destinations missing from the matrix", func(t *testing.T) {
		got := r.Resolve("Iran")
		gt.V(t, got.Status).Equal(types.StageStatusDegraded)
		gt.B(t, got.Value.Resolution.Embargoed).True()
	})

	t.Run("embargo is matched on whole words", func(t *testing.T) {
		got := r.Resolve("Tirana, Albania")
		gt.B(t, got.Value.Resolution.Embargoed).False()
	})
}

func TestDestinationResolver_Evaluate(t *testing.T) {
	refs := newTestReferenceData()
	r := usecase.NewDestinationResolver(refs.Matrix, config.DefaultPolicy())

	classify := func(code string) *model.Classification {
		e, ok := refs.Classification.Lookup(code)
		gt.B(t, ok).True()
		return model.NewClassificationFromEntry(e, "")
	}

	t.Run("family tag expands to every column", func(t *testing.T) {
		res := r.Resolve("Japan").Value.Resolution
		eval := r.Evaluate(res, classify("4A003"))

		gt.V(t, eval.Requirements).Equal([]model.ReasonRequirement{
			{Reason: "NS", Column: "NS1", Requirement: types.RequirementNotRequired},
			{Reason: "NS", Column: "NS2", Requirement: types.RequirementRequired},
			{Reason: "AT", Column: "AT1", Requirement: types.RequirementNotRequired},
		})
		gt.V(t, eval.Determination).Equal(types.LicenseRequired)
	})

	t.Run("exact tag matches only its column", func(t *testing.T) {
		res := r.Resolve("Japan").Value.Resolution
		eval := r.Evaluate(res, classify("5A002"))

		gt.A(t, eval.Required()).Length(0)
		gt.V(t, eval.Determination).Equal(types.LicenseNotRequired)
	})

	t.Run("reason without column is unknown", func(t *testing.T) {
		res := r.Resolve("Canada").Value.Resolution
		eval := r.Evaluate(res, classify("5A991"))

		gt.A(t, eval.Unknown()).Length(1)
		gt.V(t, eval.Unknown()[0].Reason).Equal(types.ControlReason("RS"))
		gt.V(t, eval.Determination).Equal(types.LicenseNotRequired)
	})

	t.Run("sentinel classification requires nothing", func(t *testing.T) {
		res := r.Resolve("China").Value.Resolution
		eval := r.Evaluate(res, model.NewSentinelClassification("", false))

		gt.A(t, eval.Requirements).Length(0)
		gt.V(t, eval.Determination).Equal(types.LicenseNotRequired)
	})

	t.Run("embargo requires a license regardless of reasons", func(t *testing.T) {
		res := r.Resolve("North Korea").Value.Resolution
		eval := r.Evaluate(res, model.NewSentinelClassification("", false))
		gt.V(t, eval.Determination).Equal(types.LicenseRequired)
	})

	t.Run("unresolved destination is not evaluated", func(t *testing.T) {
		res := r.Resolve("Atlantis").Value.Resolution
		gt.V(t, r.Evaluate(res, classify("4A003"))).Equal((*model.DestinationEvaluation)(nil))
	})
}
