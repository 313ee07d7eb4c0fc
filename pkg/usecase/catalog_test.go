package usecase_test

import (
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func entryCodes(entries []*model.ClassificationEntry) []string {
	codes := make([]string, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	return codes
}

func TestCatalogUseCase_Search(t *testing.T) {
	uc := usecase.NewCatalogUseCase(newTestReferenceData(), nil)

	t.Run("keyword matches keep catalog order", func(t *testing.T) {
		got, err := uc.Search("encryption", 0)
		gt.NoError(t, err).Required()
		gt.V(t, entryCodes(got)).Equal([]string{"5A002", "5A992"})
	})

	t.Run("exact code comes first", func(t *testing.T) {
		got, err := uc.Search(" 4a003 ", 0)
		gt.NoError(t, err).Required()
		gt.V(t, entryCodes(got)).Equal([]string{"4A003", "4A994"})
	})

	t.Run("limit", func(t *testing.T) {
		got, err := uc.Search("4A003", 1)
		gt.NoError(t, err).Required()
		gt.V(t, entryCodes(got)).Equal([]string{"4A003"})
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		got, err := uc.Search("submarine", 0)
		gt.NoError(t, err).Required()
		gt.A(t, got).Length(0)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		_, err := uc.Search("  ", 0)
		gt.Error(t, err).Is(usecase.ErrEmptyInput)
	})
}

func TestCatalogUseCase_Detail(t *testing.T) {
	uc := usecase.NewCatalogUseCase(newTestReferenceData(), nil)

	destinations := func(d *model.CodeDetail) []string {
		names := make([]string, len(d.Destinations))
		for i, l := range d.Destinations {
			names[i] = l.Destination
		}
		return names
	}

	t.Run("exact reasons", func(t *testing.T) {
		got, err := uc.Detail("5A002")
		gt.NoError(t, err).Required()
		gt.V(t, got.Entry.Code).Equal("5A002")
		gt.N(t, got.TotalDestinations).Equal(7)
		gt.V(t, destinations(got)).Equal([]string{"China", "Korea, North", "Niger"})
		gt.V(t, got.Destinations[1].Columns).Equal(reasons("NS1", "AT1"))
		gt.B(t, got.Destinations[1].Embargoed).True()
		gt.A(t, got.UnmappedReasons).Length(0)
	})

	t.Run("family reasons cover every column", func(t *testing.T) {
		got, err := uc.Detail("4a003")
		gt.NoError(t, err).Required()
		gt.V(t, destinations(got)).Equal([]string{"China", "Korea, North", "Japan", "Niger"})
		gt.V(t, got.Destinations[0].Columns).Equal(reasons("NS1", "NS2"))
		gt.V(t, got.Destinations[2].Columns).Equal(reasons("NS2"))
	})

	t.Run("embargoed destination is listed without a required column", func(t *testing.T) {
		got, err := uc.Detail("5A991")
		gt.NoError(t, err).Required()
		gt.V(t, destinations(got)).Equal([]string{"Korea, North"})
		gt.A(t, got.Destinations[0].Columns).Length(0)
		gt.V(t, got.UnmappedReasons).Equal([]types.ControlReason{"RS"})
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		_, err := uc.Detail("9Z999")
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}
