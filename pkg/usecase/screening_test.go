package usecase_test

import (
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestScreener_Screen(t *testing.T) {
	refs := newTestReferenceData()
	s := usecase.NewScreener(refs.Registry)

	t.Run("case-different exact name is a hit with the stored reason", func(t *testing.T) {
		got := s.Screen("EXAMPLE DEFENSE RESEARCH INSTITUTE")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.B(t, got.Value.Hit).True()
		gt.V(t, got.Value.Record.Name).Equal("Example Defense Research Institute")
		gt.V(t, got.Value.Record.ListingReason).Equal("Weapons of mass destruction procurement")
	})

	t.Run("end user text containing a listed name", func(t *testing.T) {
		got := s.Screen("Shenzhen branch of Huawei Technologies Co.  Ltd. (procurement)")
		gt.B(t, got.Value.Hit).True()
		gt.V(t, got.Value.Record.Country).Equal("China")
	})

	t.Run("partial end user name inside a listed name", func(t *testing.T) {
		got := s.Screen("huawei")
		gt.B(t, got.Value.Hit).True()
	})

	t.Run("full-width text is normalized", func(t *testing.T) {
		got := s.Screen("ＨＵＡＷＥＩ")
		gt.B(t, got.Value.Hit).True()
	})

	t.Run("too short text is not searched inside names", func(t *testing.T) {
		got := s.Screen("Hu")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.B(t, got.Value.Hit).False()
	})

	t.Run("no hit", func(t *testing.T) {
		got := s.Screen("Acme University")
		gt.V(t, got.Status).Equal(types.StageStatusOK)
		gt.B(t, got.Value.Hit).False()
		gt.V(t, got.Value.Record).Equal((*model.RestrictedPartyRecord)(nil))
	})

	t.Run("empty end user is skipped, not cleared", func(t *testing.T) {
		got := s.Screen(" ")
		gt.V(t, got.Status).Equal(types.StageStatusSkipped)
		gt.B(t, got.Value.Hit).False()
		gt.V(t, got.Reason).Equal("end user unknown")
	})

	t.Run("first match in registry order", func(t *testing.T) {
		reg := &model.RestrictedPartyRegistry{Records: []*model.RestrictedPartyRecord{
			{Name: "Alpha Trading", ListingReason: "first"},
			{Name: "Alpha Trading Company", ListingReason: "second"},
		}}
		got := usecase.NewScreener(reg).Screen("alpha trading company")
		gt.V(t, got.Value.Record.ListingReason).Equal("first")
	})
}
