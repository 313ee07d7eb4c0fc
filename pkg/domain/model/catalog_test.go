package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

func newTestCatalog() *model.ClassificationCatalog {
	return model.NewClassificationCatalog([]*model.ClassificationCategory{
		{
			ID:    "5",
			Title: "Telecommunications and Information Security",
			Groups: []*model.ClassificationGroup{
				{
					Letter: "A",
					Title:  "Systems, Equipment and Components",
					Entries: []*model.ClassificationEntry{
						{Code: "5A002", CategoryID: "5", Description: "Encryption hardware for networking equipment", ControlReasons: []types.ControlReason{"NS1", "AT1"}},
						{Code: "5A991", CategoryID: "5", Description: "Telecommunication equipment not controlled by 5A001", ControlReasons: []types.ControlReason{"AT"}},
					},
				},
			},
		},
		{
			ID:    "4",
			Title: "Computers",
			Groups: []*model.ClassificationGroup{
				{
					Letter: "A",
					Title:  "Systems",
					Entries: []*model.ClassificationEntry{
						{Code: "4A994", CategoryID: "4", Description: "Computers and electronic assemblies", ControlReasons: []types.ControlReason{"AT"}},
						{Code: "5A002", CategoryID: "4", Description: "duplicate code"},
					},
				},
			},
		},
	})
}

func TestClassificationCatalog_Lookup(t *testing.T) {
	c := newTestCatalog()

	e, ok := c.Lookup(" 5a002 ")
	gt.B(t, ok).True()
	gt.V(t, e.Description).Equal("Encryption hardware for networking equipment")

	_, ok = c.Lookup("9A999")
	gt.B(t, ok).False()

	gt.N(t, c.Len()).Equal(4)
}

func TestClassificationCatalog_Search(t *testing.T) {
	c := newTestCatalog()

	hits := c.Search("networking encryption hardware", 10)
	gt.A(t, hits).Length(1)
	gt.V(t, hits[0].Code).Equal("5A002")

	hits = c.Search("equipment", 10)
	gt.A(t, hits).Length(2)
	gt.V(t, hits[0].Code).Equal("5A002")
	gt.V(t, hits[1].Code).Equal("5A991")

	gt.A(t, c.Search("equipment", 1)).Length(1)
	gt.A(t, c.Search("a of", 10)).Length(0)
}

func TestClassificationCatalog_Summary(t *testing.T) {
	summary := newTestCatalog().Summary()
	gt.A(t, summary).Length(2)
	gt.V(t, summary[0].ID).Equal("5")
	gt.N(t, summary[0].Entries).Equal(2)
	gt.N(t, summary[1].Groups).Equal(1)
}

func TestIsWellFormedClassificationCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"5A002", true},
		{"0A999", true},
		{"EAR99", false},
		{"5a002", false},
		{"5A02", false},
		{"5A0021", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.want {
				gt.B(t, model.IsWellFormedClassificationCode(tt.code)).True()
			} else {
				gt.B(t, model.IsWellFormedClassificationCode(tt.code)).False()
			}
		})
	}
}

func TestControlMatrix(t *testing.T) {
	m := &model.ControlMatrix{
		Columns: []types.ControlReason{"NS1", "NS2", "AT1"},
		Rows: []*model.DestinationControlRow{
			{Destination: "Canada", PermissionRequired: map[types.ControlReason]bool{"NS1": true, "NS2": false}},
		},
	}

	gt.A(t, m.ColumnsFor("NS")).Length(2)
	gt.A(t, m.ColumnsFor("NS2")).Length(1)
	gt.B(t, m.HasColumnFor("CB")).False()

	row, ok := m.Find("canada")
	gt.B(t, ok).True()
	gt.V(t, row.Requirement("NS 1")).Equal(types.RequirementRequired)
	gt.V(t, row.Requirement("NS2")).Equal(types.RequirementNotRequired)
	gt.V(t, row.Requirement("AT1")).Equal(types.RequirementUnknown)
}
