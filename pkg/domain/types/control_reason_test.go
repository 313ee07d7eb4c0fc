package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

func TestNormalizeControlReason(t *testing.T) {
	tests := []struct {
		input string
		want  types.ControlReason
	}{
		{"NS 1", "NS1"},
		{"ns1", "NS1"},
		{" AT ", "AT"},
		{"NP\t2", "NP2"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gt.V(t, types.NormalizeControlReason(tt.input)).Equal(tt.want)
		})
	}
}

func TestControlReason_Covers(t *testing.T) {
	tests := []struct {
		name   string
		reason types.ControlReason
		column types.ControlReason
		want   bool
	}{
		{"family covers numbered column", "NS", "NS1", true},
		{"family covers second column", "NS", "NS 2", true},
		{"family does not cover other family", "NS", "NP1", false},
		{"exact matches itself", "NS1", "NS1", true},
		{"exact does not match sibling", "NS1", "NS2", false},
		{"exact does not match family column", "AT1", "AT", false},
		{"family matches bare column", "AT", "AT", true},
		{"lowercase input", "mt", "MT 1", true},
		{"empty reason", "", "NS1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want {
				gt.B(t, tt.reason.Covers(tt.column)).True()
			} else {
				gt.B(t, tt.reason.Covers(tt.column)).False()
			}
		})
	}
}

func TestControlReason_Family(t *testing.T) {
	gt.V(t, types.ControlReason("NS1").Family()).Equal(types.ControlReasonNS)
	gt.V(t, types.ControlReason("AT").Family()).Equal(types.ControlReasonAT)
	gt.B(t, types.ControlReason("CB").IsFamily()).True()
	gt.B(t, types.ControlReason("CB2").IsFamily()).False()
}

func TestParseControlReasons(t *testing.T) {
	got := types.ParseControlReasons("NS 1, AT1; ns1 /MT")
	gt.A(t, got).Length(3)
	gt.V(t, got[0]).Equal(types.ControlReason("NS1"))
	gt.V(t, got[1]).Equal(types.ControlReason("AT1"))
	gt.V(t, got[2]).Equal(types.ControlReasonMT)

	gt.A(t, types.ParseControlReasons(" , ")).Length(0)
}
