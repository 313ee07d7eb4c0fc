package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// AggregateInput is everything the risk aggregator reads
type AggregateInput struct {
	Fields         model.ExtractedFields
	Ambiguities    []string
	Classification model.StageResult[*model.Classification]
	Destination    model.StageResult[*model.DestinationControl]
	Screening      model.StageResult[*model.ScreeningResult]
	Exceptions     model.StageResult[*model.ExceptionAnalysis]
}

const (
	actionDefault = "Consult an export control specialist to confirm this determination"
	actionRecord  = "Record and retain this analysis"
)

// triggerActions is the fixed action table keyed by trigger
var triggerActions = map[types.Trigger][]string{
	types.TriggerRestrictedPartyHit: {
		"Screen the end user against the authoritative restricted-party list before proceeding",
		"Suspend the transaction until the restricted-party match is cleared",
	},
	types.TriggerEmbargoedDestination: {
		"Stop the transaction and escalate to the export control officer",
	},
	types.TriggerLicenseRequiredHighSeverity: {
		"Apply for an export license before shipment",
	},
	types.TriggerLicenseRequired: {
		"Apply for an export license or confirm an applicable license exception before shipment",
	},
	types.TriggerControlRequirementUnknown: {
		"Confirm the control requirement for the destination manually",
	},
	types.TriggerAmbiguousDestination: {
		"Confirm the exact destination country",
	},
	types.TriggerClassificationUnverified: {
		"Verify the classification code against the product's technical specifications",
	},
	types.TriggerExceptionAnalysisUnavailable: {
		"Re-run the license exception analysis or review license exceptions manually",
	},
	types.TriggerEndUserUnscreened: {
		"Identify the end user and screen it against the restricted-party list",
	},
}

type aggregation struct {
	fired    map[types.Trigger]bool
	warnings map[types.Trigger][]string
	covered  []types.ControlReason
}

func (a *aggregation) fire(t types.Trigger, warning string) {
	a.fired[t] = true
	a.warnings[t] = append(a.warnings[t], warning)
}

// Aggregate turns the stage results into a risk assessment. It is a pure function:
// the same input and policy always give an identical assessment. A high trigger can
// not be lowered by any other stage.
func Aggregate(input AggregateInput, policy *config.Policy) *model.RiskAssessment {
	a := &aggregation{
		fired:    make(map[types.Trigger]bool),
		warnings: make(map[types.Trigger][]string),
	}

	checkScreening(a, input.Screening)
	checkClassification(a, input.Classification)
	checkDestination(a, input.Destination, input.Exceptions, policy)
	checkExceptions(a, input.Exceptions)

	assessment := &model.RiskAssessment{
		RiskLevel:          types.RiskLevelLow,
		Triggers:           []types.Trigger{},
		Warnings:           []string{},
		RecommendedActions: []string{},
		CoveredReasons:     a.covered,
	}

	affectsLicense := false
	for _, t := range types.AllTriggers() {
		if !a.fired[t] {
			continue
		}
		assessment.Triggers = append(assessment.Triggers, t)
		assessment.Warnings = append(assessment.Warnings, a.warnings[t]...)
		assessment.RiskLevel = assessment.RiskLevel.Max(t.Level())
		if t.AffectsLicense() {
			affectsLicense = true
		}
	}
	for _, amb := range input.Ambiguities {
		assessment.Warnings = append(assessment.Warnings, "Extraction: "+amb)
	}

	switch {
	case affectsLicense:
		assessment.LicenseDetermination = types.LicenseRequired
	case len(a.covered) > 0:
		assessment.LicenseDetermination = types.LicenseExceptionAvailable
	default:
		assessment.LicenseDetermination = types.LicenseNotRequired
	}

	assessment.RecommendedActions = recommendedActions(assessment, input.Exceptions)
	return assessment
}

func checkScreening(a *aggregation, s model.StageResult[*model.ScreeningResult]) {
	if s.Status.Failed() || s.Value == nil {
		a.fire(types.TriggerEndUserUnscreened, "End user was not screened: "+orDefault(s.Reason, "end user unknown"))
		return
	}
	if s.Value.Hit && s.Value.Record != nil {
		rec := s.Value.Record
		a.fire(types.TriggerRestrictedPartyHit, fmt.Sprintf(
			"End user %q matches restricted party %q (%s): %s",
			s.Value.Query, rec.Name, orDefault(rec.Country, "country unknown"), orDefault(rec.ListingReason, "no listing reason")))
	}
}

func checkClassification(a *aggregation, c model.StageResult[*model.Classification]) {
	if c.Status.Failed() || c.Value == nil || c.Value.Fallback {
		a.fire(types.TriggerClassificationUnverified,
			fmt.Sprintf("Classification %s is an unverified fallback: %s", model.SentinelCode, orDefault(c.Reason, "no usable answer")))
	}
}

func checkDestination(a *aggregation, d model.StageResult[*model.DestinationControl], x model.StageResult[*model.ExceptionAnalysis], policy *config.Policy) {
	if d.Value == nil || d.Value.Resolution == nil {
		a.fire(types.TriggerAmbiguousDestination, "Destination could not be resolved: "+orDefault(d.Reason, "no result"))
		return
	}

	res := d.Value.Resolution
	if res.Embargoed {
		a.fire(types.TriggerEmbargoedDestination, fmt.Sprintf("Destination %q is under embargo (%s)", res.Query, res.Embargo))
	}
	if d.Status.Failed() || !res.Resolved() {
		a.fire(types.TriggerAmbiguousDestination, "Destination needs manual review: "+orDefault(d.Reason, "not resolved"))
	}

	eval := d.Value.Evaluation
	if eval == nil {
		return
	}

	for _, req := range eval.Requirements {
		switch req.Requirement {
		case types.RequirementRequired:
			if coveredByException(x, req.Column) {
				a.covered = appendReason(a.covered, req.Column)
				continue
			}
			msg := fmt.Sprintf("Control reason %s requires a license for %s", req.Column, res.Row.Destination)
			if policy.IsHighSeverity(req.Column) {
				a.fire(types.TriggerLicenseRequiredHighSeverity, msg)
			} else {
				a.fire(types.TriggerLicenseRequired, msg)
			}
		case types.RequirementUnknown:
			a.fire(types.TriggerControlRequirementUnknown,
				fmt.Sprintf("Control reason %s has no entry in the control matrix for %s", req.Reason, res.Row.Destination))
		}
	}
}

func checkExceptions(a *aggregation, x model.StageResult[*model.ExceptionAnalysis]) {
	if x.Status.Failed() {
		a.fire(types.TriggerExceptionAnalysisUnavailable, "License exception analysis unavailable: "+orDefault(x.Reason, "stage failed"))
	}
}

// coveredByException reports whether a usable exception lifts the column. Candidates of a
// failed stage are never used.
func coveredByException(x model.StageResult[*model.ExceptionAnalysis], column types.ControlReason) bool {
	if x.Status.Failed() || x.Value == nil {
		return false
	}
	for _, c := range x.Value.Candidates {
		if c.Usable() && c.CoversReason(column) {
			return true
		}
	}
	return false
}

func recommendedActions(assessment *model.RiskAssessment, x model.StageResult[*model.ExceptionAnalysis]) []string {
	var actions []string
	add := func(s string) { actions = appendUnique(actions, s) }

	for _, t := range assessment.Triggers {
		for _, action := range triggerActions[t] {
			add(action)
		}
	}

	if !x.Status.Failed() && x.Value != nil {
		if assessment.LicenseDetermination == types.LicenseExceptionAvailable {
			var codes []string
			for _, c := range x.Value.Candidates {
				if c.Usable() && coversAny(c, assessment.CoveredReasons) {
					codes = appendUnique(codes, c.ExceptionCode)
				}
			}
			sort.Strings(codes)
			add(fmt.Sprintf("Document the use of license exception %s and keep the supporting records", strings.Join(codes, ", ")))
		}

		var conditional []string
		for _, c := range x.Value.Candidates {
			if c.Applicability == types.ApplicabilityConditional {
				conditional = appendUnique(conditional, c.ExceptionCode)
			}
		}
		sort.Strings(conditional)
		for _, code := range conditional {
			add(fmt.Sprintf("Verify the conditions of license exception %s before relying on it", code))
		}
	}

	if len(assessment.Triggers) == 0 {
		add(actionDefault)
	}
	add(actionRecord)
	return actions
}

func coversAny(c *model.ExceptionCandidate, columns []types.ControlReason) bool {
	for _, col := range columns {
		if c.CoversReason(col) {
			return true
		}
	}
	return false
}

func appendReason(list []types.ControlReason, r types.ControlReason) []types.ControlReason {
	for _, v := range list {
		if v == r {
			return list
		}
	}
	return append(list, r)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
