package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// maxSectionTextBytes is the Block Kit limit of a section text
const maxSectionTextBytes = 3000

// Notifier posts report summaries to one channel
type Notifier struct {
	svc       Service
	channelID string
}

var _ interfaces.Notifier = &Notifier{}

// NewNotifier creates a Notifier
func NewNotifier(svc Service, channelID string) (*Notifier, error) {
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}
	return &Notifier{svc: svc, channelID: channelID}, nil
}

// Notify posts the summary of the report
func (n *Notifier) Notify(ctx context.Context, report *model.Report) error {
	if report == nil || report.Assessment == nil {
		return goerr.New("report has no assessment")
	}

	blocks := BuildReportBlocks(report)
	text := fmt.Sprintf("Export control check: %s risk, license %s",
		report.Assessment.RiskLevel, report.Assessment.LicenseDetermination)

	ts, err := n.svc.PostMessage(ctx, n.channelID, blocks, text)
	if err != nil {
		return goerr.Wrap(err, "failed to notify report", goerr.V(model.ReportIDKey, report.ID))
	}

	logging.From(ctx).Info("report notified",
		slog.String("report_id", string(report.ID)),
		slog.String("channel_id", n.channelID),
		slog.String("ts", ts),
	)
	return nil
}

var riskEmoji = map[types.RiskLevel]string{
	types.RiskLevelHigh:   ":red_circle:",
	types.RiskLevelMedium: ":large_orange_circle:",
	types.RiskLevelLow:    ":large_green_circle:",
}

// BuildReportBlocks renders the report as Block Kit blocks
func BuildReportBlocks(report *model.Report) []slack.Block {
	a := report.Assessment

	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType,
		fmt.Sprintf("%s Export control: %s risk", riskEmoji[a.RiskLevel], strings.ToUpper(a.RiskLevel.String())), true, false))

	fields := []*slack.TextBlockObject{
		mrkdwn(fmt.Sprintf("*License*\n%s", a.LicenseDetermination)),
		mrkdwn(fmt.Sprintf("*Classification*\n%s", classificationText(report))),
		mrkdwn(fmt.Sprintf("*Destination*\n%s", orUnknown(report.Fields.Destination))),
		mrkdwn(fmt.Sprintf("*End user*\n%s", orUnknown(report.Fields.EndUser))),
	}

	blocks := []slack.Block{
		header,
		slack.NewSectionBlock(mrkdwn(fmt.Sprintf("*Item*\n%s", orUnknown(report.Fields.ItemDescription))), fields, nil),
	}

	if len(a.Warnings) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(bulletList("Warnings", a.Warnings)), nil, nil))
	}
	if len(a.RecommendedActions) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(bulletList("Recommended actions", a.RecommendedActions)), nil, nil))
	}

	if len(report.DegradedStages) > 0 {
		var stages []string
		for _, d := range report.DegradedStages {
			stages = append(stages, fmt.Sprintf("%s (%s): %s", d.Stage, d.Status, d.Reason))
		}
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(bulletList("Incomplete stages", stages)), nil, nil))
	}

	footer := fmt.Sprintf("Report `%s`", report.ID)
	if report.Source != "" {
		footer += fmt.Sprintf(" from %s", report.Source)
	}
	blocks = append(blocks, slack.NewContextBlock("", mrkdwn(footer)))

	return blocks
}

func classificationText(report *model.Report) string {
	c := report.Classification.Value
	if c == nil {
		return model.SentinelCode
	}
	if c.Fallback {
		return c.Code + " (unverified)"
	}
	return c.Code
}

func bulletList(title string, items []string) string {
	var b strings.Builder
	b.WriteString("*" + title + "*\n")
	for _, item := range items {
		b.WriteString("• " + item + "\n")
	}
	return truncateToMaxBytes(strings.TrimSuffix(b.String(), "\n"), maxSectionTextBytes)
}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func orUnknown(s string) string {
	if s == "" {
		return "_unknown_"
	}
	return s
}

// truncateToMaxBytes cuts s to at most maxBytes without splitting a UTF-8 sequence
func truncateToMaxBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const ellipsis = "…"
	cut := maxBytes - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
