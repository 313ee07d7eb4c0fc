package config

import (
	"log/slog"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/slack"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for report notifications)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("EXPORT_CONTROL_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID that receives report notifications",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("EXPORT_CONTROL_SLACK_CHANNEL_ID"),
		},
	}
}

// IsConfigured returns true if a bot token is set
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// LogAttrs returns log attributes without the token
func (x *Slack) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("configured", x.IsConfigured()),
		slog.String("channel_id", x.channelID),
	}
}

// Configure returns the report notifier, or nil when Slack is not configured
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.channelID == "" {
		return nil, goerr.Wrap(ErrMissingOption, "slack-channel-id is required when slack-bot-token is set")
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack service")
	}

	notifier, err := slack.NewNotifier(svc, x.channelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack notifier")
	}
	return notifier, nil
}
