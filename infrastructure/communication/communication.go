package communication

import (
	"fmt"
	"os"
	"strings"

	"github.com/slack-go/slack"

	"trackai.dev/trackai/trackai/core"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func ConnectSlack() *Slack {
	token := os.Getenv("SLACK_BOT_TOKEN")
	infoCh := os.Getenv("SLACK_INFO_CHANNEL")
	errorCh := os.Getenv("SLACK_ERROR_CHANNEL")

	return NewSlack(token, SlackOption{InfoChannelID: infoCh, ErrorChannelID: errorCh})
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	return s.postMessage(s.options.ErrorChannelID, message)
}

// SweepReport posts the auto-checkout summary to the info channel.
func (s *Slack) SweepReport(result core.SweepResult) error {
	return s.Info(FormatSweepReport(result))
}

// FormatSweepReport renders the sweep result as a Slack message.
func FormatSweepReport(result core.SweepResult) string {
	var b strings.Builder

	header := "Auto-checkout sweep"
	if result.DryRun {
		header += " (dry run)"
	}
	fmt.Fprintf(&b, "%s at cutoff %s: %d session(s)\n",
		header, result.Cutoff.Format("2006-01-02 15:04"), len(result.Swept))

	for _, swept := range result.Swept {
		fmt.Fprintf(&b, "- session %d, user %d, project %s, checked in %s\n",
			swept.SessionID, swept.UserID, swept.ProjectExternalID,
			swept.CheckInAt.Format("15:04"))
	}
	return b.String()
}
