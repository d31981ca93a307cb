package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tidystat/internal/tidy"

	"github.com/slack-go/slack"
)

// Notifier sends a message about a finished run.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyReport(ctx context.Context, target string, report *tidy.Report) error
}

// SlackNotifier sends notifications to Slack via a Webhook.
type SlackNotifier struct {
	WebhookURL string
	Username   string
	Client     *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Username:   "tidystat",
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends a plain text message to the configured Slack webhook.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	return s.post(ctx, &slack.WebhookMessage{Username: s.Username, Text: message})
}

// NotifyReport posts the fix summary of an analysis run, with the
// per-category coverage as attachment fields.
func (s *SlackNotifier) NotifyReport(ctx context.Context, target string, report *tidy.Report) error {
	if report == nil {
		return errors.New("no report to send")
	}
	return s.post(ctx, ReportMessage(s.Username, target, report))
}

func (s *SlackNotifier) post(ctx context.Context, msg *slack.WebhookMessage) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}

// ReportMessage builds the webhook payload for a report.
func ReportMessage(username, target string, report *tidy.Report) *slack.WebhookMessage {
	field := func(title string, r tidy.Ratio) slack.AttachmentField {
		return slack.AttachmentField{
			Title: title,
			Value: fmt.Sprintf("%d/%d (%.2f%%)", r.Fixed, r.Potential, r.Percent),
			Short: true,
		}
	}

	return &slack.WebhookMessage{
		Username: username,
		Text:     fmt.Sprintf("%s: %s", target, report.Summary()),
		Attachments: []slack.Attachment{{
			Color: reportColor(report.Fixes.Percent),
			Fields: []slack.AttachmentField{
				field("Unary", report.UnaryFixed),
				field("Assignment", report.AssignmentFixed),
				field("Non-assignment", report.NonAssignmentFixed),
			},
		}},
	}
}

func reportColor(pct float64) string {
	switch {
	case pct >= 90:
		return "good"
	case pct >= 50:
		return "warning"
	default:
		return "danger"
	}
}
