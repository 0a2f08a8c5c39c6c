// Package notifications sends customer email.
package notifications

import (
	"context"
	"fmt"

	"github.com/keighl/postmark"
	"go.uber.org/zap"
)

// Message is a single outgoing email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// PostmarkNotifier delivers messages through the Postmark API.
type PostmarkNotifier struct {
	client *postmark.Client
	sender string
	logger *zap.Logger
}

// NewPostmarkNotifier creates a notifier for the given server token and sender address.
func NewPostmarkNotifier(apiToken, sender string, logger *zap.Logger) *PostmarkNotifier {
	return &PostmarkNotifier{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
		logger: logger,
	}
}

// WithBaseURL points the client at a different API host.
func (n *PostmarkNotifier) WithBaseURL(url string) *PostmarkNotifier {
	n.client.BaseURL = url
	return n
}

// Notify sends msg. The Postmark client has no context support, so ctx is
// only checked before the request is made.
func (n *PostmarkNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := msg.TextBody
	if text == "" {
		text = msg.HTMLBody
	}
	res, err := n.client.SendEmail(postmark.Email{
		From:     n.sender,
		To:       msg.To,
		Subject:  msg.Subject,
		HtmlBody: msg.HTMLBody,
		TextBody: text,
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	n.logger.Info("email sent", zap.String("to", msg.To), zap.String("message_id", res.MessageID))
	return nil
}

// LogNotifier only logs the messages it is given. It is used when no
// Postmark token is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.logger.Info("email delivery disabled, dropping message",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
