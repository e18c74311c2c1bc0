package gsuite

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"eva/internal/actions"
	"eva/internal/logger"
)

// Mail implements actions.MailService against the user's Gmail
// account.
type Mail struct {
	auth *Auth
}

func NewMail(auth *Auth) *Mail {
	return &Mail{auth: auth}
}

func (m *Mail) service(ctx context.Context) (*gmail.Service, error) {
	client, err := m.auth.Client(ctx)
	if err != nil {
		return nil, err
	}
	return gmail.NewService(ctx, option.WithHTTPClient(client))
}

func (m *Mail) SendEmail(ctx context.Context, to, subject, body string) error {
	svc, err := m.service(ctx)
	if err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	raw := base64.URLEncoding.EncodeToString([]byte(msg.String()))
	if _, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send email to %s: %w", to, m.auth.mapAPIError(err))
	}
	logger.Info("gsuite: sent email to %s", to)
	return nil
}

func (m *Mail) UnreadEmails(ctx context.Context, max int) ([]actions.EmailSummary, error) {
	if max <= 0 {
		max = 5
	}
	svc, err := m.service(ctx)
	if err != nil {
		return nil, err
	}

	list, err := svc.Users.Messages.List("me").Q("is:unread in:inbox").MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", m.auth.mapAPIError(err))
	}

	out := make([]actions.EmailSummary, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", ref.Id).Format("metadata").
			MetadataHeaders("From", "Subject").Context(ctx).Do()
		if err != nil {
			logger.Warn("gsuite: fetch message %s: %v", ref.Id, err)
			continue
		}
		out = append(out, summarize(msg))
	}
	return out, nil
}

// Unanswered returns unread messages along with their ids and sender
// addresses, for the auto-reply watcher.
func (m *Mail) Unanswered(ctx context.Context, max int) ([]IncomingEmail, error) {
	if max <= 0 {
		max = 10
	}
	svc, err := m.service(ctx)
	if err != nil {
		return nil, err
	}

	list, err := svc.Users.Messages.List("me").Q("is:unread in:inbox").MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list unanswered: %w", m.auth.mapAPIError(err))
	}

	out := make([]IncomingEmail, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", ref.Id).Format("metadata").
			MetadataHeaders("From", "Subject", "Message-ID").Context(ctx).Do()
		if err != nil {
			continue
		}
		s := summarize(msg)
		out = append(out, IncomingEmail{
			ID:        ref.Id,
			From:      s.From,
			Subject:   s.Subject,
			MessageID: header(msg, "Message-ID"),
		})
	}
	return out, nil
}

// MarkRead removes the UNREAD label from a message.
func (m *Mail) MarkRead(ctx context.Context, id string) error {
	svc, err := m.service(ctx)
	if err != nil {
		return err
	}
	_, err = svc.Users.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, m.auth.mapAPIError(err))
	}
	return nil
}

// IncomingEmail is an unread message as seen by the auto-reply
// watcher.
type IncomingEmail struct {
	ID        string
	From      string
	Subject   string
	MessageID string
}

func summarize(msg *gmail.Message) actions.EmailSummary {
	return actions.EmailSummary{
		From:    header(msg, "From"),
		Subject: header(msg, "Subject"),
		Snippet: msg.Snippet,
	}
}

func header(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
