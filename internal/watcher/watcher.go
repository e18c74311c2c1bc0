// Package watcher polls the inbox on a schedule and drafts automatic
// replies to unread messages.
package watcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"eva/internal/agent"
	"eva/internal/gsuite"
	"eva/internal/logger"
)

// Mailbox is the slice of the mail collaborator the watcher needs.
type Mailbox interface {
	Unanswered(ctx context.Context, max int) ([]gsuite.IncomingEmail, error)
	SendEmail(ctx context.Context, to, subject, body string) error
	MarkRead(ctx context.Context, id string) error
}

// Config controls which senders get automatic replies.
type Config struct {
	Schedule         string
	Monitored        []string
	ExcludedPrefixes []string
	ReplyAll         bool
}

// Watcher runs the auto-reply job.
type Watcher struct {
	mailbox  Mailbox
	provider agent.Provider
	cfg      Config
	cron     *cron.Cron

	// pollMu serializes polls; cron runs overlapping invocations in
	// separate goroutines.
	pollMu  sync.Mutex
	replied map[string]struct{}
}

func New(mailbox Mailbox, provider agent.Provider, cfg Config) *Watcher {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	return &Watcher{
		mailbox:  mailbox,
		provider: provider,
		cfg:      cfg,
		cron:     cron.New(),
		replied:  make(map[string]struct{}),
	}
}

// Start schedules the polling job. The returned stop function blocks
// until a running job finishes.
func (w *Watcher) Start() (func(), error) {
	_, err := w.cron.AddFunc(w.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := w.poll(ctx); err != nil {
			logger.Error("watcher: poll: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", w.cfg.Schedule, err)
	}
	w.cron.Start()
	logger.Info("watcher: auto-reply running on schedule %q", w.cfg.Schedule)
	return func() { <-w.cron.Stop().Done() }, nil
}

func (w *Watcher) poll(ctx context.Context) error {
	w.pollMu.Lock()
	defer w.pollMu.Unlock()

	emails, err := w.mailbox.Unanswered(ctx, 10)
	if err != nil {
		return err
	}

	for _, mail := range emails {
		if _, done := w.replied[mail.ID]; done {
			continue
		}
		if !w.shouldReply(mail.From) {
			continue
		}

		body, err := w.draftReply(ctx, mail)
		if err != nil {
			logger.Warn("watcher: draft reply to %s: %v", mail.From, err)
			continue
		}
		subject := mail.Subject
		if !strings.HasPrefix(strings.ToLower(subject), "re:") {
			subject = "Re: " + subject
		}
		if err := w.mailbox.SendEmail(ctx, replyAddress(mail.From), subject, body); err != nil {
			logger.Error("watcher: send auto-reply to %s: %v", mail.From, err)
			continue
		}
		w.replied[mail.ID] = struct{}{}
		if err := w.mailbox.MarkRead(ctx, mail.ID); err != nil {
			logger.Warn("watcher: mark read %s: %v", mail.ID, err)
		}
		logger.Info("watcher: auto-replied to %s", mail.From)
	}
	return nil
}

// shouldReply applies the sender filters: excluded prefixes always
// lose, then either everyone (ReplyAll) or the monitored list.
func (w *Watcher) shouldReply(from string) bool {
	addr := strings.ToLower(replyAddress(from))
	for _, prefix := range w.cfg.ExcludedPrefixes {
		if strings.HasPrefix(addr, strings.ToLower(prefix)) {
			return false
		}
	}
	if w.cfg.ReplyAll {
		return true
	}
	for _, monitored := range w.cfg.Monitored {
		if strings.EqualFold(addr, monitored) {
			return true
		}
	}
	return false
}

func (w *Watcher) draftReply(ctx context.Context, mail gsuite.IncomingEmail) (string, error) {
	system := "Tu es EVA, une assistante personnelle. Rédige une courte réponse d'attente polie, en français, indiquant que le destinataire répondra dès que possible. Réponds uniquement avec le corps de l'email."
	prompt := fmt.Sprintf("Email reçu de %s, sujet : « %s ». Rédige la réponse d'attente.", mail.From, mail.Subject)
	return w.provider.Generate(ctx, system, []agent.Turn{{Role: agent.RoleUser, Text: prompt}})
}

// replyAddress extracts the bare address from a "Name <addr>" header.
func replyAddress(from string) string {
	if i := strings.Index(from, "<"); i >= 0 {
		if j := strings.Index(from[i:], ">"); j > 0 {
			return strings.TrimSpace(from[i+1 : i+j])
		}
	}
	return strings.TrimSpace(from)
}
