package actions

import (
	"context"
	"fmt"
	"strings"

	"eva/internal/logger"
)

// EmailSummary is one message header as shown to the user.
type EmailSummary struct {
	From    string
	Subject string
	Snippet string
}

// MailService is the slice of the mailbox collaborator the handlers
// need.
type MailService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	UnreadEmails(ctx context.Context, max int) ([]EmailSummary, error)
}

// ContactBook resolves contact names to email addresses. Both the mail
// and contact handlers depend on it.
type ContactBook interface {
	EmailFor(ctx context.Context, name string) (string, error)
}

type mailHandlers struct {
	svc  MailService
	book ContactBook
}

// RegisterMail wires the email actions into the registry. book may be
// nil, in which case recipients must be literal addresses.
func RegisterMail(reg *Registry, svc MailService, book ContactBook) {
	h := &mailHandlers{svc: svc, book: book}
	reg.Register("send_email", h.send)
	reg.Register("list_emails", h.list)
}

// resolveRecipient maps a recipient entity to an address. Anything
// containing "@" is taken as-is; otherwise the contact book is asked.
func (h *mailHandlers) resolveRecipient(ctx context.Context, to string) (string, error) {
	if strings.Contains(to, "@") {
		return to, nil
	}
	if h.book == nil {
		return "", fmt.Errorf("no contact book to resolve %q", to)
	}
	return h.book.EmailFor(ctx, to)
}

func (h *mailHandlers) send(ctx context.Context, ents Entities) Result {
	to := ents.First("to", "recipient")
	addr, err := h.resolveRecipient(ctx, to)
	if err != nil {
		logger.Warn("mail: resolve recipient %q: %v", to, err)
		return &Record{Status: StatusNotFound, Summary: fmt.Sprintf("Je ne connais pas l'adresse email de « %s ». Voulez-vous l'ajouter à vos contacts ?", to)}
	}

	subject := ents.First("subject", "object")
	if subject == "" {
		subject = "Message d'EVA"
	}
	body := ents.First("body", "message")

	if err := h.svc.SendEmail(ctx, addr, subject, body); err != nil {
		logger.Error("mail: send to %s: %v", addr, err)
		return errorRecord("Désolé, je n'ai pas pu envoyer cet email.", nil)
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: fmt.Sprintf("J'ai envoyé l'email « %s » à %s.", subject, addr),
		Fields:  map[string]string{"to": addr, "subject": subject},
	}
}

func (h *mailHandlers) list(ctx context.Context, ents Entities) Result {
	max := ents.Int("max_results", 5)
	emails, err := h.svc.UnreadEmails(ctx, max)
	if err != nil {
		logger.Error("mail: list unread: %v", err)
		return errorRecord("Désolé, je n'ai pas pu consulter votre boîte de réception.", nil)
	}
	if len(emails) == 0 {
		return &Record{Status: StatusSuccess, Summary: "Vous n'avez aucun email non lu."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Vous avez %d emails non lus :\n", len(emails))
	for _, m := range emails {
		fmt.Fprintf(&b, "- De %s : %s\n", m.From, m.Subject)
	}
	return &Record{Status: StatusSuccess, Summary: strings.TrimRight(b.String(), "\n")}
}
