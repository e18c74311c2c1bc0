package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eva/internal/contacts"
	"eva/internal/logger"
)

type contactHandlers struct {
	store *contacts.Store
}

// RegisterContacts wires the contact-book actions into the registry.
func RegisterContacts(reg *Registry, store *contacts.Store) {
	h := &contactHandlers{store: store}
	reg.Register("add_contact", h.add)
	reg.Register("list_contacts", h.list)
	reg.Register("remove_contact", h.remove)
	reg.Register("get_contact_email", h.email)
	reg.Register("get_contact_emails", h.list)
}

func (h *contactHandlers) add(ctx context.Context, ents Entities) Result {
	name := ents.String("name")
	email := ents.String("email")
	if err := h.store.Upsert(ctx, name, email); err != nil {
		if errors.Is(err, contacts.ErrInvalidEmail) {
			return Message(fmt.Sprintf("« %s » ne ressemble pas à une adresse email valide. Pouvez-vous la vérifier ?", email))
		}
		logger.Error("contacts: add %q: %v", name, err)
		return errorRecord("Désolé, je n'ai pas pu enregistrer ce contact.", nil)
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: fmt.Sprintf("J'ai ajouté %s (%s) à vos contacts.", name, email),
		Fields:  map[string]string{"name": name, "email": email},
	}
}

func (h *contactHandlers) list(ctx context.Context, ents Entities) Result {
	all, err := h.store.All(ctx)
	if err != nil {
		logger.Error("contacts: list: %v", err)
		return errorRecord("Désolé, je n'ai pas pu consulter vos contacts.", nil)
	}
	if len(all) == 0 {
		return &Record{Status: StatusSuccess, Summary: "Votre carnet de contacts est vide."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Voici vos %d contacts :\n", len(all))
	for _, c := range all {
		fmt.Fprintf(&b, "- %s : %s\n", c.Name, c.Email)
	}
	return &Record{Status: StatusSuccess, Summary: strings.TrimRight(b.String(), "\n")}
}

func (h *contactHandlers) remove(ctx context.Context, ents Entities) Result {
	name := ents.String("name")
	removed, err := h.store.Delete(ctx, name)
	if err != nil {
		logger.Error("contacts: remove %q: %v", name, err)
		return errorRecord("Désolé, je n'ai pas pu supprimer ce contact.", nil)
	}
	if !removed {
		return &Record{Status: StatusNotFound, Summary: fmt.Sprintf("Je n'ai trouvé aucun contact nommé « %s ».", name)}
	}
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai supprimé %s de vos contacts.", name)}
}

func (h *contactHandlers) email(ctx context.Context, ents Entities) Result {
	name := ents.String("name")
	addr, err := h.store.EmailFor(ctx, name)
	if err != nil {
		if err == contacts.ErrNotFound {
			return &Record{Status: StatusNotFound, Summary: fmt.Sprintf("Je n'ai trouvé aucun contact nommé « %s ».", name)}
		}
		logger.Error("contacts: lookup %q: %v", name, err)
		return errorRecord("Désolé, je n'ai pas pu consulter vos contacts.", nil)
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: fmt.Sprintf("L'adresse email de %s est %s.", name, addr),
		Fields:  map[string]string{"name": name, "email": addr},
	}
}
