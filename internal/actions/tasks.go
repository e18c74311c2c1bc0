package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eva/internal/dates"
	"eva/internal/logger"
)

// Task is one to-do item.
type Task struct {
	ID    string
	Title string
	Due   time.Time
	Done  bool
}

// TaskService is the slice of the task-list collaborator the handlers
// need.
type TaskService interface {
	CreateTask(ctx context.Context, title string, due time.Time) (string, error)
	ListTasks(ctx context.Context) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
	RenameTask(ctx context.Context, id, title string) error
}

type taskHandlers struct {
	svc TaskService
	now func() time.Time
}

// RegisterTasks wires the task actions into the registry.
func RegisterTasks(reg *Registry, svc TaskService, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	h := &taskHandlers{svc: svc, now: now}
	reg.Register("create_task", h.create)
	reg.Register("list_tasks", h.list)
	reg.Register("delete_task", h.remove)
	reg.Register("update_task", h.rename)
}

func (h *taskHandlers) create(ctx context.Context, ents Entities) Result {
	title := ents.First("title", "summary")
	var due time.Time
	if phrase := ents.First("due_date", "date"); phrase != "" {
		if t, ok := dates.Resolve(phrase, h.now()); ok {
			due = t
		}
	}

	if _, err := h.svc.CreateTask(ctx, title, due); err != nil {
		logger.Error("tasks: create %q: %v", title, err)
		return errorRecord("Désolé, je n'ai pas pu créer cette tâche.", nil)
	}
	if due.IsZero() {
		return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai ajouté la tâche « %s ».", title)}
	}
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai ajouté la tâche « %s » pour le %s.", title, dates.FormatDate(due))}
}

func (h *taskHandlers) list(ctx context.Context, ents Entities) Result {
	tasks, err := h.svc.ListTasks(ctx)
	if err != nil {
		logger.Error("tasks: list: %v", err)
		return errorRecord("Désolé, je n'ai pas pu consulter vos tâches.", nil)
	}

	var pending []Task
	for _, t := range tasks {
		if !t.Done {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return &Record{Status: StatusSuccess, Summary: "Vous n'avez aucune tâche en attente. Bravo !"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Voici vos %d tâches en attente :\n", len(pending))
	for _, t := range pending {
		if t.Due.IsZero() {
			fmt.Fprintf(&b, "- %s\n", t.Title)
		} else {
			fmt.Fprintf(&b, "- %s (pour le %s)\n", t.Title, dates.FormatDate(t.Due))
		}
	}
	return &Record{Status: StatusSuccess, Summary: strings.TrimRight(b.String(), "\n")}
}

// findTask matches pending tasks by case-insensitive substring, never
// auto-picking among several hits.
func (h *taskHandlers) findTask(ctx context.Context, title string) (Task, Result) {
	tasks, err := h.svc.ListTasks(ctx)
	if err != nil {
		logger.Error("tasks: find %q: %v", title, err)
		return Task{}, errorRecord("Désolé, je n'ai pas pu consulter vos tâches.", nil)
	}

	needle := strings.ToLower(strings.TrimSpace(title))
	var hits []Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			hits = append(hits, t)
		}
	}
	switch len(hits) {
	case 0:
		return Task{}, &Record{Status: StatusNotFound, Summary: fmt.Sprintf("Je n'ai trouvé aucune tâche correspondant à « %s ».", title)}
	case 1:
		return hits[0], nil
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "Plusieurs tâches correspondent à « %s » :\n", title)
		for _, t := range hits {
			fmt.Fprintf(&b, "- %s\n", t.Title)
		}
		b.WriteString("Pouvez-vous préciser laquelle ?")
		return Task{}, &Record{Status: StatusMultipleFound, Summary: b.String()}
	}
}

func (h *taskHandlers) remove(ctx context.Context, ents Entities) Result {
	task, early := h.findTask(ctx, ents.First("title", "summary"))
	if early != nil {
		return early
	}
	if err := h.svc.DeleteTask(ctx, task.ID); err != nil {
		logger.Error("tasks: delete %s: %v", task.ID, err)
		return errorRecord("Désolé, je n'ai pas pu supprimer cette tâche.", nil)
	}
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai supprimé la tâche « %s ».", task.Title)}
}

func (h *taskHandlers) rename(ctx context.Context, ents Entities) Result {
	task, early := h.findTask(ctx, ents.First("title", "summary"))
	if early != nil {
		return early
	}
	newTitle := ents.String("new_title")
	if err := h.svc.RenameTask(ctx, task.ID, newTitle); err != nil {
		logger.Error("tasks: rename %s: %v", task.ID, err)
		return errorRecord("Désolé, je n'ai pas pu renommer cette tâche.", nil)
	}
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai renommé la tâche « %s » en « %s ».", task.Title, newTitle)}
}
