package gsuite

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"eva/internal/actions"
)

// Tasks implements actions.TaskService against the default Google
// Tasks list.
type Tasks struct {
	auth *Auth
}

func NewTasks(auth *Auth) *Tasks {
	return &Tasks{auth: auth}
}

func (t *Tasks) service(ctx context.Context) (*tasks.Service, error) {
	client, err := t.auth.Client(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.NewService(ctx, option.WithHTTPClient(client))
}

func (t *Tasks) CreateTask(ctx context.Context, title string, due time.Time) (string, error) {
	svc, err := t.service(ctx)
	if err != nil {
		return "", err
	}

	item := &tasks.Task{Title: title}
	if !due.IsZero() {
		item.Due = due.UTC().Format(time.RFC3339)
	}
	created, err := svc.Tasks.Insert("@default", item).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert task: %w", t.auth.mapAPIError(err))
	}
	return created.Id, nil
}

func (t *Tasks) ListTasks(ctx context.Context) ([]actions.Task, error) {
	svc, err := t.service(ctx)
	if err != nil {
		return nil, err
	}

	list, err := svc.Tasks.List("@default").ShowCompleted(false).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", t.auth.mapAPIError(err))
	}

	out := make([]actions.Task, 0, len(list.Items))
	for _, item := range list.Items {
		task := actions.Task{ID: item.Id, Title: item.Title, Done: item.Status == "completed"}
		if item.Due != "" {
			if due, err := time.Parse(time.RFC3339, item.Due); err == nil {
				task.Due = due
			}
		}
		out = append(out, task)
	}
	return out, nil
}

func (t *Tasks) DeleteTask(ctx context.Context, id string) error {
	svc, err := t.service(ctx)
	if err != nil {
		return err
	}
	if err := svc.Tasks.Delete("@default", id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete task %s: %w", id, t.auth.mapAPIError(err))
	}
	return nil
}

func (t *Tasks) RenameTask(ctx context.Context, id, title string) error {
	svc, err := t.service(ctx)
	if err != nil {
		return err
	}
	if _, err := svc.Tasks.Patch("@default", id, &tasks.Task{Title: title}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("rename task %s: %w", id, t.auth.mapAPIError(err))
	}
	return nil
}
