package actions

import (
	"context"
	"sort"
	"sync"

	"eva/internal/logger"
)

// Handler executes one action with its validated entities.
type Handler func(ctx context.Context, ents Entities) Result

// Outcome is what Dispatch reports back to the orchestrator.
// Recognized is false when no handler is registered for the action, in
// which case Result is nil and the caller falls back to conversational
// handling.
type Outcome struct {
	Action     string
	Recognized bool
	Result     Result
}

// Registry maps action names to handlers. Registration happens during
// wiring; Dispatch is safe for concurrent use afterwards.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to an action name, replacing any previous
// binding.
func (r *Registry) Register(action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = h
}

// Actions returns the registered action names, sorted.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch validates the command's entities against the action schema
// and runs the handler. A missing required entity short-circuits into
// a clarifying question without invoking the handler. A handler panic
// is recovered and reported as an error Result so one bad turn cannot
// take down the session.
func (r *Registry) Dispatch(ctx context.Context, action string, ents Entities) (out Outcome) {
	out.Action = action

	r.mu.RLock()
	h, ok := r.handlers[action]
	r.mu.RUnlock()
	if !ok {
		logger.Debug("actions: unrecognized action %q", action)
		return out
	}
	out.Recognized = true

	if q := missingEntity(action, ents); q != "" {
		out.Result = Message(q)
		return out
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("actions: handler %q panicked: %v", action, rec)
			out.Result = errorRecord("Désolé, une erreur interne s'est produite lors de l'exécution de cette commande.", nil)
		}
	}()

	logger.Info("actions: dispatching %q", action)
	out.Result = h(ctx, ents)
	if out.Result == nil {
		out.Result = errorRecord("Désolé, cette commande n'a renvoyé aucun résultat.", nil)
	}
	return out
}
