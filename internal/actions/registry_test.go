package actions

import (
	"context"
	"strings"
	"testing"
)

func TestDispatchUnknownAction(t *testing.T) {
	reg := NewRegistry()
	out := reg.Dispatch(context.Background(), "fly_to_the_moon", nil)
	if out.Recognized {
		t.Fatalf("unknown action reported as recognized")
	}
	if out.Result != nil {
		t.Fatalf("unknown action produced a result: %v", out.Result)
	}
}

func TestDispatchMissingEntityAsksQuestion(t *testing.T) {
	reg := NewRegistry()
	called := false
	reg.Register("send_email", func(ctx context.Context, ents Entities) Result {
		called = true
		return Message("sent")
	})

	out := reg.Dispatch(context.Background(), "send_email", Entities{"body": "salut"})
	if !out.Recognized {
		t.Fatalf("registered action not recognized")
	}
	if called {
		t.Fatalf("handler ran despite missing recipient")
	}
	if !IsClarification(out.Result) {
		t.Fatalf("expected a clarifying question, got %q", out.Result.Text())
	}
}

func TestDispatchAcceptsAlternateEntityKey(t *testing.T) {
	reg := NewRegistry()
	reg.Register("send_email", func(ctx context.Context, ents Entities) Result {
		return Message("sent")
	})

	out := reg.Dispatch(context.Background(), "send_email", Entities{
		"recipient": "paul@example.com",
		"message":   "salut",
	})
	if out.Result.Text() != "sent" {
		t.Fatalf("handler did not run with alternate keys: %q", out.Result.Text())
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Register("explode", func(ctx context.Context, ents Entities) Result {
		panic("boom")
	})

	out := reg.Dispatch(context.Background(), "explode", nil)
	if !out.Recognized {
		t.Fatalf("panicking action not recognized")
	}
	rec, ok := out.Result.(*Record)
	if !ok {
		t.Fatalf("expected a Record after panic, got %T", out.Result)
	}
	if rec.Status != StatusError {
		t.Fatalf("status = %s, want %s", rec.Status, StatusError)
	}
	if !strings.Contains(rec.Summary, "erreur interne") {
		t.Fatalf("summary does not mention internal error: %q", rec.Summary)
	}
}

func TestDispatchNilResultBecomesError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("noop", func(ctx context.Context, ents Entities) Result {
		return nil
	})

	out := reg.Dispatch(context.Background(), "noop", nil)
	rec, ok := out.Result.(*Record)
	if !ok || rec.Status != StatusError {
		t.Fatalf("nil handler result not converted to an error record: %#v", out.Result)
	}
}

func TestEntitiesCoercion(t *testing.T) {
	ents := Entities{
		"count": float64(3),
		"title": "  Réunion ",
		"flag":  true,
	}
	if got := ents.String("count"); got != "3" {
		t.Fatalf("String(count) = %q, want 3", got)
	}
	if got := ents.String("title"); got != "Réunion" {
		t.Fatalf("String(title) = %q", got)
	}
	if got := ents.Int("count", 0); got != 3 {
		t.Fatalf("Int(count) = %d", got)
	}
	if !ents.Bool("flag", false) {
		t.Fatalf("Bool(flag) = false")
	}
	if got := ents.First("missing", "title"); got != "Réunion" {
		t.Fatalf("First = %q", got)
	}
}
