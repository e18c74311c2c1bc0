package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"eva/internal/actions"
)

type scriptedProvider struct {
	replies []string
	calls   int
	seen    []Turn
	system  string
}

func (p *scriptedProvider) Generate(ctx context.Context, system string, turns []Turn) (string, error) {
	p.system = system
	p.seen = append([]Turn(nil), turns...)
	reply := p.replies[p.calls%len(p.replies)]
	p.calls++
	return reply, nil
}

type memCalendar struct {
	created []actions.CalendarEvent
}

func (m *memCalendar) CreateEvent(ctx context.Context, ev actions.CalendarEvent) (string, error) {
	m.created = append(m.created, ev)
	return "ev-1", nil
}

func (m *memCalendar) EventsBetween(ctx context.Context, from, to time.Time) ([]actions.Candidate, error) {
	return nil, nil
}

func (m *memCalendar) DeleteEvent(ctx context.Context, id string) error { return nil }

func (m *memCalendar) MoveEvent(ctx context.Context, id string, start, end time.Time) error {
	return nil
}

func testAgent(t *testing.T, provider Provider, cal actions.CalendarService) *Agent {
	t.Helper()
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := func() time.Time { return time.Date(2024, 2, 1, 8, 0, 0, 0, paris) }
	reg := actions.NewRegistry()
	actions.RegisterCalendar(reg, cal, now, paris)
	return New(provider, reg, now, paris)
}

func TestHandleTurnCommandFlow(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		"C'est noté !\n```json\n{\"action\": \"create_calendar_event\", \"entities\": {\"summary\": \"réunion projet\", \"date\": \"demain à 10h\"}}\n```",
	}}
	cal := &memCalendar{}
	a := testAgent(t, provider, cal)
	mem := NewMemory(5)

	resp, err := a.HandleTurn(context.Background(), mem, Input{Text: "crée une réunion projet demain à 10h"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if resp.Chat != "C'est noté !" {
		t.Fatalf("chat = %q", resp.Chat)
	}
	if len(cal.created) != 1 {
		t.Fatalf("created %d events", len(cal.created))
	}
	paris, _ := time.LoadLocation("Europe/Paris")
	want := time.Date(2024, 2, 2, 10, 0, 0, 0, paris)
	if !cal.created[0].Start.Equal(want) {
		t.Fatalf("event start = %v, want %v", cal.created[0].Start, want)
	}

	// A command turn keeps only the user side of the exchange: no
	// model turn, no command JSON.
	turns := mem.Turns()
	if len(turns) != 1 {
		t.Fatalf("memory turns = %d, want the bare user turn", len(turns))
	}
	if turns[0].Role != RoleUser {
		t.Fatalf("stored turn role = %s", turns[0].Role)
	}
	if strings.Contains(turns[0].Text, "json") || strings.Contains(turns[0].Text, "{") {
		t.Fatalf("command JSON leaked into memory: %q", turns[0].Text)
	}
}

func TestHandleTurnNarrativeStoresWholePair(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"Bonjour !"}}
	a := testAgent(t, provider, &memCalendar{})
	mem := NewMemory(5)

	if _, err := a.HandleTurn(context.Background(), mem, Input{Text: "salut"}); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	turns := mem.Turns()
	if len(turns) != 2 {
		t.Fatalf("memory turns = %d, want 2", len(turns))
	}
	if turns[1].Role != RoleModel || turns[1].Text != "Bonjour !" {
		t.Fatalf("model turn = %+v", turns[1])
	}
}

func TestHandleTurnCarriesImageToProvider(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"C'est une belle photo."}}
	a := testAgent(t, provider, &memCalendar{})

	img := []byte{0xff, 0xd8, 0xff, 0xe0}
	_, err := a.HandleTurn(context.Background(), NewMemory(5), Input{
		Text:      "décris cette image",
		ImageData: img,
		ImageType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}

	last := provider.seen[len(provider.seen)-1]
	if len(last.Media) != 1 {
		t.Fatalf("provider saw %d media parts, want 1", len(last.Media))
	}
	if last.Media[0].MIME != "image/jpeg" || string(last.Media[0].Data) != string(img) {
		t.Fatalf("media part = %q %v", last.Media[0].MIME, last.Media[0].Data)
	}
}

func TestAttachmentMIME(t *testing.T) {
	cases := map[string]string{
		"data:image/png;base64,AAAA": "image/png",
		"data:image/jpeg,AAAA":       "image/jpeg",
		"AAAA":                       "",
	}
	for in, want := range cases {
		if got := AttachmentMIME(in); got != want {
			t.Errorf("AttachmentMIME(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandleTurnBareCommandUsesHandlerConfirmation(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		"{\"action\": \"create_calendar_event\", \"entities\": {\"summary\": \"réunion projet\", \"date\": \"demain à 10h\"}}",
	}}
	a := testAgent(t, provider, &memCalendar{})

	resp, err := a.HandleTurn(context.Background(), NewMemory(5), Input{Text: "crée une réunion projet demain à 10h"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(resp.Chat, "02 février 2024 à 10h00") {
		t.Fatalf("chat = %q, want the formatted date", resp.Chat)
	}
	if resp.Panel != nil {
		t.Fatalf("simple confirmation got a panel: %+v", resp.Panel)
	}
}

func TestHandleTurnFeedsHistoryToProvider(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"Bonjour !", "Très bien, merci."}}
	a := testAgent(t, provider, &memCalendar{})
	mem := NewMemory(5)

	if _, err := a.HandleTurn(context.Background(), mem, Input{Text: "salut"}); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if _, err := a.HandleTurn(context.Background(), mem, Input{Text: "ça va ?"}); err != nil {
		t.Fatalf("second turn: %v", err)
	}

	// Second call sees the first exchange plus the new user turn.
	if len(provider.seen) != 3 {
		t.Fatalf("provider saw %d turns, want 3", len(provider.seen))
	}
	if provider.seen[0].Text != "salut" || provider.seen[1].Text != "Bonjour !" {
		t.Fatalf("history = %+v", provider.seen[:2])
	}
	if !strings.Contains(provider.system, "jeudi 1 février 2024") {
		t.Fatalf("system prompt misses the current date: %q", provider.system)
	}
}

func TestHandleTurnEmptyInput(t *testing.T) {
	a := testAgent(t, &scriptedProvider{replies: []string{"x"}}, &memCalendar{})
	if _, err := a.HandleTurn(context.Background(), NewMemory(5), Input{Text: "   "}); err == nil {
		t.Fatalf("empty input did not error")
	}
}

func TestDecodeAttachmentDataURL(t *testing.T) {
	got, err := DecodeAttachment("data:audio/mp3;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("decoded = %q", got)
	}
	got, err = DecodeAttachment("aGVsbG8=")
	if err != nil || string(got) != "hello" {
		t.Fatalf("plain base64 decode = %q, %v", got, err)
	}
}
