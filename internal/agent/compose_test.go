package agent

import (
	"strings"
	"testing"

	"eva/internal/actions"
	"eva/internal/nlu"
)

func TestComposeNarrative(t *testing.T) {
	var c Composer
	out := c.Compose(nlu.Reply{Kind: nlu.Narrative, Text: "Bonjour !"}, actions.Outcome{})
	if out.Chat != "Bonjour !" {
		t.Fatalf("chat = %q", out.Chat)
	}
	if !out.Speak || out.Spoken != "Bonjour !" {
		t.Fatalf("spoken = %q, speak = %v", out.Spoken, out.Speak)
	}
	if out.Panel != nil {
		t.Fatalf("narrative reply got a panel")
	}
}

func TestComposeCommandPrefersExplanation(t *testing.T) {
	var c Composer
	reply := nlu.Reply{
		Kind:        nlu.CommandReply,
		Command:     &nlu.Command{Action: "create_calendar_event"},
		Explanation: "C'est noté !",
	}
	outcome := actions.Outcome{
		Action:     "create_calendar_event",
		Recognized: true,
		Result:     &actions.Record{Status: actions.StatusSuccess, Summary: "J'ai créé l'événement."},
	}
	out := c.Compose(reply, outcome)
	if out.Chat != "C'est noté !" {
		t.Fatalf("chat = %q, explanation should win", out.Chat)
	}
	if out.Panel != nil {
		t.Fatalf("create action got a panel")
	}
}

func TestComposeCommandFallsBackToSummary(t *testing.T) {
	var c Composer
	reply := nlu.Reply{Kind: nlu.CommandReply, Command: &nlu.Command{Action: "create_task"}}
	outcome := actions.Outcome{
		Action:     "create_task",
		Recognized: true,
		Result:     &actions.Record{Status: actions.StatusSuccess, Summary: "J'ai ajouté la tâche « courses »."},
	}
	out := c.Compose(reply, outcome)
	if out.Chat != "J'ai ajouté la tâche « courses »." {
		t.Fatalf("chat = %q", out.Chat)
	}
}

func TestComposeListActionRoutesPanel(t *testing.T) {
	var c Composer
	summary := "Voici vos événements ces 7 prochains jours :\n- 02 février 2024 à 10h00 : Réunion"
	outcome := actions.Outcome{
		Action:     "list_calendar_events",
		Recognized: true,
		Result:     &actions.Record{Status: actions.StatusSuccess, Summary: summary},
	}
	out := c.Compose(nlu.Reply{Kind: nlu.CommandReply, Command: &nlu.Command{Action: "list_calendar_events"}}, outcome)
	if out.Panel == nil || out.Panel.Target != PanelCalendar {
		t.Fatalf("panel = %+v, want calendar pane", out.Panel)
	}
	if out.Panel.Content != summary {
		t.Fatalf("panel content = %q", out.Panel.Content)
	}
	if !out.Speak || strings.Contains(out.Spoken, "\n") {
		t.Fatalf("spoken should be the headline only, got %q", out.Spoken)
	}
}

func TestComposeFailedListActionHasNoPanel(t *testing.T) {
	var c Composer
	outcome := actions.Outcome{
		Action:     "list_emails",
		Recognized: true,
		Result:     &actions.Record{Status: actions.StatusError, Summary: "Désolé, je n'ai pas pu consulter votre boîte de réception."},
	}
	out := c.Compose(nlu.Reply{Kind: nlu.CommandReply, Command: &nlu.Command{Action: "list_emails"}}, outcome)
	if out.Panel != nil {
		t.Fatalf("failed action still produced a panel")
	}
}

func TestComposeDirectionsSpokenTemplate(t *testing.T) {
	var c Composer
	outcome := actions.Outcome{
		Action:     "get_directions",
		Recognized: true,
		Result: &actions.Record{
			Status:  actions.StatusSuccess,
			Summary: "L'itinéraire vers Genève fait 34 km, soit environ 40 min de route.",
			Fields: map[string]string{
				"destination": "Genève",
				"distance":    "34 km",
				"duration":    "40 min",
				"map_url":     "https://www.google.com/maps/dir/?api=1",
			},
		},
	}
	out := c.Compose(nlu.Reply{Kind: nlu.CommandReply, Command: &nlu.Command{Action: "get_directions"}}, outcome)
	if !out.Speak {
		t.Fatalf("directions reply not spoken")
	}
	want := "L'itinéraire vers Genève est affiché. Comptez 34 km et environ 40 min de route."
	if out.Spoken != want {
		t.Fatalf("spoken = %q, want %q", out.Spoken, want)
	}
	if out.Panel == nil || out.Panel.Target != PanelMap {
		t.Fatalf("panel = %+v", out.Panel)
	}
	if out.Panel.Content != "https://www.google.com/maps/dir/?api=1" {
		t.Fatalf("panel content = %q, want the map URL", out.Panel.Content)
	}
}

func TestComposeDirectionsMissingFieldsFallback(t *testing.T) {
	var c Composer
	outcome := actions.Outcome{
		Action:     "get_directions",
		Recognized: true,
		Result:     &actions.Record{Status: actions.StatusSuccess, Summary: "Itinéraire calculé.", Fields: map[string]string{"destination": "Genève"}},
	}
	out := c.Compose(nlu.Reply{Kind: nlu.CommandReply, Command: &nlu.Command{Action: "get_directions"}}, outcome)
	if out.Spoken != "L'itinéraire est affiché à l'écran." {
		t.Fatalf("spoken = %q", out.Spoken)
	}
}

func TestComposeCodeReply(t *testing.T) {
	var c Composer
	reply := nlu.Reply{Kind: nlu.CodeReply, Code: "print('salut')", Explanation: "Voici un exemple :"}
	out := c.Compose(reply, actions.Outcome{})
	if out.Panel == nil || out.Panel.Target != PanelCode || out.Panel.Content != "print('salut')" {
		t.Fatalf("panel = %+v", out.Panel)
	}
	if out.Chat != "Voici un exemple :" {
		t.Fatalf("chat = %q", out.Chat)
	}
}

func TestComposeUnrecognizedCommand(t *testing.T) {
	var c Composer
	reply := nlu.Reply{Kind: nlu.CommandReply, Command: &nlu.Command{Action: "teleport"}}
	out := c.Compose(reply, actions.Outcome{Action: "teleport", Recognized: false})
	if out.Chat == "" {
		t.Fatalf("unrecognized command produced empty chat")
	}
}

func TestSpokenSuppression(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Bonjour", true},
		{"", false},
		{"ok.", false},
		{"OK.", false},
		{"Voici : ```code```", false},
		{"Consultez https://example.com", false},
		{"Désolé, une erreur interne s'est produite.", false},
		{"Le service de synthèse est non disponible.", false},
		{"Réponse Gemini bloquée par les filtres de sécurité.", false},
		{"Erreur serveur, veuillez réessayer.", false},
		{"Erreur critique pendant l'exécution.", false},
		{"Bibliothèque manquante : requests.", false},
	}
	for _, c := range cases {
		if _, got := spokenFor(c.text); got != c.want {
			t.Errorf("spokenFor(%q) speak = %v, want %v", c.text, got, c.want)
		}
	}
}
