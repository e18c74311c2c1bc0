package agent

import (
	"strings"

	"eva/internal/actions"
	"eva/internal/nlu"
)

// Panel targets known to the web client. Each names the pane that
// receives the detailed content of a reply.
const (
	PanelCalendar = "calendarContent"
	PanelEmail    = "emailContent"
	PanelTask     = "taskContent"
	PanelSearch   = "searchContent"
	PanelMap      = "mapContent"
	PanelWeather  = "weatherForecastContent"
	PanelCode     = "codeDisplayContent"
)

// panelTargets maps display-worthy actions to their pane. Actions
// absent here answer in chat only.
var panelTargets = map[string]string{
	"list_calendar_events": PanelCalendar,
	"list_emails":          PanelEmail,
	"list_tasks":           PanelTask,
	"list_contacts":        PanelTask,
	"get_contact_emails":   PanelTask,
	"web_search":           PanelSearch,
	"get_directions":       PanelMap,
	"get_weather_forecast": PanelWeather,
	"execute_code":         PanelCode,
	"generate_3d_object":   PanelCode,
	"transcribe_audio":     PanelCode,
}

// directionsSpoken is read aloud instead of the itinerary details.
// Placeholders are filled from the result record.
const directionsSpoken = "L'itinéraire vers {destination} est affiché. Comptez {distance} et environ {duration} de route."

// noSpeechMarkers flag replies that are pointless to read aloud.
var noSpeechMarkers = []string{
	"```",
	"http://",
	"https://",
	"erreur interne",
	"erreur serveur",
	"erreur critique",
	"non disponible",
	"bibliothèque manquante",
	"réponse gemini bloquée",
	"Traceback",
}

// Panel is content routed to a named pane of the client.
type Panel struct {
	Target  string
	Content string
}

// Output is one composed reply across the three channels: chat text,
// optional spoken text, and optional panel content.
type Output struct {
	Chat   string
	Spoken string
	Speak  bool
	Panel  *Panel
}

// Composer turns a classified model reply plus its dispatch outcome
// into the final three-channel output.
type Composer struct{}

// Compose builds the output for one turn. For commands the chat text
// prefers, in order, the model's own explanation, the record summary,
// then the raw result text.
func (c *Composer) Compose(reply nlu.Reply, out actions.Outcome) Output {
	switch reply.Kind {
	case nlu.CodeReply:
		return c.composeCode(reply)
	case nlu.CommandReply:
		if out.Recognized {
			return c.composeCommand(reply, out)
		}
		// Unrecognized action: fall back to whatever prose the model
		// wrapped around the command.
		text := reply.Explanation
		if text == "" {
			text = "Désolé, je ne sais pas encore faire cela."
		}
		return c.narrative(text)
	default:
		return c.narrative(reply.Text)
	}
}

func (c *Composer) narrative(text string) Output {
	o := Output{Chat: text}
	o.Spoken, o.Speak = spokenFor(text)
	return o
}

func (c *Composer) composeCode(reply nlu.Reply) Output {
	chat := reply.Explanation
	if chat == "" {
		chat = "Voici le code :"
	}
	o := Output{
		Chat:  chat,
		Panel: &Panel{Target: PanelCode, Content: reply.Code},
	}
	o.Spoken, o.Speak = spokenFor(chat)
	return o
}

func (c *Composer) composeCommand(reply nlu.Reply, out actions.Outcome) Output {
	result := out.Result

	chat := reply.Explanation
	if chat == "" {
		chat = result.Text()
	}
	o := Output{Chat: chat}

	rec, _ := result.(*actions.Record)

	if target, ok := panelTargets[out.Action]; ok && rec != nil && rec.Status == actions.StatusSuccess {
		content := rec.Summary
		if out.Action == "get_directions" && rec.Field("map_url") != "" {
			content = rec.Field("map_url")
		}
		o.Panel = &Panel{Target: target, Content: content}
	}

	spokenSource := chat
	switch {
	case out.Action == "get_directions" && rec != nil && rec.Status == actions.StatusSuccess:
		spokenSource = fillDirections(rec)
	case o.Panel != nil:
		// The pane carries the detail; voice gets the headline.
		spokenSource = firstLine(chat)
	}
	o.Spoken, o.Speak = spokenFor(spokenSource)
	return o
}

// fillDirections substitutes the itinerary placeholders. A record
// missing any of them degrades to a generic sentence rather than
// reading out a template.
func fillDirections(rec *actions.Record) string {
	dest, dist, dur := rec.Field("destination"), rec.Field("distance"), rec.Field("duration")
	if dest == "" || dist == "" || dur == "" {
		return "L'itinéraire est affiché à l'écran."
	}
	r := strings.NewReplacer(
		"{destination}", dest,
		"{distance}", dist,
		"{duration}", dur,
	)
	return r.Replace(directionsSpoken)
}

// spokenFor decides whether text is worth reading aloud and what to
// say.
func spokenFor(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "ok.") {
		return "", false
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range noSpeechMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return "", false
		}
	}
	return trimmed, true
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return text
}
