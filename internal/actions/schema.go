package actions

// requirement ties a required entity (any one of Keys satisfies it) to
// the French question asked back when it is missing.
type requirement struct {
	Keys     []string
	Question string
}

// schema lists, per action, the entities a handler cannot run without.
// Validation happens at the dispatch boundary so handlers can assume
// their required inputs are present. Actions absent from the table
// have no hard requirements.
var schema = map[string][]requirement{
	"create_calendar_event": {
		{Keys: []string{"summary", "title"}, Question: "Quel est le titre de l'événement ?"},
		{Keys: []string{"date", "datetime", "start_time"}, Question: "Pour quelle date souhaitez-vous créer cet événement ?"},
	},
	"delete_calendar_event": {
		{Keys: []string{"summary", "title"}, Question: "Quel événement souhaitez-vous supprimer ?"},
	},
	"update_calendar_event": {
		{Keys: []string{"summary", "title"}, Question: "Quel événement souhaitez-vous modifier ?"},
		{Keys: []string{"new_date", "new_datetime", "new_start_time"}, Question: "Quelle est la nouvelle date de l'événement ?"},
	},
	"send_email": {
		{Keys: []string{"to", "recipient"}, Question: "À qui dois-je envoyer cet email ?"},
		{Keys: []string{"body", "message"}, Question: "Quel est le contenu de l'email ?"},
	},
	"create_task": {
		{Keys: []string{"title", "summary"}, Question: "Quel est le titre de la tâche ?"},
	},
	"delete_task": {
		{Keys: []string{"title", "summary"}, Question: "Quelle tâche souhaitez-vous supprimer ?"},
	},
	"update_task": {
		{Keys: []string{"title", "summary"}, Question: "Quelle tâche souhaitez-vous renommer ?"},
		{Keys: []string{"new_title"}, Question: "Quel est le nouveau titre de la tâche ?"},
	},
	"add_contact": {
		{Keys: []string{"name"}, Question: "Quel est le nom du contact ?"},
		{Keys: []string{"email"}, Question: "Quelle est l'adresse email du contact ?"},
	},
	"remove_contact": {
		{Keys: []string{"name"}, Question: "Quel contact souhaitez-vous supprimer ?"},
	},
	"get_contact_email": {
		{Keys: []string{"name"}, Question: "De quel contact voulez-vous l'adresse email ?"},
	},
	"get_directions": {
		{Keys: []string{"destination"}, Question: "Quelle est votre destination ?"},
	},
	"web_search": {
		{Keys: []string{"query", "q"}, Question: "Que souhaitez-vous rechercher ?"},
	},
	"execute_code": {
		{Keys: []string{"code"}, Question: "Quel code dois-je exécuter ?"},
	},
	"generate_3d_object": {
		{Keys: []string{"description", "object"}, Question: "Quel objet 3D souhaitez-vous générer ?"},
	},
	"launch_application": {
		{Keys: []string{"application", "app", "name"}, Question: "Quelle application souhaitez-vous lancer ?"},
	},
	"open_webpage": {
		{Keys: []string{"url"}, Question: "Quelle page souhaitez-vous ouvrir ?"},
	},
}

// missingEntity returns the clarifying question for the first unmet
// requirement of action, or "" when all requirements are satisfied.
func missingEntity(action string, ents Entities) string {
	for _, req := range schema[action] {
		if ents.First(req.Keys...) == "" {
			return req.Question
		}
	}
	return ""
}
