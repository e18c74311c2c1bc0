package actions

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"eva/internal/dates"
	"eva/internal/logger"
	"eva/internal/voice"
)

type systemHandlers struct {
	apps        map[string]string
	now         func() time.Time
	loc         *time.Location
	transcriber voice.Transcriber
}

// RegisterSystem wires the desktop and utility actions into the
// registry. apps maps friendly application names to commands.
func RegisterSystem(reg *Registry, apps map[string]string, now func() time.Time, loc *time.Location, tr voice.Transcriber) {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	h := &systemHandlers{apps: apps, now: now, loc: loc, transcriber: tr}
	reg.Register("get_current_datetime", h.datetime)
	reg.Register("google_keep_info", h.keepInfo)
	reg.Register("launch_application", h.launch)
	reg.Register("open_webpage", h.open)
	reg.Register("transcribe_audio", h.transcribe)
}

func (h *systemHandlers) datetime(ctx context.Context, ents Entities) Result {
	now := h.now().In(h.loc)
	return &Record{
		Status:  StatusSuccess,
		Summary: fmt.Sprintf("Nous sommes le %s et il est %dh%02d.", dates.FormatFull(now), now.Hour(), now.Minute()),
	}
}

func (h *systemHandlers) keepInfo(ctx context.Context, ents Entities) Result {
	return Message("Google Keep ne propose pas d'API publique, je ne peux donc pas accéder à vos notes Keep. Je peux en revanche gérer vos tâches Google Tasks.")
}

// launch starts the application detached and does not wait for it.
func (h *systemHandlers) launch(ctx context.Context, ents Entities) Result {
	name := ents.First("application", "app", "name")
	command, ok := h.apps[strings.ToLower(name)]
	if !ok {
		return &Record{Status: StatusNotFound, Summary: fmt.Sprintf("Je ne connais pas l'application « %s ».", name)}
	}

	parts := strings.Fields(command)
	cmd := exec.Command(parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		logger.Error("system: launch %q: %v", name, err)
		return errorRecord(fmt.Sprintf("Désolé, je n'ai pas pu lancer %s.", name), nil)
	}
	go cmd.Wait()
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai lancé %s.", name)}
}

func (h *systemHandlers) open(ctx context.Context, ents Entities) Result {
	url := ents.String("url")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	cmd := exec.Command(opener, url)
	if err := cmd.Start(); err != nil {
		logger.Error("system: open %q: %v", url, err)
		return errorRecord("Désolé, je n'ai pas pu ouvrir cette page.", nil)
	}
	go cmd.Wait()
	return &Record{Status: StatusSuccess, Summary: fmt.Sprintf("J'ai ouvert %s.", url), Fields: map[string]string{"url": url}}
}

func (h *systemHandlers) transcribe(ctx context.Context, ents Entities) Result {
	if h.transcriber == nil {
		return errorRecord("La transcription audio n'est pas configurée.", nil)
	}
	data, name, ok := AudioFromContext(ctx)
	if !ok {
		return Message("Aucun fichier audio n'a été joint à votre message.")
	}

	text, err := h.transcriber.Transcribe(ctx, data, name)
	if err != nil {
		logger.Error("system: transcribe %q: %v", name, err)
		return errorRecord("Désolé, la transcription de ce fichier audio a échoué.", nil)
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: "Voici la transcription :\n" + text,
		Fields:  map[string]string{"transcript": text, "file": name},
	}
}
