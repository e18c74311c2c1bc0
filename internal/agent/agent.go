package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"eva/internal/actions"
	"eva/internal/logger"
	"eva/internal/nlu"
)

// Input is one user turn as delivered by the channel layer.
type Input struct {
	Text      string
	FileData  []byte
	FileName  string
	FileType  string
	ImageData []byte
	ImageType string
}

// Response is the fully composed reply for one turn.
type Response struct {
	Chat   string
	Spoken string
	Speak  bool
	Panel  *Panel
}

// Agent runs the turn pipeline: model call, reply classification,
// command dispatch, and composition. It is shared across sessions;
// per-session state lives in the Memory passed to HandleTurn.
type Agent struct {
	provider Provider
	registry *actions.Registry
	composer Composer
	now      func() time.Time
	loc      *time.Location
}

func New(provider Provider, registry *actions.Registry, now func() time.Time, loc *time.Location) *Agent {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Agent{provider: provider, registry: registry, now: now, loc: loc}
}

// HandleTurn processes one user message against the session memory
// and returns the composed reply. Narrative replies are recorded as
// whole user/model pairs; a command turn keeps only the user side, so
// neither the raw command JSON nor the confirmation text enters the
// model history.
func (a *Agent) HandleTurn(ctx context.Context, memory *Memory, in Input) (Response, error) {
	userText := a.describeInput(in)
	if strings.TrimSpace(userText) == "" {
		return Response{}, fmt.Errorf("empty turn")
	}

	if isAudio(in) {
		ctx = actions.WithAudio(ctx, in.FileData, in.FileName)
	}

	userTurn := Turn{Role: RoleUser, Text: userText}
	if len(in.ImageData) > 0 {
		mimeType := in.ImageType
		if mimeType == "" {
			mimeType = "image/png"
		}
		userTurn.Media = append(userTurn.Media, Media{MIME: mimeType, Data: in.ImageData})
	}

	turns := append(memory.Turns(), userTurn)
	system := BuildSystemPrompt(a.now().In(a.loc), a.registry.Actions())

	raw, err := a.provider.Generate(ctx, system, turns)
	if err != nil {
		logger.Error("agent: generate: %v", err)
		return Response{}, fmt.Errorf("generate reply: %w", err)
	}

	reply := nlu.Classify(raw)

	var outcome actions.Outcome
	if reply.Kind == nlu.CommandReply {
		outcome = a.registry.Dispatch(ctx, reply.Command.Action, actions.Entities(reply.Command.Entities))
	}

	out := a.composer.Compose(reply, outcome)
	if reply.Kind == nlu.CommandReply {
		memory.AddUser(userText)
	} else {
		memory.Add(userText, out.Chat)
	}

	return Response{Chat: out.Chat, Spoken: out.Spoken, Speak: out.Speak, Panel: out.Panel}, nil
}

// describeInput turns the message plus its attachments into the text
// the model sees. Binary payloads are described, not inlined.
func (a *Agent) describeInput(in Input) string {
	text := strings.TrimSpace(in.Text)
	switch {
	case isAudio(in):
		note := fmt.Sprintf("[Fichier audio joint : %s]", in.FileName)
		if text == "" {
			return note + " Transcris ce fichier audio."
		}
		return text + "\n" + note
	case len(in.ImageData) > 0:
		// The image itself travels as a media part of the turn; the
		// note is what the text-only history keeps.
		note := "[Image jointe]"
		if text == "" {
			return note + " Que montre cette image ?"
		}
		return text + "\n" + note
	case len(in.FileData) > 0:
		note := fmt.Sprintf("[Fichier joint : %s]", in.FileName)
		if looksTextual(in.FileType) {
			note += "\n" + string(in.FileData)
		}
		if text == "" {
			return note
		}
		return text + "\n" + note
	default:
		return text
	}
}

func isAudio(in Input) bool {
	if len(in.FileData) == 0 {
		return false
	}
	if strings.HasPrefix(in.FileType, "audio/") {
		return true
	}
	lower := strings.ToLower(in.FileName)
	for _, ext := range []string{".mp3", ".wav", ".m4a", ".ogg", ".webm"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func looksTextual(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") ||
		mimeType == "application/json" ||
		mimeType == "application/xml"
}

// AttachmentMIME extracts the media type from a data URL; a bare
// base64 payload yields "".
func AttachmentMIME(b64 string) string {
	if !strings.HasPrefix(b64, "data:") {
		return ""
	}
	rest := b64[len("data:"):]
	if i := strings.IndexAny(rest, ";,"); i >= 0 {
		return rest[:i]
	}
	return ""
}

// DecodeAttachment decodes the base64 payloads the web client sends.
func DecodeAttachment(b64 string) ([]byte, error) {
	if b64 == "" {
		return nil, nil
	}
	// Data URLs carry a "data:...;base64," prefix.
	if i := strings.Index(b64, ","); i >= 0 && strings.Contains(b64[:i], "base64") {
		b64 = b64[i+1:]
	}
	return base64.StdEncoding.DecodeString(b64)
}
