// Package nlu classifies raw reasoning-service output into a tagged
// union of command, code block, or narrative text.
package nlu

import (
	"encoding/json"
	"regexp"
	"strings"

	"eva/internal/logger"
)

// Kind discriminates the classification result.
type Kind int

const (
	Narrative Kind = iota
	CommandReply
	CodeReply
)

// Command is a structured action request extracted from model output.
// Entities are untyped here; each handler validates its own keys.
type Command struct {
	Action   string         `json:"action"`
	Entities map[string]any `json:"entities"`
}

// Reply is the classification of one raw model response.
type Reply struct {
	Kind    Kind
	Command *Command
	Code    string
	Text    string
	// Explanation holds the model's own text surrounding a fenced
	// command or code block. The composer prefers it when building
	// the chat line.
	Explanation string
}

var (
	jsonFenceRe = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")
	codeFenceRe = regexp.MustCompile("(?s)```(?:\\w*[ \\t]*\\n)?(.*?)\\n?```")
)

// Classify extracts at most one command or code block from raw model
// output, in priority order: labeled json fence, bare json object,
// generic fence, narrative. Malformed command JSON degrades to
// narrative over the full original text; classification never fails.
func Classify(raw string) Reply {
	trimmed := strings.TrimSpace(raw)

	if m := jsonFenceRe.FindStringSubmatchIndex(raw); m != nil {
		body := raw[m[2]:m[3]]
		if cmd := parseCommand(body); cmd != nil {
			return Reply{
				Kind:        CommandReply,
				Command:     cmd,
				Explanation: surroundingText(raw, m[0], m[1]),
			}
		}
		logger.Warn("classifier: command fence did not parse, falling back to narrative")
		return Reply{Kind: Narrative, Text: trimmed}
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		if cmd := parseCommand(trimmed); cmd != nil {
			return Reply{Kind: CommandReply, Command: cmd}
		}
	}

	if m := codeFenceRe.FindStringSubmatchIndex(raw); m != nil {
		return Reply{
			Kind:        CodeReply,
			Code:        strings.TrimSpace(raw[m[2]:m[3]]),
			Explanation: surroundingText(raw, m[0], m[1]),
		}
	}

	return Reply{Kind: Narrative, Text: trimmed}
}

// parseCommand returns nil unless s is a JSON object carrying an
// "action" key.
func parseCommand(s string) *Command {
	var cmd Command
	if err := json.Unmarshal([]byte(s), &cmd); err != nil {
		return nil
	}
	if strings.TrimSpace(cmd.Action) == "" {
		return nil
	}
	cmd.Action = strings.TrimSpace(cmd.Action)
	if cmd.Entities == nil {
		cmd.Entities = map[string]any{}
	}
	return &cmd
}

func surroundingText(raw string, start, end int) string {
	pre := strings.TrimSpace(raw[:start])
	post := strings.TrimSpace(raw[end:])
	switch {
	case pre != "" && post != "":
		return pre + "\n" + post
	case pre != "":
		return pre
	default:
		return post
	}
}
