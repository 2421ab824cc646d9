package anthropic

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/fpt/klein-relay/pkg/message"
)

// Anthropic models
// https://docs.anthropic.com/en/docs/about-claude/models/overview

// getAnthropicModel maps a configured model name to an Anthropic model id.
func getAnthropicModel(model string) anthropic.Model {
	switch model {
	case "":
		return anthropic.ModelClaudeHaiku4_5
	case "sonnet":
		return anthropic.ModelClaudeSonnet4_5
	case "haiku":
		return anthropic.ModelClaudeHaiku4_5
	}
	return anthropic.Model(model)
}

// splitSystem pulls system turns out of the conversation; Anthropic takes
// them as a separate top-level parameter.
func splitSystem(turns []message.Turn) (string, []message.Turn) {
	var system []string
	rest := make([]message.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == message.RoleSystem {
			system = append(system, t.Content)
			continue
		}
		rest = append(rest, t)
	}
	return strings.Join(system, "\n\n"), rest
}

// normalizeTurns merges consecutive same-role turns and makes sure the
// conversation opens with a user turn. Channel history often starts with an
// inactivity message from the assistant.
func normalizeTurns(turns []message.Turn) []message.Turn {
	var out []message.Turn
	for _, t := range turns {
		content := t.Content
		if t.HasImage() {
			content = strings.TrimSpace(content + "\nImage URL: " + t.ImageURL)
		}
		role := t.Role
		if role != message.RoleAssistant {
			role = message.RoleUser
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + content
			continue
		}
		out = append(out, message.Turn{Role: role, Content: content})
	}
	if len(out) > 0 && out[0].Role == message.RoleAssistant {
		out = append([]message.Turn{message.NewUserTurn("(conversation so far)")}, out...)
	}
	return out
}

func toAnthropicMessages(turns []message.Turn) []anthropic.MessageParam {
	normalized := normalizeTurns(turns)
	out := make([]anthropic.MessageParam, 0, len(normalized))
	for _, t := range normalized {
		block := anthropic.NewTextBlock(t.Content)
		if t.Role == message.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
