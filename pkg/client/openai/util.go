package openai

import (
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"

	"github.com/fpt/klein-relay/pkg/message"
)

// Model constants
const (
	modelGPT4o     = shared.ChatModelGPT4o
	modelGPT4oMini = shared.ChatModelGPT4oMini
	modelGPT41     = "gpt-4.1"
	modelGPT41Mini = "gpt-4.1-mini"

	defaultModel = modelGPT4oMini
)

// getOpenAIModel maps a configured model name to a Chat Completions model id.
// Empty selects the default; anything else is passed through so newer
// models work without a code change.
func getOpenAIModel(model string) string {
	if model == "" {
		return defaultModel
	}
	return model
}

// ModelCapabilities describes what the relay may assume about a model.
type ModelCapabilities struct {
	SupportsVision bool
}

var modelCapabilities = map[string]ModelCapabilities{
	modelGPT4o:     {SupportsVision: true},
	modelGPT4oMini: {SupportsVision: true},
	modelGPT41:     {SupportsVision: true},
	modelGPT41Mini: {SupportsVision: true},
}

// getModelCapabilities returns the capabilities of a specific OpenAI model
func getModelCapabilities(model string) ModelCapabilities {
	if caps, ok := modelCapabilities[model]; ok {
		return caps
	}
	// Unknown models: no vision assumption
	return ModelCapabilities{}
}

// toChatMessages converts relay turns to Chat Completions message params.
// Image turns become a text part plus an image_url part when vision is on,
// otherwise the URL is inlined as text.
func toChatMessages(turns []message.Turn, vision bool) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case message.RoleSystem:
			out = append(out, openai.SystemMessage(t.Content))
		case message.RoleAssistant:
			out = append(out, openai.AssistantMessage(t.Content))
		default:
			if !t.HasImage() {
				out = append(out, openai.UserMessage(t.Content))
				continue
			}
			if !vision {
				out = append(out, openai.UserMessage(imageURLText(t)))
				continue
			}
			parts := []openai.ChatCompletionContentPartUnionParam{}
			if t.Content != "" {
				parts = append(parts, openai.TextContentPart(t.Content))
			}
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: t.ImageURL}))
			out = append(out, openai.UserMessage(parts))
		}
	}
	return out
}

func imageURLText(t message.Turn) string {
	if t.Content == "" {
		return "Image URL: " + t.ImageURL
	}
	return t.Content + "\nImage URL: " + t.ImageURL
}
