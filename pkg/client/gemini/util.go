package gemini

import (
	"google.golang.org/genai"

	"github.com/fpt/klein-relay/pkg/message"
)

// Google Gemini models
// https://ai.google.dev/gemini-api/docs/models

const (
	modelGemini25Pro       = "gemini-2.5-pro"
	modelGemini25Flash     = "gemini-2.5-flash"
	modelGemini25FlashLite = "gemini-2.5-flash-lite"
)

// getGeminiModel maps user-friendly model names to Gemini model identifiers
func getGeminiModel(model string) string {
	switch model {
	case "", "flash", "gemini-flash":
		return modelGemini25Flash
	case "pro", "gemini-pro":
		return modelGemini25Pro
	case "lite", "gemini-lite", "gemini-2.5-lite":
		return modelGemini25FlashLite
	default:
		return model
	}
}

// toGeminiContents converts relay turns into Gemini contents plus a system
// instruction. Multiple system turns are concatenated.
func toGeminiContents(turns []message.Turn) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var systemParts []*genai.Part

	for _, t := range turns {
		switch t.Role {
		case message.RoleSystem:
			// Gemini rejects empty parts
			if t.Content != "" {
				systemParts = append(systemParts, &genai.Part{Text: t.Content})
			}
		case message.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			text := t.Content
			if t.HasImage() {
				text += "\nImage URL: " + t.ImageURL
			}
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}

	if len(systemParts) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromParts(systemParts, genai.RoleUser)
}
