package ollama

import (
	"github.com/ollama/ollama/api"

	"github.com/fpt/klein-relay/pkg/message"
)

// toOllamaMessages converts relay turns to Ollama chat messages. Ollama only
// accepts inline image bytes, so image URLs are passed as text.
func toOllamaMessages(turns []message.Turn) []api.Message {
	out := make([]api.Message, 0, len(turns))
	for _, t := range turns {
		content := t.Content
		if t.HasImage() {
			content += "\nImage URL: " + t.ImageURL
		}
		out = append(out, api.Message{
			Role:    t.Role.String(),
			Content: content,
		})
	}
	return out
}
