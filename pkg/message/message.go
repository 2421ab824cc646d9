package message

import "fmt"

// Turn is one role-tagged unit of a channel conversation.
//
// ImageURL is only set on request-side turns that point the model at an
// image; history never stores it.
type Turn struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
}

// NewSystemTurn creates a system turn.
func NewSystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates an assistant turn.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// NewImageTurn creates a user turn that references an image by URL.
func NewImageTurn(content, imageURL string) Turn {
	return Turn{Role: RoleUser, Content: content, ImageURL: imageURL}
}

// HasImage reports whether the turn references an image.
func (t Turn) HasImage() bool {
	return t.ImageURL != ""
}

func (t Turn) String() string {
	if t.HasImage() {
		return fmt.Sprintf("Turn(Role: %s, Content: %q, Image: %s)", t.Role, t.Content, t.ImageURL)
	}
	return fmt.Sprintf("Turn(Role: %s, Content: %q)", t.Role, t.Content)
}

// TruncatedString returns a short, user-friendly representation for history listings
func (t Turn) TruncatedString() string {
	content := t.Content
	if runes := []rune(content); len(runes) > 200 {
		content = string(runes[:200]) + "..."
	}

	switch t.Role {
	case RoleUser:
		return fmt.Sprintf("👤 %s", content)
	case RoleAssistant:
		return fmt.Sprintf("🤖 %s", content)
	default:
		return fmt.Sprintf("[%s] %s", t.Role, content)
	}
}

// CloneTurns returns a copy of turns that shares no backing array with the input.
func CloneTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
