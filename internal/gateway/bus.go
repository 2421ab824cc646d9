package gateway

import (
	"strings"
	"time"
)

// Attachment is a file attached to an inbound message. Only metadata is
// carried; the file itself is never downloaded.
type Attachment struct {
	URL         string
	ContentType string // MIME type as reported by the platform, may be empty
}

// IsImage reports whether the attachment declares an image/* content type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// InboundMessage represents a message arriving from any channel adapter.
type InboundMessage struct {
	ChannelType string // "discord", "console"
	ChannelID   string // channel/chat identifier
	MessageID   string // platform id of this message, used for replies
	AuthorID    string
	AuthorName  string
	AuthorBot   bool
	Text        string
	Attachments []Attachment
	Timestamp   time.Time
}

// OutboundMessage represents a message to send back to a channel.
type OutboundMessage struct {
	ChannelType string
	ChannelID   string
	Text        string
	ReplyToID   string // optional: reply to specific message
}

// MessageBus decouples channel adapters from message handling.
type MessageBus struct {
	Inbound  chan InboundMessage
	Outbound chan OutboundMessage
}

// NewMessageBus creates a message bus with buffered channels.
func NewMessageBus(bufferSize int) *MessageBus {
	return &MessageBus{
		Inbound:  make(chan InboundMessage, bufferSize),
		Outbound: make(chan OutboundMessage, bufferSize),
	}
}
