package gateway

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   int
	}{
		{"short", "hello", 2000, 1},
		{"exact", strings.Repeat("a", 2000), 2000, 1},
		{"no newline", strings.Repeat("a", 4500), 2000, 3},
		{"newline boundary", strings.Repeat("a", 1500) + "\n" + strings.Repeat("b", 1500), 2000, 2},
		{"multibyte at boundary", strings.Repeat("a", 1999) + strings.Repeat("ñ", 10), 2000, 2},
		{"multibyte fits in characters", strings.Repeat("ñ", 2000), 2000, 1},
		{"emoji", strings.Repeat("🙂", 4001), 2000, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitMessage(tt.text, tt.maxLen)
			if len(chunks) != tt.want {
				t.Fatalf("expected %d chunks, got %d", tt.want, len(chunks))
			}
			if strings.Join(chunks, "") != tt.text {
				t.Error("chunks do not reassemble to the original text")
			}
			for i, c := range chunks {
				if n := utf8.RuneCountInString(c); n > tt.maxLen {
					t.Errorf("chunk %d has %d characters", i, n)
				}
				if !utf8.ValidString(c) {
					t.Errorf("chunk %d is not valid UTF-8", i)
				}
			}
		})
	}

	chunks := splitMessage(strings.Repeat("a", 1500)+"\n"+strings.Repeat("b", 1500), 2000)
	if !strings.HasSuffix(chunks[0], "\n") {
		t.Error("first chunk should end at the newline")
	}
}

func TestToInboundMessage(t *testing.T) {
	ts := time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)
	m := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   "look at this",
		Timestamp: ts,
		Author:    &discordgo.User{ID: "u1", Username: "ana", Bot: true},
		Attachments: []*discordgo.MessageAttachment{
			{URL: "https://cdn.discordapp.com/a.png", ContentType: "image/png"},
			nil,
			{URL: "https://cdn.discordapp.com/b.pdf", ContentType: "application/pdf"},
		},
	}

	msg := toInboundMessage(m)

	if msg.ChannelType != "discord" || msg.ChannelID != "c1" || msg.MessageID != "m1" {
		t.Errorf("routing fields: %+v", msg)
	}
	if msg.AuthorName != "ana" || !msg.AuthorBot {
		t.Errorf("author fields: %+v", msg)
	}
	if !msg.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v", msg.Timestamp)
	}
	if len(msg.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(msg.Attachments))
	}
	if !msg.Attachments[0].IsImage() || msg.Attachments[1].IsImage() {
		t.Errorf("attachment types: %+v", msg.Attachments)
	}
}
