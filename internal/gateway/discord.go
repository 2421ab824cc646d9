package gateway

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

// discordMaxMessageLen is Discord's per-message character limit.
const discordMaxMessageLen = 2000

// DiscordAdapter implements the Adapter interface for Discord.
type DiscordAdapter struct {
	session   *discordgo.Session
	bus       *MessageBus
	logger    *pkgLogger.Logger
	botUserID string
}

// NewDiscordAdapter creates a Discord adapter. No connection is made until Start.
func NewDiscordAdapter(bus *MessageBus, cfg DiscordConfig, logger *pkgLogger.Logger) (*DiscordAdapter, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	a := &DiscordAdapter{
		session: dg,
		bus:     bus,
		logger:  logger.WithComponent("discord"),
	}

	dg.AddHandler(a.handleReady)
	dg.AddHandler(a.handleMessage)

	return a, nil
}

func (a *DiscordAdapter) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	a.botUserID = r.User.ID
	a.logger.InfoWithIntention(pkgLogger.IntentionSuccess, "Discord bot connected", "user", r.User.Username, "discriminator", r.User.Discriminator)
}

func (a *DiscordAdapter) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == a.botUserID {
		return
	}
	a.bus.Inbound <- toInboundMessage(m.Message)
}

// toInboundMessage converts a Discord message. Allow-list and bot filtering
// happen in the dispatcher.
func toInboundMessage(m *discordgo.Message) InboundMessage {
	atts := make([]Attachment, 0, len(m.Attachments))
	for _, att := range m.Attachments {
		if att == nil {
			continue
		}
		atts = append(atts, Attachment{URL: att.URL, ContentType: att.ContentType})
	}

	msg := InboundMessage{
		ChannelType: "discord",
		ChannelID:   m.ChannelID,
		MessageID:   m.ID,
		Text:        m.Content,
		Attachments: atts,
		Timestamp:   m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorBot = m.Author.Bot
	}
	return msg
}

// Start connects to Discord and blocks until ctx is cancelled.
func (a *DiscordAdapter) Start(ctx context.Context) error {
	a.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Starting Discord adapter")

	if err := a.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}

	<-ctx.Done()
	return nil
}

// Stop closes the Discord connection.
func (a *DiscordAdapter) Stop() error {
	return a.session.Close()
}

// Send sends a message to a Discord channel, splitting if over 2000 characters.
// The first chunk is sent as a reply to the original message (if ReplyToID is set);
// subsequent chunks are sent as plain follow-up messages.
func (a *DiscordAdapter) Send(ctx context.Context, msg OutboundMessage) error {
	chunks := splitMessage(msg.Text, discordMaxMessageLen)
	for i, chunk := range chunks {
		var err error
		if i == 0 && msg.ReplyToID != "" {
			ref := &discordgo.MessageReference{MessageID: msg.ReplyToID, ChannelID: msg.ChannelID}
			_, err = a.session.ChannelMessageSendReply(msg.ChannelID, chunk, ref)
		} else {
			_, err = a.session.ChannelMessageSend(msg.ChannelID, chunk)
		}
		if err != nil {
			return fmt.Errorf("failed to send discord message: %w", err)
		}
	}
	return nil
}

// SendTyping shows a typing indicator.
func (a *DiscordAdapter) SendTyping(ctx context.Context, channelID string) error {
	return a.session.ChannelTyping(channelID)
}

// splitMessage splits text into chunks of at most maxLen characters,
// preferring newline boundaries. Chunks never split a rune.
func splitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if utf8.RuneCountInString(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		// Byte offset just past the first maxLen runes
		limit := runeOffset(text, maxLen)

		// Find last newline within limit
		cutAt := limit
		if idx := strings.LastIndex(text[:limit], "\n"); idx > 0 {
			cutAt = idx + 1
		}

		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}

// runeOffset returns the byte offset of the n-th rune of s, or len(s).
func runeOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
