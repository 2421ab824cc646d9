package gateway

import (
	"context"
	"fmt"

	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
	"github.com/fpt/klein-relay/pkg/message"
)

// handleInbound routes one inbound message. Messages from channels outside
// the allow-list and from bots are dropped.
func (gw *Gateway) handleInbound(ctx context.Context, msg InboundMessage) {
	if !gw.allowed[msg.ChannelID] || msg.AuthorBot {
		return
	}

	log := gw.logger.WithChannel(msg.ChannelID)
	log.DebugWithIntention(pkgLogger.IntentionInbound, "Received message",
		"author", msg.AuthorName, "attachments", len(msg.Attachments))

	if len(msg.Attachments) > 0 {
		gw.handleAttachment(ctx, msg)
		return
	}
	gw.handleChat(ctx, msg, log)
}

// handleAttachment answers about the first attachment only. It neither
// touches history nor resets the inactivity timer.
func (gw *Gateway) handleAttachment(ctx context.Context, msg InboundMessage) {
	att := msg.Attachments[0]
	if !att.IsImage() {
		gw.reply(msg, gw.config.Replies.AttachImage)
		return
	}

	gw.sendTyping(ctx, msg)
	gw.reply(msg, gw.responder.DescribeImage(ctx, att.URL))
}

// handleChat appends the user turn, asks for a reply over the updated
// history and appends and sends the reply. On failure the user turn stays
// and an apology is sent instead.
func (gw *Gateway) handleChat(ctx context.Context, msg InboundMessage, log *pkgLogger.Logger) {
	gw.scheduler.Arm(ctx, msg.ChannelID)

	text := gw.converse(ctx, msg, log)
	gw.send(msg.ChannelType, msg.ChannelID, text)
}

// converse runs the history read-modify-write under the channel lock and
// returns the text to send. The lock is released before anything is sent.
func (gw *Gateway) converse(ctx context.Context, msg InboundMessage, log *pkgLogger.Logger) string {
	unlock := gw.locks.Lock(msg.ChannelID)
	defer unlock()

	userTurn := message.NewUserTurn(fmt.Sprintf(gw.config.Prompts.UserTurnFormat, msg.AuthorName, msg.Text))
	if err := gw.store.Append(msg.ChannelID, userTurn); err != nil {
		log.Error("Failed to persist history", "error", err)
	}

	gw.sendTyping(ctx, msg)

	personality := gw.personality.Load()
	text, err := gw.responder.Reply(ctx, personality, gw.store.Get(msg.ChannelID))
	if err != nil {
		log.Error("Completion failed", "error", err)
		return gw.config.Replies.Apology
	}

	if err := gw.store.Append(msg.ChannelID, message.NewAssistantTurn(text)); err != nil {
		log.Error("Failed to persist history", "error", err)
	}
	log.DebugWithIntention(pkgLogger.IntentionHistory, "Recorded exchange", "turns", len(gw.store.Get(msg.ChannelID)))
	return text
}

// handleInactivity posts a message into a channel that has been quiet for
// a full window. The error fallback is sent but kept out of history.
func (gw *Gateway) handleInactivity(ctx context.Context, channelID string) {
	log := gw.logger.WithChannel(channelID)

	unlock := gw.locks.Lock(channelID)
	personality := gw.personality.Load()
	text, keep := gw.responder.Inactivity(ctx, personality, gw.store.Get(channelID))
	if keep {
		if err := gw.store.Append(channelID, message.NewAssistantTurn(text)); err != nil {
			log.Error("Failed to persist history", "error", err)
		}
	}
	unlock()

	log.InfoWithIntention(pkgLogger.IntentionInactivity, "Posting inactivity message", "recorded", keep)
	gw.send(gw.channelTypeFor(channelID), channelID, text)
}

func (gw *Gateway) sendTyping(ctx context.Context, msg InboundMessage) {
	if a, ok := gw.adapters[msg.ChannelType]; ok {
		_ = a.SendTyping(ctx, msg.ChannelID)
	}
}

// send posts text to the channel as a plain message.
func (gw *Gateway) send(channelType, channelID, text string) {
	gw.bus.Outbound <- OutboundMessage{
		ChannelType: channelType,
		ChannelID:   channelID,
		Text:        text,
	}
}

// reply posts text as a reply to msg.
func (gw *Gateway) reply(msg InboundMessage, text string) {
	gw.bus.Outbound <- OutboundMessage{
		ChannelType: msg.ChannelType,
		ChannelID:   msg.ChannelID,
		Text:        text,
		ReplyToID:   msg.MessageID,
	}
}
