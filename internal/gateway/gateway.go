package gateway

import (
	"context"
	"fmt"

	"github.com/fpt/klein-relay/internal/history"
	"github.com/fpt/klein-relay/pkg/domain"
	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

// Gateway is the main orchestrator for klein-relay.
type Gateway struct {
	config      *Config
	bus         *MessageBus
	store       *history.Store
	responder   *Responder
	personality *PersonalityLoader
	scheduler   *Scheduler
	locks       *ChannelLocks
	queues      *ChannelQueues
	allowed     map[string]bool
	adapters    map[string]Adapter
	logger      *pkgLogger.Logger
}

// NewGateway wires the adapters, the inactivity scheduler and the responder
// around an already loaded history store.
func NewGateway(cfg *Config, llm domain.LLM, store *history.Store, logger *pkgLogger.Logger) (*Gateway, error) {
	bus := NewMessageBus(64)

	gw := &Gateway{
		config:      cfg,
		bus:         bus,
		store:       store,
		responder:   NewResponder(llm, cfg.Prompts, cfg.Replies, logger),
		personality: NewPersonalityLoader(cfg.PersonalityFile, cfg.Prompts.Personality, logger),
		locks:       NewChannelLocks(),
		allowed:     toSet(cfg.AllowedChannels()),
		adapters:    make(map[string]Adapter),
		logger:      logger.WithComponent("gateway"),
	}
	gw.scheduler = NewScheduler(cfg.Window(), gw.handleInactivity, logger)
	gw.queues = NewChannelQueues(gw.handleInbound)

	if cfg.DiscordEnabled() && cfg.Discord.Token != "" {
		discord, err := NewDiscordAdapter(bus, cfg.Discord, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create discord adapter: %w", err)
		}
		gw.adapters["discord"] = discord
	}
	if cfg.Console.Enabled {
		gw.adapters["console"] = NewConsoleAdapter(bus, cfg.Console, logger)
	}

	return gw, nil
}

// AddAdapter registers an adapter under a channel type, replacing any
// existing one.
func (gw *Gateway) AddAdapter(channelType string, a Adapter) {
	gw.adapters[channelType] = a
}

// Run starts all adapters and processes messages. Blocks until ctx is cancelled.
// Messages of one channel are handled sequentially in arrival order.
func (gw *Gateway) Run(ctx context.Context) error {
	for name, a := range gw.adapters {
		gw.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Starting adapter", "adapter", name)
		go func(n string, ad Adapter) {
			if err := ad.Start(ctx); err != nil {
				gw.logger.Error("Adapter failed", "adapter", n, "error", err)
			}
		}(name, a)
	}

	go gw.dispatchOutbound(ctx)

	// Every served channel starts with a pending timer, even before its first message
	for id := range gw.allowed {
		gw.scheduler.Arm(ctx, id)
	}

	gw.logger.InfoWithIntention(pkgLogger.IntentionStatus, "Gateway running, processing messages",
		"channels", len(gw.allowed), "inactivity_window", gw.scheduler.Window())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-gw.bus.Inbound:
			// Unserved channels never get a worker
			if !gw.allowed[msg.ChannelID] {
				continue
			}
			gw.queues.Enqueue(ctx, msg)
		}
	}
}

func (gw *Gateway) dispatchOutbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-gw.bus.Outbound:
			a, ok := gw.adapters[msg.ChannelType]
			if !ok {
				gw.logger.Warn("No adapter for outbound message", "channel_type", msg.ChannelType, "channel", msg.ChannelID)
				continue
			}
			if err := a.Send(ctx, msg); err != nil {
				gw.logger.Error("Failed to send outbound message", "channel", msg.ChannelID, "error", err)
				continue
			}
			gw.logger.DebugWithIntention(pkgLogger.IntentionOutbound, "Sent message", "channel", msg.ChannelID, "length", len(msg.Text))
		}
	}
}

// channelTypeFor maps a served channel id to the adapter that owns it.
func (gw *Gateway) channelTypeFor(channelID string) string {
	if gw.config.Console.Enabled && channelID == gw.config.Console.ChannelID {
		return "console"
	}
	return "discord"
}

// Close stops the inactivity timers and the adapters, then flushes history.
func (gw *Gateway) Close() error {
	gw.scheduler.Stop()
	for name, a := range gw.adapters {
		if err := a.Stop(); err != nil {
			gw.logger.Warn("Failed to stop adapter", "adapter", name, "error", err)
		}
	}
	if err := gw.store.Flush(); err != nil {
		return fmt.Errorf("failed to flush history: %w", err)
	}
	return nil
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
