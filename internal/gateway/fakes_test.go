package gateway

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fpt/klein-relay/internal/history"
	"github.com/fpt/klein-relay/internal/infra"
	"github.com/fpt/klein-relay/pkg/domain"
	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

// fakeLLM answers every request with fn and records what it was asked.
type fakeLLM struct {
	mu       sync.Mutex
	fn       func(req domain.CompletionRequest) (string, error)
	requests []domain.CompletionRequest
}

func replyWith(text string, err error) *fakeLLM {
	return &fakeLLM{fn: func(domain.CompletionRequest) (string, error) { return text, err }}
}

func (f *fakeLLM) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.fn(req)
}

func (f *fakeLLM) ModelID() string { return "fake" }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeLLM) last() domain.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakeAdapter records sends, typing indicators and stops.
type fakeAdapter struct {
	mu      sync.Mutex
	sent    []OutboundMessage
	typing  int
	stopped bool
}

func (a *fakeAdapter) Start(ctx context.Context) error { <-ctx.Done(); return nil }

func (a *fakeAdapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	return nil
}

func (a *fakeAdapter) Send(ctx context.Context, msg OutboundMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, msg)
	return nil
}

func (a *fakeAdapter) sends() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sent)
}

func (a *fakeAdapter) SendTyping(ctx context.Context, channelID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.typing++
	return nil
}

const testChannel = "1319559650605137963"

type testGateway struct {
	*Gateway
	llm     *fakeLLM
	adapter *fakeAdapter
	repo    *infra.InMemoryHistoryRepository
}

// newTestGateway builds a gateway serving testChannel with a fake adapter
// registered as "discord". mutate may adjust the config first.
func newTestGateway(t *testing.T, llm *fakeLLM, mutate func(cfg *Config)) *testGateway {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Discord.AllowedChannelIDs = []string{testChannel}
	cfg.PersonalityFile = filepath.Join(t.TempDir(), "personality.txt")
	if mutate != nil {
		mutate(cfg)
	}

	log := pkgLogger.NewDiscardLogger()
	repo := infra.NewInMemoryHistoryRepository(nil)
	store := history.NewStore(repo, cfg.HistoryLimit, log)

	gw, err := NewGateway(cfg, llm, store, log)
	if err != nil {
		t.Fatalf("NewGateway failed: %v", err)
	}
	adapter := &fakeAdapter{}
	gw.AddAdapter("discord", adapter)
	t.Cleanup(gw.scheduler.Stop)

	return &testGateway{Gateway: gw, llm: llm, adapter: adapter, repo: repo}
}

func (tg *testGateway) nextOutbound(t *testing.T) OutboundMessage {
	t.Helper()
	select {
	case msg := <-tg.bus.Outbound:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound message")
		return OutboundMessage{}
	}
}

func (tg *testGateway) expectNoOutbound(t *testing.T) {
	t.Helper()
	select {
	case msg := <-tg.bus.Outbound:
		t.Fatalf("unexpected outbound message: %+v", msg)
	default:
	}
}

func chatMessage(author, text string) InboundMessage {
	return InboundMessage{
		ChannelType: "discord",
		ChannelID:   testChannel,
		MessageID:   "m1",
		AuthorID:    "u1",
		AuthorName:  author,
		Text:        text,
		Timestamp:   time.Now(),
	}
}
