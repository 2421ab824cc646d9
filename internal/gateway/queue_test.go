package gateway

import (
	"context"
	"sync"
	"testing"
)

func TestChannelQueuesPreserveOrderPerChannel(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = make(map[string][]string)
		wg   sync.WaitGroup
	)
	cq := NewChannelQueues(func(ctx context.Context, msg InboundMessage) {
		mu.Lock()
		seen[msg.ChannelID] = append(seen[msg.ChannelID], msg.Text)
		mu.Unlock()
		wg.Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	texts := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, ch := range []string{"1", "2"} {
		for _, text := range texts {
			wg.Add(1)
			cq.Enqueue(ctx, InboundMessage{ChannelID: ch, Text: text})
		}
	}
	wg.Wait()
	cancel()
	cq.Wait()

	for _, ch := range []string{"1", "2"} {
		got := seen[ch]
		if len(got) != len(texts) {
			t.Fatalf("channel %s: expected %d messages, got %d", ch, len(texts), len(got))
		}
		for i := range texts {
			if got[i] != texts[i] {
				t.Errorf("channel %s: position %d expected %q, got %q", ch, i, texts[i], got[i])
			}
		}
	}
}

func TestChannelQueuesEnqueueReturnsAfterCancel(t *testing.T) {
	block := make(chan struct{})
	cq := NewChannelQueues(func(ctx context.Context, msg InboundMessage) {
		<-block
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Must not block even though the worker never drains the queue
	for i := 0; i < channelQueueSize+10; i++ {
		cq.Enqueue(ctx, InboundMessage{ChannelID: "1"})
	}
	close(block)
	cq.Wait()
}
