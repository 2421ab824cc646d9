package gateway

import (
	"context"
	"sync"
)

const channelQueueSize = 64

// ChannelQueues runs inbound messages through one worker goroutine per
// channel, so a channel's messages are handled one at a time in arrival
// order while different channels proceed in parallel.
type ChannelQueues struct {
	mu     sync.Mutex
	queues map[string]chan InboundMessage
	handle func(ctx context.Context, msg InboundMessage)
	wg     sync.WaitGroup
}

// NewChannelQueues creates an empty queue set that passes messages to handle.
func NewChannelQueues(handle func(ctx context.Context, msg InboundMessage)) *ChannelQueues {
	return &ChannelQueues{
		queues: make(map[string]chan InboundMessage),
		handle: handle,
	}
}

// Enqueue appends msg to its channel's queue, starting the channel's worker
// on first use. It blocks while the queue is full and gives up when ctx is
// cancelled.
func (cq *ChannelQueues) Enqueue(ctx context.Context, msg InboundMessage) {
	cq.mu.Lock()
	q, ok := cq.queues[msg.ChannelID]
	if !ok {
		q = make(chan InboundMessage, channelQueueSize)
		cq.queues[msg.ChannelID] = q
		cq.wg.Add(1)
		go cq.work(ctx, q)
	}
	cq.mu.Unlock()

	select {
	case q <- msg:
	case <-ctx.Done():
	}
}

func (cq *ChannelQueues) work(ctx context.Context, q <-chan InboundMessage) {
	defer cq.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			cq.handle(ctx, msg)
		}
	}
}

// Wait blocks until every worker has exited after ctx cancellation.
func (cq *ChannelQueues) Wait() {
	cq.wg.Wait()
}
