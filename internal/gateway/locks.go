package gateway

import "sync"

// ChannelLocks hands out one mutex per channel so that the history
// read-modify-write of a channel never interleaves with another.
type ChannelLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewChannelLocks creates an empty lock set.
func NewChannelLocks() *ChannelLocks {
	return &ChannelLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the channel's mutex is held and returns its unlock func.
func (cl *ChannelLocks) Lock(channelID string) func() {
	cl.mu.Lock()
	m, ok := cl.locks[channelID]
	if !ok {
		m = &sync.Mutex{}
		cl.locks[channelID] = m
	}
	cl.mu.Unlock()

	m.Lock()
	return m.Unlock
}
