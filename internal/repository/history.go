package repository

import (
	"github.com/fpt/klein-relay/pkg/message"
)

// ChannelHistory maps a channel id to its ordered conversation turns.
type ChannelHistory map[string][]message.Turn

// HistoryRepository abstracts persistence of per-channel conversation history
type HistoryRepository interface {
	// Load returns the persisted mapping. A repository with nothing stored
	// yet returns an empty, non-nil mapping.
	Load() (ChannelHistory, error)
	// Save overwrites the persisted mapping in full.
	Save(history ChannelHistory) error
}

// Clone returns a deep copy of the mapping.
func (h ChannelHistory) Clone() ChannelHistory {
	out := make(ChannelHistory, len(h))
	for id, turns := range h {
		out[id] = message.CloneTurns(turns)
	}
	return out
}
