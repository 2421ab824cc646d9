package history

import (
	"sort"
	"sync"

	"github.com/fpt/klein-relay/internal/repository"
	"github.com/fpt/klein-relay/pkg/logger"
	"github.com/fpt/klein-relay/pkg/message"
)

// DefaultLimit is the number of turns kept per channel.
const DefaultLimit = 20

// Store keeps a bounded, persisted conversation history per channel
type Store struct {
	mu      sync.Mutex
	repo    repository.HistoryRepository
	limit   int
	history repository.ChannelHistory
	logger  *logger.Logger
}

// NewStore loads the persisted history from repo. A load failure is logged
// and leaves the store empty; it never prevents startup.
func NewStore(repo repository.HistoryRepository, limit int, log *logger.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if log == nil {
		log = logger.NewComponentLogger("history")
	}

	s := &Store{
		repo:    repo,
		limit:   limit,
		history: make(repository.ChannelHistory),
		logger:  log,
	}

	loaded, err := repo.Load()
	if err != nil {
		s.logger.Warn("Could not load conversation history, starting empty", "error", err)
		return s
	}

	for id, turns := range loaded {
		// Older files may hold more than the current limit
		if len(turns) > limit {
			turns = turns[len(turns)-limit:]
		}
		s.history[id] = message.CloneTurns(turns)
	}
	s.logger.DebugWithIntention(logger.IntentionHistory, "Loaded conversation history", "channels", len(s.history))
	return s
}

// Limit returns the per-channel turn cap.
func (s *Store) Limit() int {
	return s.limit
}

// Append adds a turn to the channel, evicts the oldest turns over the limit
// and persists the whole mapping. The in-memory state is updated even when
// the save fails; the save error is returned.
func (s *Store) Append(channelID string, turn message.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Image references are request-only
	turn.ImageURL = ""

	turns := append(s.history[channelID], turn)
	for len(turns) > s.limit {
		turns = turns[1:]
	}
	s.history[channelID] = turns

	return s.saveLocked()
}

// Get returns a copy of the channel's turns, or an empty slice.
func (s *Store) Get(channelID string) []message.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return message.CloneTurns(s.history[channelID])
}

// Clear drops the channel's history and persists the result.
func (s *Store) Clear(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.history[channelID]; !ok {
		return nil
	}
	delete(s.history, channelID)
	return s.saveLocked()
}

// Channels returns the ids of channels that have history, sorted.
func (s *Store) Channels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.history))
	for id := range s.history {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Flush persists the current mapping.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	return s.repo.Save(s.history.Clone())
}
