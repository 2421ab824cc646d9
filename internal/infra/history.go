package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fpt/klein-relay/internal/repository"
)

// HistoryFileRepository persists channel history as one indented JSON file
type HistoryFileRepository struct {
	filePath string
}

// NewHistoryFileRepository creates a new file-based history repository
func NewHistoryFileRepository(filePath string) *HistoryFileRepository {
	return &HistoryFileRepository{
		filePath: filePath,
	}
}

// Path returns the backing file path.
func (fr *HistoryFileRepository) Path() string {
	return fr.filePath
}

// Load implements repository.HistoryRepository
func (fr *HistoryFileRepository) Load() (repository.ChannelHistory, error) {
	if fr.filePath == "" {
		return nil, fmt.Errorf("no file path specified")
	}

	data, err := os.ReadFile(fr.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run
			return make(repository.ChannelHistory), nil
		}
		return nil, fmt.Errorf("failed to read history file %s: %w", fr.filePath, err)
	}

	history := make(repository.ChannelHistory)
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", fr.filePath, err)
	}

	// A literal "null" decodes into a nil map
	if history == nil {
		history = make(repository.ChannelHistory)
	}
	return history, nil
}

// Save implements repository.HistoryRepository
func (fr *HistoryFileRepository) Save(history repository.ChannelHistory) error {
	if fr.filePath == "" {
		return fmt.Errorf("no file path specified")
	}
	if history == nil {
		history = make(repository.ChannelHistory)
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}

	dir := filepath.Dir(fr.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(fr.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", fr.filePath, err)
	}

	return nil
}

// InMemoryHistoryRepository keeps history in process memory only
type InMemoryHistoryRepository struct {
	mu      sync.Mutex
	history repository.ChannelHistory
	saves   int
}

// NewInMemoryHistoryRepository creates an in-memory repository seeded with
// an optional initial mapping.
func NewInMemoryHistoryRepository(seed repository.ChannelHistory) *InMemoryHistoryRepository {
	if seed == nil {
		seed = make(repository.ChannelHistory)
	}
	return &InMemoryHistoryRepository{history: seed.Clone()}
}

// Load implements repository.HistoryRepository
func (mr *InMemoryHistoryRepository) Load() (repository.ChannelHistory, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	return mr.history.Clone(), nil
}

// Save implements repository.HistoryRepository
func (mr *InMemoryHistoryRepository) Save(history repository.ChannelHistory) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.history = history.Clone()
	mr.saves++
	return nil
}

// Saves reports how many times Save was called.
func (mr *InMemoryHistoryRepository) Saves() int {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	return mr.saves
}
