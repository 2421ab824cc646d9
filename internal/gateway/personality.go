package gateway

import (
	"os"
	"strings"

	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

// PersonalityLoader reads the system prompt from a text file. The file is
// read on every call so edits take effect without a restart.
type PersonalityLoader struct {
	path     string
	fallback string
	logger   *pkgLogger.Logger
}

// NewPersonalityLoader creates a loader for path that returns fallback when
// the file cannot be read.
func NewPersonalityLoader(path, fallback string, logger *pkgLogger.Logger) *PersonalityLoader {
	return &PersonalityLoader{
		path:     path,
		fallback: fallback,
		logger:   logger.WithComponent("personality"),
	}
}

// Load returns the trimmed file content, or the fallback.
func (p *PersonalityLoader) Load() string {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Warn("Failed to read personality file, using default", "path", p.path, "error", err)
		return p.fallback
	}
	return strings.TrimSpace(string(data))
}
