package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore keeps one JSON file per entity kind under a data directory.
// It is the standalone backend used when Redis is not configured or not
// reachable at startup.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With().Str("component", "file-store").Logger(),
	}, nil
}

// Load returns the stored document for kind, or the kind's default if no
// file exists yet.
func (s *FileStore) Load(_ context.Context, kind string) (json.RawMessage, error) {
	if !KnownKind(kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	data, err := os.ReadFile(s.path(kind))
	if os.IsNotExist(err) {
		return defaultDoc(kind), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return json.RawMessage(data), nil
}

// Save writes the document for kind atomically via a temp file rename.
func (s *FileStore) Save(_ context.Context, kind string, doc json.RawMessage) (json.RawMessage, error) {
	if !KnownKind(kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	tmp, err := os.CreateTemp(s.dir, kind+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp for %s: %w", kind, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("write %s: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("close %s: %w", kind, err)
	}
	if err := os.Rename(tmpName, s.path(kind)); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("replace %s: %w", kind, err)
	}

	s.logger.Debug().Str("kind", kind).Int("bytes", len(doc)).Msg("document saved")
	return doc, nil
}

func (s *FileStore) path(kind string) string {
	return filepath.Join(s.dir, kind+".json")
}
