package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every user's record in one JSON object keyed by username.
// Each mutation rewrites the file through a temp file and rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store persisted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) UpsertFile(ctx context.Context, username string, f FileStat) error {
	return s.update(ctx, func(data map[string]Record) {
		rec := data[username]
		rec.Files = withFile(rec.Files, f)
		if rec.Queries == nil {
			rec.Queries = []string{}
		}
		data[username] = rec
	})
}

func (s *FileStore) AppendQuery(ctx context.Context, username, query string) error {
	return s.update(ctx, func(data map[string]Record) {
		rec := data[username]
		if rec.Files == nil {
			rec.Files = []FileStat{}
		}
		rec.Queries = append(rec.Queries, query)
		data[username] = rec
	})
}

func (s *FileStore) Get(ctx context.Context, username string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return Record{}, err
	}
	return data[username], nil
}

func (s *FileStore) Delete(ctx context.Context, username string) error {
	return s.update(ctx, func(data map[string]Record) {
		delete(data, username)
	})
}

func (s *FileStore) update(ctx context.Context, mutate func(map[string]Record)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	mutate(data)
	return s.save(data)
}

// load treats a missing file as empty. A corrupt file is an error rather
// than an empty map so a later write cannot wipe every user's record.
func (s *FileStore) load() (map[string]Record, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("read analytics file: %w", err)
	}
	data := map[string]Record{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode analytics file: %w", err)
	}
	return data, nil
}

func (s *FileStore) save(data map[string]Record) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("encode analytics: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
