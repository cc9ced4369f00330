package analytics

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Record)}
}

func (s *memoryStore) UpsertFile(ctx context.Context, username string, f FileStat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.data[username]
	rec.Files = withFile(rec.Files, f)
	s.data[username] = rec
	return nil
}

func (s *memoryStore) AppendQuery(ctx context.Context, username, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.data[username]
	rec.Queries = append(rec.Queries, query)
	s.data[username] = rec
	return nil
}

func (s *memoryStore) Get(ctx context.Context, username string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.data[username]
	return Record{
		Files:   append([]FileStat(nil), rec.Files...),
		Queries: append([]string(nil), rec.Queries...),
	}, nil
}

func (s *memoryStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, username)
	s.mu.Unlock()
	return nil
}
