package analytics

import (
	"context"
	"strings"
	"sync"
)

type store interface {
	UpsertFile(ctx context.Context, username string, f FileStat) error
	AppendQuery(ctx context.Context, username, query string) error
	Get(ctx context.Context, username string) (Record, error)
	Delete(ctx context.Context, username string) error
}

// Service owns every read-modify-write of analytics records. Mutations for
// one user are serialized; different users proceed in parallel.
type Service struct {
	store store
	locks *userLocks
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return newService(newMemoryStore())
}

// NewFileService constructs a Service persisted to a single JSON file.
func NewFileService(path string) *Service {
	return newService(NewFileStore(path))
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore *PGStore) *Service {
	return newService(pgStore)
}

// NewRedisService constructs a Service backed by Redis.
func NewRedisService(redisStore *RedisStore) *Service {
	return newService(redisStore)
}

func newService(s store) *Service {
	return &Service{store: s, locks: newUserLocks()}
}

// RecordIngestion replaces the metadata for filename with the new counts.
func (s *Service) RecordIngestion(ctx context.Context, username, filename string, words, pages int) error {
	if strings.TrimSpace(username) == "" {
		return ErrInvalidUser
	}
	unlock := s.locks.lock(username)
	defer unlock()
	return s.store.UpsertFile(ctx, username, FileStat{Filename: filename, Words: words, Pages: pages})
}

// RecordQuery appends query to the user's log verbatim.
func (s *Service) RecordQuery(ctx context.Context, username, query string) error {
	if strings.TrimSpace(username) == "" {
		return ErrInvalidUser
	}
	unlock := s.locks.lock(username)
	defer unlock()
	return s.store.AppendQuery(ctx, username, query)
}

// Record returns the raw record; an unknown user has an empty one.
func (s *Service) Record(ctx context.Context, username string) (Record, error) {
	rec, err := s.store.Get(ctx, username)
	if err != nil {
		return Record{}, err
	}
	if rec.Files == nil {
		rec.Files = []FileStat{}
	}
	if rec.Queries == nil {
		rec.Queries = []string{}
	}
	return rec, nil
}

// Summarize derives totals and the top queries for a user.
func (s *Service) Summarize(ctx context.Context, username string) (Summary, error) {
	rec, err := s.Record(ctx, username)
	if err != nil {
		return EmptySummary(), err
	}
	return summarize(rec), nil
}

// Clear removes the user's entire record.
func (s *Service) Clear(ctx context.Context, username string) error {
	unlock := s.locks.lock(username)
	defer unlock()
	return s.store.Delete(ctx, username)
}

// EmptySummary is the zeroed record served when nothing can be read.
func EmptySummary() Summary {
	return Summary{TopQueries: []QueryCount{}}
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock blocks until username's lock is held and returns its release func.
// Entries are dropped once no goroutine holds or waits on them.
func (l *userLocks) lock(username string) func() {
	l.mu.Lock()
	ul, ok := l.locks[username]
	if !ok {
		ul = &userLock{}
		l.locks[username] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, username)
		}
		l.mu.Unlock()
	}
}
