package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func serviceFactories(t *testing.T) map[string]func() *Service {
	return map[string]func() *Service{
		"memory": NewService,
		"file": func() *Service {
			return NewFileService(filepath.Join(t.TempDir(), "analytics.json"))
		},
	}
}

func TestReingestReplacesFileEntry(t *testing.T) {
	for name, factory := range serviceFactories(t) {
		factory := factory
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := factory()

			must(t, svc.RecordIngestion(ctx, "alice", "a.pdf", 10, 1))
			must(t, svc.RecordIngestion(ctx, "alice", "b.pdf", 5, 2))
			must(t, svc.RecordIngestion(ctx, "alice", "a.pdf", 20, 3))

			rec, err := svc.Record(ctx, "alice")
			must(t, err)
			if len(rec.Files) != 2 {
				t.Fatalf("expected 2 files, got %+v", rec.Files)
			}
			if rec.Files[1] != (FileStat{Filename: "a.pdf", Words: 20, Pages: 3}) {
				t.Fatalf("expected a.pdf moved to the end with new counts, got %+v", rec.Files)
			}

			s, err := svc.Summarize(ctx, "alice")
			must(t, err)
			if s.TotalFiles != 2 || s.TotalWords != 25 || s.TotalPages != 5 {
				t.Fatalf("unexpected summary %+v", s)
			}
		})
	}
}

func TestQueriesAreNeverDeduplicated(t *testing.T) {
	for name, factory := range serviceFactories(t) {
		factory := factory
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := factory()
			for _, q := range []string{"x", "y", "x", "x"} {
				must(t, svc.RecordQuery(ctx, "alice", q))
			}

			s, err := svc.Summarize(ctx, "alice")
			must(t, err)
			want := []QueryCount{{"x", 3}, {"y", 1}}
			if fmt.Sprint(s.TopQueries) != fmt.Sprint(want) {
				t.Fatalf("top queries = %v, want %v", s.TopQueries, want)
			}
			rec, _ := svc.Record(ctx, "alice")
			if len(rec.Queries) != 4 {
				t.Fatalf("expected raw history of 4, got %v", rec.Queries)
			}
		})
	}
}

func TestTopQueriesTieBreakAndLimit(t *testing.T) {
	queries := []string{"b", "a", "c", "a", "b", "d", "e", "f", "g", " a"}
	got := topQueries(queries, TopQueryLimit)
	want := []QueryCount{{"b", 2}, {"a", 2}, {"c", 1}, {"d", 1}, {"e", 1}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("topQueries = %v, want %v", got, want)
	}
}

func TestSummaryJSONShape(t *testing.T) {
	s := summarize(Record{
		Files:   []FileStat{{Filename: "report.pdf", Words: 2, Pages: 1}},
		Queries: []string{"hello"},
	})
	raw, err := json.Marshal(s)
	must(t, err)
	want := `{"total_files":1,"total_words":2,"total_pages":1,"top_queries":[["hello",1]]}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}

	raw, err = json.Marshal(EmptySummary())
	must(t, err)
	if string(raw) != `{"total_files":0,"total_words":0,"total_pages":0,"top_queries":[]}` {
		t.Fatalf("empty summary json = %s", raw)
	}
}

func TestClearZeroesSummary(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	must(t, svc.RecordIngestion(ctx, "alice", "a.pdf", 10, 1))
	must(t, svc.RecordQuery(ctx, "alice", "q"))
	must(t, svc.RecordIngestion(ctx, "bob", "b.pdf", 3, 1))

	must(t, svc.Clear(ctx, "alice"))
	s, err := svc.Summarize(ctx, "alice")
	must(t, err)
	if s.TotalFiles != 0 || s.TotalWords != 0 || len(s.TopQueries) != 0 {
		t.Fatalf("expected zeroed summary, got %+v", s)
	}
	s, _ = svc.Summarize(ctx, "bob")
	if s.TotalFiles != 1 {
		t.Fatalf("expected bob untouched, got %+v", s)
	}
}

func TestBlankUsernameRejected(t *testing.T) {
	svc := NewService()
	if err := svc.RecordQuery(context.Background(), "  ", "q"); err != ErrInvalidUser {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	for name, factory := range serviceFactories(t) {
		factory := factory
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := factory()
			users := []string{"alice", "bob", "carol"}
			const perUser = 20

			var wg sync.WaitGroup
			for _, u := range users {
				for i := 0; i < perUser; i++ {
					wg.Add(2)
					go func(u string, i int) {
						defer wg.Done()
						if err := svc.RecordQuery(ctx, u, "q"); err != nil {
							t.Errorf("RecordQuery: %v", err)
						}
					}(u, i)
					go func(u string, i int) {
						defer wg.Done()
						if err := svc.RecordIngestion(ctx, u, fmt.Sprintf("f%d.pdf", i), 1, 1); err != nil {
							t.Errorf("RecordIngestion: %v", err)
						}
					}(u, i)
				}
			}
			wg.Wait()

			for _, u := range users {
				s, err := svc.Summarize(ctx, u)
				must(t, err)
				if s.TotalFiles != perUser || s.TotalWords != perUser {
					t.Fatalf("%s: lost file updates, got %+v", u, s)
				}
				if len(s.TopQueries) != 1 || s.TopQueries[0].Count != perUser {
					t.Fatalf("%s: lost query updates, got %+v", u, s.TopQueries)
				}
			}
			if n := len(svc.locks.locks); n != 0 {
				t.Fatalf("expected lock table drained, have %d entries", n)
			}
		})
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
