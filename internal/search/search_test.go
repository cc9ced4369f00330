package search

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"docassist-backend/internal/shared/storage/content/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	root := t.TempDir()
	return NewService(local.New(filepath.Join(root, "uploads"), filepath.Join(root, "texts")))
}

func TestLines(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    []string
	}{
		{name: "case insensitive", text: "Hello world\nbye\n  HELLO again  ", keyword: "hello", want: []string{"Hello world", "HELLO again"}},
		{name: "crlf", text: "alpha\r\nbeta\r\nalphabet", keyword: "ALPHA", want: []string{"alpha", "alphabet"}},
		{name: "no match", text: "alpha", keyword: "zeta", want: []string{}},
		{name: "empty keyword", text: "alpha", keyword: "", want: []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.text, tt.keyword)
			if got == nil || strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("Lines = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestSearchMissingAndEmptyAreEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if err := svc.Store.SaveText(ctx, "alice", "a.pdf", "hello world"); err != nil {
		t.Fatalf("SaveText: %v", err)
	}

	for _, tc := range []struct{ filename, keyword string }{
		{"a.pdf", ""},
		{"missing.pdf", "hello"},
		{"a.pdf", "absent"},
	} {
		got, err := svc.Search(ctx, "alice", tc.filename, tc.keyword)
		if err != nil || got == nil || len(got) != 0 {
			t.Fatalf("Search(%q, %q) = %#v, %v", tc.filename, tc.keyword, got, err)
		}
	}

	got, err := svc.Search(ctx, "alice", "a.pdf", "HELLO")
	if err != nil || len(got) != 1 || got[0] != "hello world" {
		t.Fatalf("Search = %#v, %v", got, err)
	}
}

func TestAssembleOrderAndBound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	for name, text := range map[string]string{"b.pdf": "second", "a.pdf": "first", "c.pdf": ""} {
		if _, err := svc.Store.SaveDocument(ctx, "alice", name, strings.NewReader("x")); err != nil {
			t.Fatalf("SaveDocument: %v", err)
		}
		if err := svc.Store.SaveText(ctx, "alice", name, text); err != nil {
			t.Fatalf("SaveText: %v", err)
		}
	}
	if _, err := svc.Store.SaveDocument(ctx, "alice", "d.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	got, err := svc.Assemble(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got.Text != "first\nsecond\n\n" || got.Documents != 3 {
		t.Fatalf("unexpected assembly %+v", got)
	}

	got, err = svc.Assemble(ctx, "alice", 8)
	if err != nil || got.Text != "first\nse" {
		t.Fatalf("bounded assembly = %+v, %v", got, err)
	}

	got, err = svc.Assemble(ctx, "nobody", 100)
	if err != nil || got.Documents != 0 || got.Text != "" {
		t.Fatalf("expected empty assembly, got %+v, %v", got, err)
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("abc", 3); got != "abc" {
		t.Fatalf("Truncate = %q", got)
	}
}
