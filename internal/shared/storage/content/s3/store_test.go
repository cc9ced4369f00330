package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"docassist-backend/internal/shared/storage/content"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range in.Delete.Objects {
		delete(f.objects, aws.ToString(id.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "uploads/alice/a.pdf", want: "uploads/alice/a.pdf"},
		{name: "simple prefix", prefix: "root", key: "uploads/alice/a.pdf", want: "root/uploads/alice/a.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "texts/alice/a.pdf.txt", want: "root/texts/alice/a.pdf.txt"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/uploads/alice/a.pdf", want: "root/uploads/alice/a.pdf"},
		{name: "empty key", prefix: "root", key: "", want: "root"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "docs/", "")

	saved, err := store.SaveDocument(ctx, "alice", "My Report.pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if saved.FileName != "My_Report.pdf" || saved.SizeBytes != int64(len("%PDF-1.4 body")) {
		t.Fatalf("unexpected stored document: %+v", saved)
	}
	if _, ok := fake.objects["docs/uploads/alice/My_Report.pdf"]; !ok {
		t.Fatalf("expected upload key, have %v", fake.objects)
	}
	if fake.puts[0].ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption without kms key")
	}

	if err := store.SaveText(ctx, "alice", "My_Report.pdf", "hello"); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	text, err := store.LoadText(ctx, "alice", "My_Report.pdf")
	if err != nil || text != "hello" {
		t.Fatalf("LoadText = %q, %v", text, err)
	}

	names, err := store.ListDocuments(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(names) != 1 || names[0] != "My_Report.pdf" {
		t.Fatalf("ListDocuments = %v", names)
	}

	if err := store.ClearUser(ctx, "alice"); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if len(fake.objects) != 0 {
		t.Fatalf("expected all objects removed, have %v", fake.objects)
	}
}

func TestStoreMissingObjects(t *testing.T) {
	ctx := context.Background()
	store := NewWithClient(newFakeS3(), "bucket", "", "kms-key")

	if _, err := store.LoadText(ctx, "bob", "none.pdf"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.OpenDocument(ctx, "bob", "none.pdf"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	names, err := store.ListDocuments(ctx, "bob")
	if err != nil || len(names) != 0 {
		t.Fatalf("expected empty listing, got %v, %v", names, err)
	}
	if err := store.ClearUser(ctx, "bob"); err != nil {
		t.Fatalf("ClearUser on empty user: %v", err)
	}
}
