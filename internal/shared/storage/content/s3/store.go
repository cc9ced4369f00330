package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"docassist-backend/internal/shared/storage/content"
	"docassist-backend/internal/shared/util"
)

const (
	uploadsNamespace = "uploads"
	textsNamespace   = "texts"
	deleteBatchSize  = 1000
)

// API is the subset of the S3 client the store needs.
type API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Store implements content.Store using Amazon S3. Keys are
// <prefix>/uploads/<user>/<file> and <prefix>/texts/<user>/<file>.txt.
type Store struct {
	client   API
	bucket   string
	prefix   string
	kmsKeyID string
}

// New creates a new S3-backed content store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID), nil
}

// NewWithClient builds a store around an existing client.
func NewWithClient(client API, bucket, prefix, kmsKeyID string) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   normalizePrefix(prefix),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}
}

// SaveDocument uploads the original bytes under the user's upload namespace.
func (s *Store) SaveDocument(ctx context.Context, username, fileName string, r io.Reader) (content.StoredDocument, error) {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return content.StoredDocument{}, err
	}
	if err := ctx.Err(); err != nil {
		return content.StoredDocument{}, err
	}

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return content.StoredDocument{}, fmt.Errorf("read sniff: %w", readErr)
	}
	mimeType := http.DetectContentType(sniff[:n])

	counter := &countingReader{r: io.MultiReader(bytes.NewReader(sniff[:n]), r)}
	objectKey := s.key(uploadsNamespace, userKey, name)
	if err := s.put(ctx, objectKey, mimeType, counter); err != nil {
		return content.StoredDocument{}, err
	}
	return content.StoredDocument{FileName: name, SizeBytes: counter.n, MimeType: mimeType}, nil
}

// SaveText uploads extracted text for a document.
func (s *Store) SaveText(ctx context.Context, username, fileName, text string) error {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	objectKey := s.key(textsNamespace, userKey, name+content.TextSuffix)
	return s.put(ctx, objectKey, "text/plain; charset=utf-8", strings.NewReader(text))
}

// LoadText downloads the extracted text for a document.
func (s *Store) LoadText(ctx context.Context, username, fileName string) (string, error) {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return "", err
	}
	body, err := s.get(ctx, s.key(textsNamespace, userKey, name+content.TextSuffix))
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}

// OpenDocument downloads the original upload for reading.
func (s *Store) OpenDocument(ctx context.Context, username, fileName string) (io.ReadCloser, error) {
	userKey, name, err := content.Keys(username, fileName)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, s.key(uploadsNamespace, userKey, name))
}

// ListDocuments lists the user's uploaded filenames.
func (s *Store) ListDocuments(ctx context.Context, username string) ([]string, error) {
	userKey, err := util.UserKey(username)
	if err != nil {
		return nil, err
	}

	dirPrefix := s.key(uploadsNamespace, userKey, "") + "/"
	keys, err := s.list(ctx, dirPrefix)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, dirPrefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ClearUser deletes every object in both of the user's namespaces.
func (s *Store) ClearUser(ctx context.Context, username string) error {
	userKey, err := util.UserKey(username)
	if err != nil {
		return err
	}

	var errs []error
	for _, ns := range []string{uploadsNamespace, textsNamespace} {
		if err := s.deletePrefix(ctx, s.key(ns, userKey, "")+"/"); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", ns, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) key(namespace, userKey, name string) string {
	return applyPrefix(s.prefix, path.Join(namespace, userKey, name))
}

func (s *Store) put(ctx context.Context, objectKey, contentType string, body io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, content.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

func (s *Store) list(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects bucket=%s prefix=%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *Store) deletePrefix(ctx context.Context, prefix string) error {
	keys, err := s.list(ctx, prefix)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		ids := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, s3types.ObjectIdentifier{Key: aws.String(k)})
		}
		if _, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return fmt.Errorf("s3 delete objects bucket=%s prefix=%s: %w", s.bucket, prefix, err)
		}
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ content.Store = (*Store)(nil)
