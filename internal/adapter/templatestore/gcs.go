package templatestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSStore reads templates from <bucket>/<prefix>/<name>/.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSStore(ctx context.Context, bucket, prefix string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) key(name, file string) string {
	if s.prefix == "" {
		return objectPath(name, file)
	}
	return s.prefix + "/" + objectPath(name, file)
}

func (s *GCSStore) read(ctx context.Context, name, file string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	r, err := s.client.Bucket(s.bucket).Object(s.key(name, file)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("open gs://%s/%s: %w", s.bucket, s.key(name, file), err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read gs://%s/%s: %w", s.bucket, s.key(name, file), err)
	}
	return string(b), nil
}

func (s *GCSStore) Template(ctx context.Context, name string) (string, error) {
	return s.read(ctx, name, templateFile)
}

func (s *GCSStore) Stylesheet(ctx context.Context, name string) (string, error) {
	css, err := s.read(ctx, name, stylesheetFile)
	if err != nil && isNotFound(err) {
		return "", nil
	}
	return css, err
}

func (s *GCSStore) List(ctx context.Context) ([]string, error) {
	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", s.bucket, prefix, err)
		}
		if attrs.Prefix == "" {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, prefix), "/")
		if checkName(name) == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
