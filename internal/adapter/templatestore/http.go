package templatestore

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPStore fetches templates from a static asset host. The host lists the
// available names in index.json as a JSON array of strings.
type HTTPStore struct {
	client *resty.Client
}

func NewHTTPStore(baseURL string, timeout time.Duration) *HTTPStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &HTTPStore{client: client}
}

func (s *HTTPStore) get(ctx context.Context, name, file string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	resp, err := s.client.R().SetContext(ctx).Get("/" + objectPath(name, file))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", objectPath(name, file), err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return resp.String(), nil
	case http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	default:
		return "", fmt.Errorf("fetch %s: unexpected status %d", objectPath(name, file), resp.StatusCode())
	}
}

func (s *HTTPStore) Template(ctx context.Context, name string) (string, error) {
	return s.get(ctx, name, templateFile)
}

func (s *HTTPStore) Stylesheet(ctx context.Context, name string) (string, error) {
	css, err := s.get(ctx, name, stylesheetFile)
	if err != nil && isNotFound(err) {
		return "", nil
	}
	return css, err
}

func (s *HTTPStore) List(ctx context.Context) ([]string, error) {
	var names []string
	resp, err := s.client.R().SetContext(ctx).SetResult(&names).Get("/index.json")
	if err != nil {
		return nil, fmt.Errorf("fetch template index: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch template index: unexpected status %d", resp.StatusCode())
	}
	out := names[:0]
	for _, n := range names {
		if checkName(n) == nil {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}
