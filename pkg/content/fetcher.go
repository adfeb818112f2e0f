package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/umputun/postbook/pkg/domain"
	"github.com/umputun/postbook/pkg/remote"
)

const postsPath = "api/v1/posts/"

// JSONGetter fetches and decodes json from the newsletter api
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, dst any) error
}

// Fetcher retrieves the full html body of a single post
type Fetcher struct {
	api JSONGetter
}

// NewFetcher creates a new body fetcher
func NewFetcher(api JSONGetter) *Fetcher {
	return &Fetcher{api: api}
}

// FetchBody requests the post addressed by slug and returns its body_html verbatim.
// One request per call, no retries. An empty body is a valid result, a missing one is not.
func (f *Fetcher) FetchBody(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		return "", fmt.Errorf("%w: empty slug", domain.ErrMalformedRecord)
	}

	var rec domain.Record
	if err := f.api.GetJSON(ctx, postsPath+url.PathEscape(slug), nil, &rec); err != nil {
		var de *remote.DecodeError
		if errors.As(err, &de) {
			return "", fmt.Errorf("post %s: %w: %v", slug, domain.ErrMalformedResponse, de.Err)
		}
		if !errors.Is(err, domain.ErrTransport) {
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return "", fmt.Errorf("fetch post %s: %w", slug, err)
	}

	if rec.BodyHTML == nil {
		return "", fmt.Errorf("post %s: %w: no body_html field", slug, domain.ErrMalformedResponse)
	}
	return *rec.BodyHTML, nil
}
