package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/postbook/pkg/domain"
)

// DefaultPageSize is the number of posts requested per archive page
const DefaultPageSize = 50

const archivePath = "api/v1/archive"

// JSONGetter fetches and decodes json from the newsletter api
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, query url.Values, dst any) error
}

// Reader walks the paginated archive listing
type Reader struct {
	api JSONGetter
}

// NewReader creates a new archive reader
func NewReader(api JSONGetter) *Reader {
	return &Reader{api: api}
}

// Discover requests archive pages of pageSize posts, newest first, until the api returns an empty page.
// Posts are deduplicated by id, the last copy seen wins. Any failed page aborts the whole discovery
// and nothing is returned. The order of returned items is not meaningful.
func (r *Reader) Discover(ctx context.Context, pageSize int) ([]domain.Item, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	items := []domain.Item{}
	index := map[int64]int{} // id -> position in items
	for offset := 0; ; offset += pageSize {
		page, err := r.fetchPage(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		lgr.Printf("[DEBUG] fetched %d posts at offset %d", len(page), offset)
		if len(page) == 0 {
			break
		}

		for _, rec := range page {
			item, err := domain.NewItem(rec)
			if err != nil {
				return nil, fmt.Errorf("page at offset %d: %w", offset, err)
			}
			if pos, ok := index[item.ID]; ok {
				items[pos] = item
				continue
			}
			index[item.ID] = len(items)
			items = append(items, item)
		}
	}

	lgr.Printf("[INFO] discovered %d posts", len(items))
	return items, nil
}

func (r *Reader) fetchPage(ctx context.Context, limit, offset int) ([]domain.Record, error) {
	query := url.Values{}
	query.Set("sort", "new")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var page []domain.Record
	if err := r.api.GetJSON(ctx, archivePath, query, &page); err != nil {
		if !errors.Is(err, domain.ErrTransport) {
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return nil, fmt.Errorf("fetch archive page at offset %d: %w", offset, err)
	}
	return page, nil
}
