package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/postbook/pkg/domain"
)

// ItemRepository handles archived posts
type ItemRepository struct {
	db *sqlx.DB
}

// itemSQL represents an item for SQL operations
type itemSQL struct {
	ID        int64          `db:"id"`
	Slug      string         `db:"slug"`
	URL       string         `db:"url"`
	Title     string         `db:"title"`
	Subtitle  string         `db:"subtitle"`
	Authors   string         `db:"authors"`
	Published string         `db:"published"`
	Body      sql.NullString `db:"body"`
}

// Stats summarizes the archive content
type Stats struct {
	Total    int    `db:"total"`
	Complete int    `db:"complete"`
	Earliest string `db:"earliest"` // of complete items
	Latest   string `db:"latest"`   // of complete items
}

// Incomplete returns the number of posts still waiting for a body
func (s Stats) Incomplete() int {
	return s.Total - s.Complete
}

const itemColumns = `id, slug, url, title, subtitle, authors, published, body`

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// UpsertMetadata inserts posts not seen before in a single transaction and returns how many were new.
// Existing rows are never touched, metadata is first-write-wins and bodies are preserved.
func (r *ItemRepository) UpsertMetadata(ctx context.Context, items []domain.Item) (inserted int, err error) {
	if len(items) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO items (id, slug, url, title, subtitle, authors, published)
		VALUES (:id, :slug, :url, :title, :subtitle, :authors, :published)
		ON CONFLICT(id) DO NOTHING
	`

	err = withLockRetry(ctx, func() error {
		inserted = 0
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareNamedContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			res, err := stmt.ExecContext(ctx, toSQLItem(item))
			if err != nil {
				return fmt.Errorf("insert item %d: %w", item.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected for item %d: %w", item.ID, err)
			}
			inserted += int(n)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("upsert metadata: %w", err)
	}
	return inserted, nil
}

// FindIncomplete returns ids of posts without a body
func (r *ItemRepository) FindIncomplete(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	err := withLockRetry(ctx, func() error {
		return r.db.SelectContext(ctx, &ids, `SELECT id FROM items WHERE body IS NULL ORDER BY id`)
	})
	if err != nil {
		return nil, fmt.Errorf("find incomplete items: %w", err)
	}
	return ids, nil
}

// GetItem retrieves a post by id
func (r *ItemRepository) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	var rec itemSQL
	err := withLockRetry(ctx, func() error {
		return r.db.GetContext(ctx, &rec, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, fmt.Errorf("get item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return rec.toDomain(), nil
}

// SetBody stores the body of one post, committed on its own
func (r *ItemRepository) SetBody(ctx context.Context, id int64, body string) error {
	err := withLockRetry(ctx, func() error {
		res, err := r.db.ExecContext(ctx, `UPDATE items SET body = ?, backfilled_at = ? WHERE id = ?`,
			body, time.Now().UTC().Format(time.RFC3339Nano), id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set body for item %d: %w", id, err)
	}
	return nil
}

// CompleteItems returns posts with a body, oldest first, ties broken by id
func (r *ItemRepository) CompleteItems(ctx context.Context) ([]domain.Item, error) {
	var recs []itemSQL
	err := withLockRetry(ctx, func() error {
		return r.db.SelectContext(ctx, &recs,
			`SELECT `+itemColumns+` FROM items WHERE body IS NOT NULL ORDER BY published ASC, id ASC`)
	})
	if err != nil {
		return nil, fmt.Errorf("get complete items: %w", err)
	}

	items := make([]domain.Item, len(recs))
	for i := range recs {
		items[i] = recs[i].toDomain()
	}
	return items, nil
}

// Earliest returns the publish timestamp of the oldest complete post
func (r *ItemRepository) Earliest(ctx context.Context) (string, error) {
	return r.boundary(ctx, `ORDER BY published ASC, id ASC`)
}

// Latest returns the publish timestamp of the newest complete post
func (r *ItemRepository) Latest(ctx context.Context) (string, error) {
	return r.boundary(ctx, `ORDER BY published DESC, id DESC`)
}

func (r *ItemRepository) boundary(ctx context.Context, order string) (string, error) {
	var published string
	err := withLockRetry(ctx, func() error {
		return r.db.GetContext(ctx, &published,
			`SELECT published FROM items WHERE body IS NOT NULL `+order+` LIMIT 1`)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrEmptyArchive
	}
	if err != nil {
		return "", fmt.Errorf("get publish boundary: %w", err)
	}
	return published, nil
}

// Stats returns counts and the date span of the archive
func (r *ItemRepository) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := withLockRetry(ctx, func() error {
		return r.db.GetContext(ctx, &st, `
			SELECT COUNT(*) AS total,
			       COUNT(body) AS complete,
			       COALESCE(MIN(CASE WHEN body IS NOT NULL THEN published END), '') AS earliest,
			       COALESCE(MAX(CASE WHEN body IS NOT NULL THEN published END), '') AS latest
			FROM items`)
	})
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return st, nil
}

func toSQLItem(item domain.Item) *itemSQL {
	return &itemSQL{
		ID:        item.ID,
		Slug:      item.Slug,
		URL:       item.CanonicalURL,
		Title:     item.Title,
		Subtitle:  item.Subtitle,
		Authors:   item.Authors,
		Published: item.Published,
	}
}

// toDomain converts itemSQL to domain.Item
func (s *itemSQL) toDomain() domain.Item {
	item := domain.Item{
		ID:           s.ID,
		Slug:         s.Slug,
		CanonicalURL: s.URL,
		Title:        s.Title,
		Subtitle:     s.Subtitle,
		Authors:      s.Authors,
		Published:    s.Published,
	}
	if s.Body.Valid {
		body := s.Body.String
		item.Body = &body
	}
	return item
}
