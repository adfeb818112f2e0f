package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DateLayout is the human date used for page headers and book titles
const DateLayout = "2006-01-02"

// TimestampLayout is the stored publish timestamp, UTC with milliseconds.
// Every stored value has this exact width, so text order equals time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Item represents one archived post
type Item struct {
	ID           int64
	Slug         string
	CanonicalURL string
	Title        string
	Subtitle     string
	Authors      string
	Published    string  // TimestampLayout, e.g. 2024-01-08T11:00:19.386Z
	Body         *string // nil until backfilled
}

// Byline is a single author entry of a source record
type Byline struct {
	Name string `json:"name"`
}

// Record is a post as the remote API returns it. Any field may be missing.
type Record struct {
	ID           json.Number `json:"id"`
	Slug         string      `json:"slug"`
	CanonicalURL string      `json:"canonical_url"`
	Title        string      `json:"title"`
	Subtitle     string      `json:"subtitle"`
	PostDate     string      `json:"post_date"`
	Bylines      []Byline    `json:"publishedBylines"`
	BodyHTML     *string     `json:"body_html"`
}

// NewItem builds a metadata-only item from a source record.
// The record must carry a numeric id, a slug and an absolute canonical url.
// A post date in any RFC 3339 form is normalized to TimestampLayout, an unparseable one is rejected.
func NewItem(rec Record) (Item, error) {
	if rec.ID == "" {
		return Item{}, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	}
	id, err := rec.ID.Int64()
	if err != nil {
		return Item{}, fmt.Errorf("%w: invalid id %q", ErrMalformedRecord, rec.ID)
	}
	if rec.Slug == "" {
		return Item{}, fmt.Errorf("%w: missing slug for id %d", ErrMalformedRecord, id)
	}
	u, err := url.Parse(rec.CanonicalURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Item{}, fmt.Errorf("%w: unresolvable canonical url %q for id %d", ErrMalformedRecord, rec.CanonicalURL, id)
	}

	published, err := NormalizeTimestamp(rec.PostDate)
	if err != nil {
		return Item{}, fmt.Errorf("%w: post date for id %d: %w", ErrMalformedRecord, id, err)
	}

	names := make([]string, 0, len(rec.Bylines))
	for _, b := range rec.Bylines {
		names = append(names, b.Name)
	}

	return Item{
		ID:           id,
		Slug:         rec.Slug,
		CanonicalURL: rec.CanonicalURL,
		Title:        rec.Title,
		Subtitle:     rec.Subtitle,
		Authors:      strings.Join(names, ", "),
		Published:    published,
	}, nil
}

// Complete reports whether the body has been backfilled
func (i Item) Complete() bool {
	return i.Body != nil
}

// SameAs reports whether both items share the remote identity
func (i Item) SameAs(other Item) bool {
	return i.ID == other.ID
}

// PublishedTime parses the source timestamp
func (i Item) PublishedTime() (time.Time, error) {
	return ParseTimestamp(i.Published)
}

// String returns a short identifier for logs
func (i Item) String() string {
	if i.Title != "" {
		return fmt.Sprintf("%d %q", i.ID, i.Title)
	}
	return fmt.Sprintf("%d %s", i.ID, i.Slug)
}

// ParseTimestamp parses a stored timestamp, only TimestampLayout is accepted
func ParseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
	}
	return t, nil
}

// NormalizeTimestamp converts an RFC 3339 timestamp with any offset and precision to TimestampLayout.
// An empty value stays empty, the post can still be archived but never rendered.
func NormalizeTimestamp(ts string) (string, error) {
	if ts == "" {
		return "", nil
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, ts)
	}
	return t.UTC().Format(TimestampLayout), nil
}

// DisplayDate converts a source timestamp to YYYY-MM-DD
func DisplayDate(ts string) (string, error) {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}
