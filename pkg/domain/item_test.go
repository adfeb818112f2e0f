package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Item
		wantErr error
	}{
		{
			name: "full record",
			json: `{"id": 42, "slug": "first-post", "canonical_url": "https://example.substack.com/p/first-post",
				"title": "First", "subtitle": "Sub", "post_date": "2024-01-08T11:00:19.386Z",
				"publishedBylines": [{"name": "A"}, {"name": "B"}]}`,
			want: Item{ID: 42, Slug: "first-post", CanonicalURL: "https://example.substack.com/p/first-post",
				Title: "First", Subtitle: "Sub", Authors: "A, B", Published: "2024-01-08T11:00:19.386Z"},
		},
		{
			name: "no bylines",
			json: `{"id": 7, "slug": "s", "canonical_url": "https://example.com/p/s"}`,
			want: Item{ID: 7, Slug: "s", CanonicalURL: "https://example.com/p/s", Authors: ""},
		},
		{
			name: "empty bylines and null title",
			json: `{"id": 7, "slug": "s", "canonical_url": "https://example.com/p/s", "title": null, "publishedBylines": []}`,
			want: Item{ID: 7, Slug: "s", CanonicalURL: "https://example.com/p/s", Authors: ""},
		},
		{
			name: "numeric string id",
			json: `{"id": "123", "slug": "s", "canonical_url": "https://example.com/p/s"}`,
			want: Item{ID: 123, Slug: "s", CanonicalURL: "https://example.com/p/s"},
		},
		{
			name: "post date normalized to utc millis",
			json: `{"id": 8, "slug": "s", "canonical_url": "https://example.com/p/s", "post_date": "2024-01-08T12:30:00+02:00"}`,
			want: Item{ID: 8, Slug: "s", CanonicalURL: "https://example.com/p/s", Published: "2024-01-08T10:30:00.000Z"},
		},
		{name: "bad post date", json: `{"id": 1, "slug": "s", "canonical_url": "https://example.com/p/s", "post_date": "yesterday"}`,
			wantErr: ErrMalformedTimestamp},
		{name: "missing id", json: `{"slug": "s", "canonical_url": "https://example.com/p/s"}`, wantErr: ErrMalformedRecord},
		{name: "missing slug", json: `{"id": 1, "canonical_url": "https://example.com/p/s"}`, wantErr: ErrMalformedRecord},
		{name: "missing url", json: `{"id": 1, "slug": "s"}`, wantErr: ErrMalformedRecord},
		{name: "relative url", json: `{"id": 1, "slug": "s", "canonical_url": "/p/s"}`, wantErr: ErrMalformedRecord},
		{name: "fractional id", json: `{"id": 1.5, "slug": "s", "canonical_url": "https://example.com/p/s"}`, wantErr: ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			require.NoError(t, json.Unmarshal([]byte(tt.json), &rec))

			item, err := NewItem(rec)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, item)
			assert.False(t, item.Complete(), "new items never carry a body")
		})
	}
}

func TestItem_SameAs(t *testing.T) {
	a := Item{ID: 1, Title: "old"}
	b := Item{ID: 1, Title: "new"}
	c := Item{ID: 2, Title: "old"}
	assert.True(t, a.SameAs(b))
	assert.False(t, a.SameAs(c))
}

func TestItem_Complete(t *testing.T) {
	empty := ""
	assert.False(t, Item{ID: 1}.Complete())
	assert.True(t, Item{ID: 1, Body: &empty}.Complete(), "empty body is still a body")
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-08T11:00:19.386Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 11, 0, 19, 386000000, time.UTC), ts)

	for _, bad := range []string{"08/01/2024", "", "2024-01-08T11:00:19Z", "2024-01-08T12:30:00+02:00", "2024-01-08T11:00:19.3Z"} {
		_, err = ParseTimestamp(bad)
		require.ErrorIs(t, err, ErrMalformedTimestamp, bad)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "2024-01-08T11:00:19.386Z", want: "2024-01-08T11:00:19.386Z"},
		{in: "2024-01-08T11:00:19Z", want: "2024-01-08T11:00:19.000Z"},
		{in: "2024-01-08T12:30:00+02:00", want: "2024-01-08T10:30:00.000Z"},
		{in: "2024-01-08T11:00:19.386512Z", want: "2024-01-08T11:00:19.386Z"},
		{in: "", want: ""},
		{in: "2024-01-08", wantErr: true},
		{in: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTimestamp(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedTimestamp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("normalized values sort in time order", func(t *testing.T) {
		in := []string{"2024-01-08T11:00:19.386Z", "2024-01-08T11:00:19Z", "2024-01-08T12:30:00+02:00"}
		var norm []string
		for _, ts := range in {
			n, err := NormalizeTimestamp(ts)
			require.NoError(t, err)
			norm = append(norm, n)
		}
		assert.Less(t, norm[2], norm[1])
		assert.Less(t, norm[1], norm[0])
	})
}

func TestDisplayDate(t *testing.T) {
	d, err := DisplayDate("2024-03-05T00:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d)

	d, err = DisplayDate("2024-12-31T23:59:59.999Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", d)
}
