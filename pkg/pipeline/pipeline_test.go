package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/postbook/pkg/book"
	"github.com/umputun/postbook/pkg/domain"
	"github.com/umputun/postbook/pkg/pipeline"
	"github.com/umputun/postbook/pkg/pipeline/mocks"
	"github.com/umputun/postbook/pkg/repository"
)

func newStore(t *testing.T) *repository.ItemRepository {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "archive.db") + "?mode=rwc&_txlock=immediate"
	repos, err := repository.NewRepositories(context.Background(), repository.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos.Item
}

func newItem(id int64, day int) domain.Item {
	return domain.Item{
		ID:           id,
		Slug:         fmt.Sprintf("post-%d", id),
		CanonicalURL: fmt.Sprintf("https://foo.substack.com/p/post-%d", id),
		Title:        fmt.Sprintf("Post %d", id),
		Authors:      "Jane",
		Published:    fmt.Sprintf("2024-01-%02dT10:00:00.000Z", day),
	}
}

func readerOf(items ...domain.Item) *mocks.FeedReaderMock {
	return &mocks.FeedReaderMock{
		DiscoverFunc: func(context.Context, int) ([]domain.Item, error) { return items, nil },
	}
}

// countingFetcher returns a body for every slug and counts calls per slug
type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (f *countingFetcher) fetch(_ context.Context, slug string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[slug]++
	if err, ok := f.fail[slug]; ok {
		return "", err
	}
	return "<p>body of " + slug + "</p>", nil
}

func (f *countingFetcher) mock() *mocks.BodyFetcherMock {
	return &mocks.BodyFetcherMock{FetchBodyFunc: f.fetch}
}

func newPipeline(reader pipeline.FeedReader, fetcher pipeline.BodyFetcher, store pipeline.Store,
	assembler pipeline.Assembler, outDir string) *pipeline.Pipeline {
	return pipeline.New(pipeline.Config{
		Reader:    reader,
		Fetcher:   fetcher,
		Store:     store,
		Assembler: assembler,
		Name:      "Foo",
		Author:    "Jane",
		Publisher: "https://foo.substack.com/",
		OutputDir: outDir,
		PageSize:  10,
	})
}

func epubFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var res []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".epub") {
			res = append(res, e.Name())
		}
	}
	return res
}

func TestPipeline_Run(t *testing.T) {
	store := newStore(t)
	outDir := t.TempDir()
	fetcher := &countingFetcher{}
	reader := readerOf(newItem(3, 3), newItem(1, 1), newItem(2, 2))

	p := newPipeline(reader, fetcher.mock(), store, pipeline.NewEpubAssembler(), outDir)
	report, err := p.Run(context.Background(), pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Discovered)
	assert.Equal(t, 3, report.NewItems)
	assert.Equal(t, 3, report.Backfilled())
	assert.Empty(t, report.Failed())
	assert.ElementsMatch(t, []pipeline.BackfillResult{
		{ID: 1, Slug: "post-1"}, {ID: 2, Slug: "post-2"}, {ID: 3, Slug: "post-3"},
	}, report.Results, "results hold ids only, bodies stay in the store")
	assert.Equal(t, 3, report.Pages)
	assert.Equal(t, "Foo: 2024-01-01–2024-01-03", report.Title)
	assert.Equal(t, filepath.Join(outDir, "Foo: 2024-01-01–2024-01-03.epub"), report.Output)
	assert.Positive(t, report.OutputSize)
	assert.Equal(t, []string{"Foo: 2024-01-01–2024-01-03.epub"}, epubFiles(t, outDir))

	require.Len(t, reader.DiscoverCalls(), 1)
	assert.Equal(t, 10, reader.DiscoverCalls()[0].PageSize)
	assert.Equal(t, map[string]int{"post-1": 1, "post-2": 1, "post-3": 1}, fetcher.calls)

	t.Run("second run fetches nothing", func(t *testing.T) {
		report, err := p.Run(context.Background(), pipeline.Options{})
		require.NoError(t, err)
		assert.Equal(t, 3, report.Discovered)
		assert.Equal(t, 0, report.NewItems)
		assert.Empty(t, report.Results)
		assert.Equal(t, map[string]int{"post-1": 1, "post-2": 1, "post-3": 1}, fetcher.calls)
		assert.Len(t, epubFiles(t, outDir), 1, "book is replaced, not duplicated")
	})
}

func TestPipeline_ResumesAfterInterruption(t *testing.T) {
	store := newStore(t)
	outDir := t.TempDir()
	items := []domain.Item{newItem(1, 1), newItem(2, 2), newItem(3, 3), newItem(4, 4), newItem(5, 5)}

	// first run dies while fetching the third body
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := &countingFetcher{}
	interrupting := &mocks.BodyFetcherMock{FetchBodyFunc: func(ctx context.Context, slug string) (string, error) {
		if slug == "post-3" {
			cancel()
			return "", fmt.Errorf("get %s: %w", slug, ctx.Err())
		}
		return fetcher.fetch(ctx, slug)
	}}

	p := newPipeline(readerOf(items...), interrupting, store, pipeline.NewEpubAssembler(), outDir)
	_, err := p.Run(ctx, pipeline.Options{})
	require.Error(t, err)
	var phaseErr *pipeline.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, pipeline.PhaseBackfill, phaseErr.Phase)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, epubFiles(t, outDir), "no book from an interrupted run")

	incomplete, err := store.FindIncomplete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 5}, incomplete)

	// fresh run picks up the remaining posts only
	p = newPipeline(readerOf(items...), fetcher.mock(), store, pipeline.NewEpubAssembler(), outDir)
	report, err := p.Run(context.Background(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.NewItems)
	assert.Equal(t, 3, report.Backfilled())
	assert.Equal(t, 5, report.Pages)
	assert.Equal(t, map[string]int{"post-1": 1, "post-2": 1, "post-3": 1, "post-4": 1, "post-5": 1}, fetcher.calls)
}

func TestPipeline_BackfillFailureIsolated(t *testing.T) {
	store := newStore(t)
	outDir := t.TempDir()
	fetcher := &countingFetcher{fail: map[string]error{"post-3": fmt.Errorf("status 500: %w", domain.ErrTransport)}}

	var delays int
	p := pipeline.New(pipeline.Config{
		Reader:    readerOf(newItem(1, 1), newItem(2, 2), newItem(3, 3)),
		Fetcher:   fetcher.mock(),
		Store:     store,
		Assembler: pipeline.NewEpubAssembler(),
		Name:      "Foo",
		OutputDir: outDir,
		Delay:     func() time.Duration { delays++; return 0 },
	})
	report, err := p.Run(context.Background(), pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Backfilled())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(3), failed[0].ID)
	assert.Equal(t, "post-3", failed[0].Slug)
	require.ErrorIs(t, failed[0].Err, domain.ErrTransport)
	assert.Equal(t, 2, delays, "pause only after stored bodies")

	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, "Foo: 2024-01-01–2024-01-02", report.Title, "date span covers complete posts only")

	incomplete, err := store.FindIncomplete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, incomplete)

	t.Run("failed post retried on next run", func(t *testing.T) {
		fetcher.fail = nil
		report, err := p.Run(context.Background(), pipeline.Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Backfilled())
		assert.Equal(t, 3, report.Pages)
		assert.Equal(t, "Foo: 2024-01-01–2024-01-03", report.Title)
		assert.Equal(t, 2, fetcher.calls["post-3"])
		assert.Equal(t, 1, fetcher.calls["post-1"])
	})
}

func TestPipeline_PagesOrderedByPublished(t *testing.T) {
	store := newStore(t)
	var doc fakeDocument
	assembler := &mocks.AssemblerMock{AssembleFunc: func(book.Meta, []book.Page) (pipeline.Document, error) {
		return &doc, nil
	}}
	fetcher := &countingFetcher{}

	p := newPipeline(readerOf(newItem(10, 3), newItem(20, 1), newItem(30, 2)), fetcher.mock(), store, assembler, "out")
	report, err := p.Run(context.Background(), pipeline.Options{})
	require.NoError(t, err)

	require.Len(t, assembler.AssembleCalls(), 1)
	call := assembler.AssembleCalls()[0]
	assert.Equal(t, book.Meta{Title: "Foo: 2024-01-01–2024-01-03", Author: "Jane", Publisher: "https://foo.substack.com/"}, call.Meta)

	titles := make([]string, 0, len(call.Pages))
	for _, page := range call.Pages {
		titles = append(titles, page.Title)
	}
	assert.Equal(t, []string{"2024-01-01: Post 20", "2024-01-02: Post 30", "2024-01-03: Post 10"}, titles)
	assert.Contains(t, call.Pages[0].Body, "<p>body of post-20</p>")

	assert.Equal(t, []string{"out"}, doc.dirs)
	assert.Equal(t, "out/book.epub", report.Output)
	assert.Equal(t, int64(42), report.OutputSize)
}

func TestPipeline_SkipSync(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_, err := store.UpsertMetadata(ctx, []domain.Item{newItem(1, 1), newItem(2, 2)})
	require.NoError(t, err)
	require.NoError(t, store.SetBody(ctx, 1, "<p>one</p>"))

	reader := &mocks.FeedReaderMock{}
	fetcher := &mocks.BodyFetcherMock{}
	outDir := t.TempDir()

	report, err := newPipeline(reader, fetcher, store, pipeline.NewEpubAssembler(), outDir).Run(ctx, pipeline.Options{SkipSync: true})
	require.NoError(t, err)
	assert.Empty(t, reader.DiscoverCalls())
	assert.Empty(t, fetcher.FetchBodyCalls())
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, "Foo: 2024-01-01–2024-01-01", report.Title)
	assert.Len(t, epubFiles(t, outDir), 1)
}

func TestPipeline_FatalPhases(t *testing.T) {
	ctx := context.Background()

	t.Run("discover failure persists nothing", func(t *testing.T) {
		reader := &mocks.FeedReaderMock{DiscoverFunc: func(context.Context, int) ([]domain.Item, error) {
			return nil, fmt.Errorf("page at offset 50: %w", domain.ErrTransport)
		}}
		store := newStore(t)
		outDir := t.TempDir()

		_, err := newPipeline(reader, &mocks.BodyFetcherMock{}, store, &mocks.AssemblerMock{}, outDir).Run(ctx, pipeline.Options{})
		var phaseErr *pipeline.PhaseError
		require.ErrorAs(t, err, &phaseErr)
		assert.Equal(t, pipeline.PhaseDiscover, phaseErr.Phase)
		require.ErrorIs(t, err, domain.ErrTransport)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
		assert.Empty(t, epubFiles(t, outDir))
	})

	t.Run("persist failure stops before backfill", func(t *testing.T) {
		store := &mocks.StoreMock{UpsertMetadataFunc: func(context.Context, []domain.Item) (int, error) {
			return 0, errors.New("disk full")
		}}
		fetcher := &mocks.BodyFetcherMock{}

		_, err := newPipeline(readerOf(newItem(1, 1)), fetcher, store, &mocks.AssemblerMock{}, t.TempDir()).Run(ctx, pipeline.Options{})
		var phaseErr *pipeline.PhaseError
		require.ErrorAs(t, err, &phaseErr)
		assert.Equal(t, pipeline.PhasePersist, phaseErr.Phase)
		assert.EqualError(t, err, "persist: disk full")
		assert.Empty(t, fetcher.FetchBodyCalls())
		assert.Empty(t, store.FindIncompleteCalls())
	})

	t.Run("store write failure during backfill", func(t *testing.T) {
		store := &mocks.StoreMock{
			UpsertMetadataFunc: func(context.Context, []domain.Item) (int, error) { return 1, nil },
			FindIncompleteFunc: func(context.Context) ([]int64, error) { return []int64{1, 2}, nil },
			GetItemFunc: func(_ context.Context, id int64) (domain.Item, error) {
				return newItem(id, int(id)), nil
			},
			SetBodyFunc: func(context.Context, int64, string) error { return errors.New("readonly database") },
		}
		fetcher := &countingFetcher{}

		_, err := newPipeline(readerOf(newItem(1, 1)), fetcher.mock(), store, &mocks.AssemblerMock{}, t.TempDir()).Run(ctx, pipeline.Options{})
		var phaseErr *pipeline.PhaseError
		require.ErrorAs(t, err, &phaseErr)
		assert.Equal(t, pipeline.PhaseBackfill, phaseErr.Phase)
		assert.Len(t, store.SetBodyCalls(), 1)
		assert.Equal(t, map[string]int{"post-1": 1}, fetcher.calls)
	})

	t.Run("empty archive writes no book", func(t *testing.T) {
		outDir := filepath.Join(t.TempDir(), "out")
		_, err := newPipeline(readerOf(), &mocks.BodyFetcherMock{}, newStore(t), pipeline.NewEpubAssembler(), outDir).Run(ctx, pipeline.Options{})
		var phaseErr *pipeline.PhaseError
		require.ErrorAs(t, err, &phaseErr)
		assert.Equal(t, pipeline.PhaseAssemble, phaseErr.Phase)
		assert.True(t, pipeline.IsEmptyArchive(err))
		assert.Empty(t, epubFiles(t, outDir))
	})

	t.Run("all bodies failed", func(t *testing.T) {
		outDir := t.TempDir()
		fetcher := &countingFetcher{fail: map[string]error{"post-1": domain.ErrTransport}}
		report, err := newPipeline(readerOf(newItem(1, 1)), fetcher.mock(), newStore(t), pipeline.NewEpubAssembler(), outDir).
			Run(ctx, pipeline.Options{})
		require.Error(t, err)
		assert.True(t, pipeline.IsEmptyArchive(err))
		assert.Len(t, report.Failed(), 1)
		assert.Empty(t, epubFiles(t, outDir))
	})

	t.Run("malformed timestamp writes no book", func(t *testing.T) {
		store := newStore(t)
		bad := newItem(1, 1)
		bad.Published = "last tuesday"
		_, err := store.UpsertMetadata(ctx, []domain.Item{bad})
		require.NoError(t, err)
		require.NoError(t, store.SetBody(ctx, 1, "x"))
		outDir := t.TempDir()

		_, err = newPipeline(&mocks.FeedReaderMock{}, &mocks.BodyFetcherMock{}, store, pipeline.NewEpubAssembler(), outDir).
			Run(ctx, pipeline.Options{SkipSync: true})
		require.ErrorIs(t, err, domain.ErrMalformedTimestamp)
		assert.Empty(t, epubFiles(t, outDir))
	})

	t.Run("assembler failure", func(t *testing.T) {
		store := newStore(t)
		assembler := &mocks.AssemblerMock{AssembleFunc: func(book.Meta, []book.Page) (pipeline.Document, error) {
			return nil, errors.New("no space")
		}}
		fetcher := &countingFetcher{}
		_, err := newPipeline(readerOf(newItem(1, 1)), fetcher.mock(), store, assembler, t.TempDir()).Run(ctx, pipeline.Options{})
		assert.EqualError(t, err, "assemble: no space")
	})
}

func TestPipeline_CancelDuringDelay(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	fetcher := &countingFetcher{}

	p := pipeline.New(pipeline.Config{
		Reader:    readerOf(newItem(1, 1), newItem(2, 2)),
		Fetcher:   fetcher.mock(),
		Store:     store,
		Assembler: pipeline.NewEpubAssembler(),
		Name:      "Foo",
		OutputDir: t.TempDir(),
		Delay:     func() time.Duration { return time.Hour },
	})

	start := time.Now()
	report, err := p.Run(ctx, pipeline.Options{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, report.Backfilled())

	incomplete, err := store.FindIncomplete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, incomplete, "body stored before the pause survives")
}

type fakeDocument struct {
	dirs []string
}

func (d *fakeDocument) Write(dir string) (path string, size int64, err error) {
	d.dirs = append(d.dirs, dir)
	return dir + "/book.epub", 42, nil
}
