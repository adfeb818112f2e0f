// Package pipeline runs one archive sync: discover posts, persist metadata, backfill bodies and
// assemble the book. Phases run strictly one after another on a single goroutine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/postbook/pkg/book"
	"github.com/umputun/postbook/pkg/domain"
)

//go:generate moq -out mocks/feed_reader.go -pkg mocks -skip-ensure -fmt goimports . FeedReader
//go:generate moq -out mocks/body_fetcher.go -pkg mocks -skip-ensure -fmt goimports . BodyFetcher
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/assembler.go -pkg mocks -skip-ensure -fmt goimports . Assembler

// FeedReader discovers all posts of the newsletter
type FeedReader interface {
	Discover(ctx context.Context, pageSize int) ([]domain.Item, error)
}

// BodyFetcher retrieves the body of one post
type BodyFetcher interface {
	FetchBody(ctx context.Context, slug string) (string, error)
}

// Store is the durable archive
type Store interface {
	UpsertMetadata(ctx context.Context, items []domain.Item) (int, error)
	FindIncomplete(ctx context.Context) ([]int64, error)
	GetItem(ctx context.Context, id int64) (domain.Item, error)
	SetBody(ctx context.Context, id int64, body string) error
	CompleteItems(ctx context.Context) ([]domain.Item, error)
	Earliest(ctx context.Context) (string, error)
	Latest(ctx context.Context) (string, error)
}

// Document is an assembled book ready to be written
type Document interface {
	Write(dir string) (path string, size int64, err error)
}

// Assembler composes rendered pages into a document
type Assembler interface {
	Assemble(meta book.Meta, pages []book.Page) (Document, error)
}

// Phase names a pipeline stage
type Phase string

// pipeline phases in execution order
const (
	PhaseDiscover Phase = "discover"
	PhasePersist  Phase = "persist"
	PhaseBackfill Phase = "backfill"
	PhaseAssemble Phase = "assemble"
)

// PhaseError reports the phase that aborted a run
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Config holds pipeline configuration
type Config struct {
	Reader    FeedReader
	Fetcher   BodyFetcher
	Store     Store
	Assembler Assembler

	Name      string // book name, the date span is appended
	Author    string
	Publisher string
	Lang      string
	OutputDir string
	PageSize  int
	Delay     DelayFunc // pause after each stored body, no pause if nil
}

// Options change what a single run does
type Options struct {
	SkipSync bool // assemble from the archive as is, no network access
}

// Pipeline sequences discovery, persistence, backfill and assembly
type Pipeline struct {
	reader    FeedReader
	fetcher   BodyFetcher
	store     Store
	assembler Assembler

	name      string
	author    string
	publisher string
	lang      string
	outputDir string
	pageSize  int
	delay     DelayFunc
}

// New creates a pipeline with the provided collaborators and settings
func New(cfg Config) *Pipeline {
	delay := cfg.Delay
	if delay == nil {
		delay = NoDelay
	}
	return &Pipeline{
		reader:    cfg.Reader,
		fetcher:   cfg.Fetcher,
		store:     cfg.Store,
		assembler: cfg.Assembler,
		name:      cfg.Name,
		author:    cfg.Author,
		publisher: cfg.Publisher,
		lang:      cfg.Lang,
		outputDir: cfg.OutputDir,
		pageSize:  cfg.PageSize,
		delay:     delay,
	}
}

// Run executes all phases. Discover, persist and assemble failures abort the run with a *PhaseError;
// failed body fetches are recorded in the report and the run goes on.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{StartedAt: time.Now()}

	if !opts.SkipSync {
		items, err := p.reader.Discover(ctx, p.pageSize)
		if err != nil {
			return report, &PhaseError{Phase: PhaseDiscover, Err: err}
		}
		report.Discovered = len(items)

		inserted, err := p.store.UpsertMetadata(ctx, items)
		if err != nil {
			return report, &PhaseError{Phase: PhasePersist, Err: err}
		}
		report.NewItems = inserted
		lgr.Printf("[INFO] found %d posts, %d new", len(items), inserted)

		if err := p.backfill(ctx, report); err != nil {
			return report, &PhaseError{Phase: PhaseBackfill, Err: err}
		}
	}

	if err := p.assemble(ctx, report); err != nil {
		return report, &PhaseError{Phase: PhaseAssemble, Err: err}
	}

	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

// backfill fetches bodies for every incomplete post. The work list comes from the store,
// so an interrupted run picks up exactly where the previous one stopped.
func (p *Pipeline) backfill(ctx context.Context, report *Report) error {
	ids, err := p.store.FindIncomplete(ctx)
	if err != nil {
		return err
	}
	lgr.Printf("[INFO] %d posts need content", len(ids))

	for i, id := range ids {
		item, err := p.store.GetItem(ctx, id)
		if err != nil {
			return err
		}

		body, err := p.fetcher.FetchBody(ctx, item.Slug)
		report.Results = append(report.Results, BackfillResult{ID: item.ID, Slug: item.Slug, Err: err})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lgr.Printf("[WARN] failed to get content for post %s (%s): %v", item, item.CanonicalURL, err)
			continue
		}

		if err := p.store.SetBody(ctx, id, body); err != nil {
			return err
		}
		lgr.Printf("[DEBUG] added content for post %s, %d/%d", item, i+1, len(ids))

		if err := sleep(ctx, p.delay()); err != nil {
			return err
		}
	}

	lgr.Printf("[INFO] backfilled %d of %d posts", report.Backfilled(), len(ids))
	return nil
}

// assemble renders every complete post, oldest first, and writes the book.
// Nothing is written unless every page rendered.
func (p *Pipeline) assemble(ctx context.Context, report *Report) error {
	earliest, err := p.store.Earliest(ctx)
	if err != nil {
		return err
	}
	latest, err := p.store.Latest(ctx)
	if err != nil {
		return err
	}
	title, err := book.Title(p.name, earliest, latest)
	if err != nil {
		return err
	}

	items, err := p.store.CompleteItems(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return domain.ErrEmptyArchive
	}

	pages := make([]book.Page, 0, len(items))
	for _, item := range items {
		page, err := book.RenderPage(item)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		lgr.Printf("[DEBUG] added post %q to book", page.Title)
	}

	doc, err := p.assembler.Assemble(book.Meta{Title: title, Author: p.author, Publisher: p.publisher, Lang: p.lang}, pages)
	if err != nil {
		return err
	}
	path, size, err := doc.Write(p.outputDir)
	if err != nil {
		return err
	}

	report.Title = title
	report.Pages = len(pages)
	report.Output = path
	report.OutputSize = size
	lgr.Printf("[INFO] created %s with %d posts, %s", path, len(pages), humanize.Bytes(uint64(size))) //nolint:gosec // size is never negative
	return nil
}

// epubAssembler adapts book.Assembler to the Assembler interface
type epubAssembler struct {
	assembler *book.Assembler
}

// NewEpubAssembler returns the epub-producing assembler
func NewEpubAssembler() Assembler {
	return &epubAssembler{assembler: book.NewAssembler()}
}

func (a *epubAssembler) Assemble(meta book.Meta, pages []book.Page) (Document, error) {
	doc, err := a.assembler.Assemble(meta, pages)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// IsEmptyArchive reports whether a run failed because there was nothing to assemble
func IsEmptyArchive(err error) bool {
	return errors.Is(err, domain.ErrEmptyArchive)
}
