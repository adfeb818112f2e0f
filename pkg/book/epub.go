package book

import (
	"fmt"
	"os"
	"path/filepath"

	epub "github.com/go-shiori/go-epub"
	"github.com/google/uuid"

	"github.com/umputun/postbook/pkg/domain"
)

// Meta describes the book being assembled
type Meta struct {
	Title     string
	Author    string
	Publisher string // newsletter url, also the seed of the book identifier
	Lang      string
}

// Assembler composes rendered pages into an epub container
type Assembler struct{}

// NewAssembler creates a new epub assembler
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Document is an assembled book that has not been written yet
type Document struct {
	Title    string
	Sections []string // page file names in spine order
	book     *epub.Epub
}

// Assemble adds pages to a new book in the given order, which becomes the spine and toc order
func (a *Assembler) Assemble(meta Meta, pages []Page) (*Document, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("assemble %q: %w", meta.Title, domain.ErrEmptyArchive)
	}

	book, err := epub.NewEpub(meta.Title)
	if err != nil {
		return nil, fmt.Errorf("create epub: %w", err)
	}
	book.SetAuthor(meta.Author)
	if meta.Publisher != "" {
		book.SetDescription("Published by " + meta.Publisher)
		book.SetIdentifier("urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(meta.Publisher)).String())
	}
	lang := meta.Lang
	if lang == "" {
		lang = "en"
	}
	book.SetLang(lang)

	doc := &Document{Title: meta.Title, book: book, Sections: make([]string, 0, len(pages))}
	for _, p := range pages {
		name, err := book.AddSection(p.Body, p.Title, p.Filename, "")
		if err != nil {
			return nil, fmt.Errorf("add page for item %d: %w", p.ItemID, err)
		}
		doc.Sections = append(doc.Sections, name)
	}
	return doc, nil
}

// Write stores the book as "{title}.epub" in dir. The file appears only once it is complete.
func (d *Document) Write(dir string) (path string, size int64, err error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}

	path = filepath.Join(dir, fileName(d.Title))
	tmp, err := os.CreateTemp(dir, ".postbook-*.epub")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if err = d.book.Write(tmpName); err != nil {
		return "", 0, fmt.Errorf("write epub: %w", err)
	}

	fi, err := os.Stat(tmpName)
	if err != nil {
		return "", 0, fmt.Errorf("stat epub: %w", err)
	}

	// CreateTemp makes the file 0600, the book gets regular file permissions
	if err = os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // not a secret
		return "", 0, fmt.Errorf("chmod epub: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return "", 0, fmt.Errorf("move epub into place: %w", err)
	}
	return path, fi.Size(), nil
}
