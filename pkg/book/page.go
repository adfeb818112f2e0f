// Package book renders archived posts into pages and assembles them into an epub.
package book

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/umputun/postbook/pkg/domain"
)

// Page is one rendered post, ready to become an epub section
type Page struct {
	ItemID   int64
	Title    string // chapter title shown in the table of contents
	Filename string // internal file name inside the container
	Body     string // xhtml fragment
}

var pageTmpl = template.Must(template.New("page").Parse(`<article>
  <h1><a href="{{.URL}}">{{.Title}}</a></h1>
  {{- if .Subtitle}}
  <h2>{{.Subtitle}}</h2>
  {{- end}}
  <p>{{.Authors}} | {{.Date}}</p>
  <hr/>
  <div>{{.Body}}</div>
</article>
`))

// RenderPage turns a complete item into a page. The body is embedded verbatim.
func RenderPage(item domain.Item) (Page, error) {
	date, err := domain.DisplayDate(item.Published)
	if err != nil {
		return Page{}, fmt.Errorf("render item %d: %w", item.ID, err)
	}

	body := ""
	if item.Body != nil {
		body = *item.Body
	}

	data := struct {
		URL      string
		Title    string
		Subtitle string
		Authors  string
		Date     string
		Body     template.HTML
	}{
		URL:      item.CanonicalURL,
		Title:    item.Title,
		Subtitle: item.Subtitle,
		Authors:  item.Authors,
		Date:     date,
		Body:     template.HTML(body), //nolint:gosec // stored post html is embedded as is
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return Page{}, fmt.Errorf("render item %d: %w", item.ID, err)
	}

	return Page{
		ItemID:   item.ID,
		Title:    fmt.Sprintf("%s: %s", date, item.Title),
		Filename: fmt.Sprintf("post-%d.xhtml", item.ID),
		Body:     buf.String(),
	}, nil
}

// Title builds the book title "{name}: {earliest}–{latest}" from two source timestamps
func Title(name, earliest, latest string) (string, error) {
	from, err := domain.DisplayDate(earliest)
	if err != nil {
		return "", fmt.Errorf("earliest date: %w", err)
	}
	to, err := domain.DisplayDate(latest)
	if err != nil {
		return "", fmt.Errorf("latest date: %w", err)
	}
	return fmt.Sprintf("%s: %s–%s", name, from, to), nil
}

// fileName makes a title usable as a file name
func fileName(title string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", "\x00", "")
	return r.Replace(title) + ".epub"
}
