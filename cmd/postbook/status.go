package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/umputun/postbook/pkg/config"
	"github.com/umputun/postbook/pkg/domain"
	"github.com/umputun/postbook/pkg/repository"
)

// statsProvider reports archive counts
type statsProvider interface {
	Stats(ctx context.Context) (repository.Stats, error)
}

// printStatus writes a table describing the archive and the book it would produce
func printStatus(ctx context.Context, w io.Writer, cfg *config.Config, store statsProvider) error {
	st, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get archive status: %w", err)
	}

	span := "-"
	if st.Complete > 0 {
		first, err := domain.DisplayDate(st.Earliest)
		if err != nil {
			return err
		}
		last, err := domain.DisplayDate(st.Latest)
		if err != nil {
			return err
		}
		span = first + " – " + last
	}

	rows := [][]string{
		{"newsletter", cfg.Book.Name},
		{"source", cfg.Source.BaseURL},
		{"archive", cfg.Database.DSN},
		{"posts", humanize.Comma(int64(st.Total))},
		{"with content", humanize.Comma(int64(st.Complete))},
		{"waiting for content", humanize.Comma(int64(st.Incomplete()))},
		{"published", span},
	}
	_, err = fmt.Fprintln(w, renderTable(rows, []columnAlignment{alignLeft, alignRight}))
	return err
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws rows as a header-less table, one alignment per column
func renderTable(rows [][]string, aligns []columnAlignment) string {
	columns := len(aligns)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{Number: i + 1, Align: align})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
