package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"projecttracker/internal/model"
)

// Lister is the read side of the entity store.
type Lister interface {
	List(ctx context.Context, c model.Category) ([]model.Record, error)
}

// FileName is the download name used for a category export.
func FileName(c model.Category) string {
	return string(c) + "_data.csv"
}

// WriteCSV writes a header row of the category's field names followed by
// one row per record. Internal id and created_at columns are omitted.
func WriteCSV(w io.Writer, c model.Category, recs []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns(c)); err != nil {
		return fmt.Errorf("failed to write %s header: %w", c, err)
	}
	for _, r := range recs {
		if r.Category() != c {
			return fmt.Errorf("cannot write %s record into %s export", r.Category(), c)
		}
		fields := model.Fields(r)
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = f.Value
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write %s row: %w", c, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Category exports every stored record of c.
func Category(ctx context.Context, src Lister, c model.Category, w io.Writer) error {
	recs, err := src.List(ctx, c)
	if err != nil {
		return err
	}
	return WriteCSV(w, c, recs)
}

// ReportCategories are the sections of the full report, in order.
func ReportCategories() []model.Category {
	var out []model.Category
	for _, c := range model.Categories() {
		if c != model.CategoryCredential {
			out = append(out, c)
		}
	}
	return out
}

// FullReport writes every section's CSV, separated by a blank line.
func FullReport(ctx context.Context, src Lister, w io.Writer) error {
	for i, c := range ReportCategories() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := Category(ctx, src, c, w); err != nil {
			return fmt.Errorf("failed to export %s: %w", c, err)
		}
	}
	return nil
}
