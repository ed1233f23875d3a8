// Package dataset owns the on-disk layout of the per-day raw and
// cleaned datasets: CSV encoding, dedup-merge, and atomic writes.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/carclinic/pipeline/models"
)

// Raw dataset column names. ColTopComments is always the last column.
const (
	ColID           = "id"
	ColTitle        = "title"
	ColSelfText     = "selftext"
	ColScore        = "score"
	ColCreatedUTC   = "created_utc"
	ColCreatedHuman = "created_datetime_utc"
	ColNumComments  = "num_comments"
	ColSubreddit    = "subreddit"
	ColScrapedUTC   = "scraping_time_utc"
	ColScrapedHuman = "scraping_datetime_utc"
	ColTopComments  = "top_comments"
)

var rawColumns = []string{
	ColID, ColTitle, ColSelfText, ColScore,
	ColCreatedUTC, ColCreatedHuman, ColNumComments, ColSubreddit,
	ColScrapedUTC, ColScrapedHuman, ColTopComments,
}

const humanTimeLayout = "2006-01-02 15:04:05"

// FormatReplies renders a thread's replies into the canonical blob:
// "{author} (Score: {score}): {body}" entries separated by a blank
// line, in retained order.
func FormatReplies(replies []models.Reply) string {
	parts := make([]string, 0, len(replies))
	for _, r := range replies {
		parts = append(parts, fmt.Sprintf("%s (Score: %d): %s", r.Author, r.Score, r.Body))
	}
	return strings.Join(parts, "\n\n")
}

// EncodeBatch flattens a collected batch into a raw-dataset table,
// stamping every row with the collection time.
func EncodeBatch(batch []models.Thread, collectedAt time.Time) *Table {
	collected := collectedAt.UTC()
	table := &Table{Header: append([]string(nil), rawColumns...)}
	for _, th := range batch {
		table.Rows = append(table.Rows, []string{
			th.ID,
			th.Title,
			th.Body,
			strconv.Itoa(th.Score),
			strconv.FormatInt(th.CreatedUTC, 10),
			time.Unix(th.CreatedUTC, 0).UTC().Format(humanTimeLayout),
			strconv.Itoa(th.NumComments),
			th.Community,
			strconv.FormatInt(collected.Unix(), 10),
			collected.Format(humanTimeLayout),
			FormatReplies(th.Replies),
		})
	}
	return table
}

// MergeAndSave merges a freshly collected batch into the day's raw
// dataset and writes it back atomically. Returns the resulting row
// count.
//
// Merge semantics: the existing file's column order wins, new columns
// are appended before the replies blob, the blob column stays last, and
// duplicate thread IDs are resolved last-write-wins (new batch beats
// same-day rows).
func MergeAndSave(batch []models.Thread, path string) (int, error) {
	fresh := EncodeBatch(batch, time.Now())

	existing, err := ReadTable(path)
	switch {
	case err == nil:
		// merge below
	case errors.Is(err, os.ErrNotExist):
		existing = nil
	default:
		return 0, err
	}

	merged := fresh
	if existing != nil && len(existing.Header) > 0 {
		header := reconcileColumns(existing.Header, fresh.Header)
		merged = &Table{Header: header}
		merged.Rows = append(merged.Rows, existing.Project(header).Rows...)
		merged.Rows = append(merged.Rows, fresh.Project(header).Rows...)
	}
	merged = dedupByID(merged)

	if err := WriteTable(merged, path); err != nil {
		return 0, err
	}
	return len(merged.Rows), nil
}

// reconcileColumns merges two header sets: existing order is kept, new
// columns slot in before the replies blob, and the blob goes last.
func reconcileColumns(existing, fresh []string) []string {
	seen := make(map[string]bool, len(existing))
	var header []string
	for _, h := range existing {
		if h == ColTopComments {
			continue
		}
		header = append(header, h)
		seen[h] = true
	}
	for _, h := range fresh {
		if h == ColTopComments || seen[h] {
			continue
		}
		header = append(header, h)
		seen[h] = true
	}
	return append(header, ColTopComments)
}

// dedupByID keeps the later-appearing row for each thread ID, in first-
// appearance order.
func dedupByID(t *Table) *Table {
	idCol := t.Col(ColID)
	if idCol < 0 {
		return t
	}

	latest := make(map[string][]string, len(t.Rows))
	var order []string
	for _, row := range t.Rows {
		id := row[idCol]
		if _, ok := latest[id]; !ok {
			order = append(order, id)
		}
		latest[id] = row
	}

	out := &Table{Header: t.Header}
	for _, id := range order {
		out.Rows = append(out.Rows, latest[id])
	}
	return out
}

// RawRow is the slice of a raw dataset row the cleaner consumes.
type RawRow struct {
	Index       int
	ID          string
	Title       string
	Body        string
	TopComments string
}

// LoadRaw reads the day's raw dataset into cleaner-facing rows. Row
// indices refer to positions in the file, which the failure log
// references.
func LoadRaw(path string) ([]RawRow, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	rows := make([]RawRow, 0, len(table.Rows))
	for i := range table.Rows {
		rows = append(rows, RawRow{
			Index:       i,
			ID:          table.Cell(i, ColID),
			Title:       table.Cell(i, ColTitle),
			Body:        table.Cell(i, ColSelfText),
			TopComments: table.Cell(i, ColTopComments),
		})
	}
	return rows, nil
}
