// Package report collects the disagreements a scan or repair ran into and
// writes them as a plain-text mismatch report next to the scanned tree.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Action names what the pipeline did about a mismatch.
type Action string

const (
	ActionNone Action = ""
	// ActionRescueRename: the file's bytes contradicted its extension and it
	// was renamed.
	ActionRescueRename Action = "rescue-rename"
	// ActionWorkSplit: the Book got a Work of its own instead of joining a
	// candidate with a partly different author set.
	ActionWorkSplit Action = "work-split"
	// ActionDuplicateCopy: the canonical name was taken and the file was kept
	// with the -KOPIE suffix.
	ActionDuplicateCopy Action = "duplicate-copy"
	// ActionRemoved: the entry was dropped from the store.
	ActionRemoved Action = "removed"
	// ActionMarkedMissing: the file is gone and the Book was kept with a
	// placeholder path.
	ActionMarkedMissing Action = "marked-missing"
)

// Mismatch is one field on which two sources disagreed.
type Mismatch struct {
	Field string `json:"field"`
	// Values maps a source name to the value it reported.
	Values []SourceValue `json:"values"`
}

// String renders the values as `source "value" / source "value"`.
func (m Mismatch) String() string {
	var b strings.Builder
	for i, v := range m.Values {
		if i > 0 {
			b.WriteString(" / ")
		}
		fmt.Fprintf(&b, "%s %q", v.Source, v.Value)
	}
	return b.String()
}

type SourceValue struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

type Entry struct {
	BookID     int        `json:"book_id"`
	Path       string     `json:"path"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
	Action     Action     `json:"action,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// Report is safe for concurrent use.
type Report struct {
	RunID string

	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

func New(runID string) *Report {
	return &Report{RunID: runID, now: time.Now}
}

func (r *Report) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// AddMismatch records that two sources disagreed on field.
func (r *Report) AddMismatch(bookID int, path, field string, values ...SourceValue) {
	r.Add(Entry{
		BookID:     bookID,
		Path:       path,
		Mismatches: []Mismatch{{Field: field, Values: values}},
	})
}

// AddAction records an action the pipeline took on path.
func (r *Report) AddAction(bookID int, path string, action Action, note string) {
	r.Add(Entry{BookID: bookID, Path: path, Action: action, Note: note})
}

func (r *Report) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.entries...)
}

func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// WriteTo renders every entry as a block of lines followed by a blank line.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	entries := r.Entries()
	bw := bufio.NewWriter(w)
	var n int64
	write := func(format string, args ...interface{}) {
		c, _ := fmt.Fprintf(bw, format, args...)
		n += int64(c)
	}

	write("# run %s at %s, %d entries\n\n", r.RunID, r.now().Format(time.RFC3339), len(entries))
	for _, e := range entries {
		id := "new"
		if e.BookID != 0 {
			id = strconv.Itoa(e.BookID)
		}
		write("book %s: %s\n", id, e.Path)
		for _, m := range e.Mismatches {
			write("  %s: %s\n", m.Field, m)
		}
		if e.Action != ActionNone {
			write("  action: %s\n", e.Action)
		}
		if e.Note != "" {
			write("  note: %s\n", e.Note)
		}
		write("\n")
	}

	return n, errors.WithStack(bw.Flush())
}

// AppendToFile appends the report to the file at path. Nothing is written
// for an empty report.
func (r *Report) AppendToFile(path string) error {
	if r.Len() == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}
