// Package revision renders word-level diffs between a rejected draft and its
// repaired replacement, so an author can see what a repair pass changed.
package revision

import (
	"strings"

	"inkwell/pkg/schema"
	"inkwell/pkg/utils"
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

type Delta struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Diff is the rendered comparison of one repair pass.
type Diff struct {
	ID        string  `json:"id"`
	Chapter   int     `json:"chapter"`
	Attempt   int     `json:"attempt"`
	CreatedAt string  `json:"created_at"`
	Deltas    []Delta `json:"deltas"`
	Inserted  int     `json:"inserted"`
	Deleted   int     `json:"deleted"`
	Unchanged int     `json:"unchanged"`
}

// FromEntry diffs a stored revision entry.
func FromEntry(entry schema.RevisionEntry) Diff {
	d := Diff{
		ID:        entry.ID,
		Chapter:   entry.Chapter,
		Attempt:   entry.Attempt,
		CreatedAt: entry.CreatedAt,
	}
	for _, wd := range utils.DiffWords(entry.Draft, entry.Repaired) {
		delta := Delta{Text: wd.Text}
		switch wd.Op {
		case -1:
			delta.Op = Delete
			if strings.TrimSpace(wd.Text) != "" {
				d.Deleted++
			}
		case +1:
			delta.Op = Insert
			if strings.TrimSpace(wd.Text) != "" {
				d.Inserted++
			}
		default:
			delta.Op = Equal
			if strings.TrimSpace(wd.Text) != "" {
				d.Unchanged++
			}
		}
		d.Deltas = append(d.Deltas, delta)
	}
	return d
}

// ChangedRatio reports how much of the repaired text differs from the draft,
// by word count.
func (d Diff) ChangedRatio() float64 {
	total := d.Inserted + d.Deleted + d.Unchanged
	if total == 0 {
		return 0
	}
	return float64(d.Inserted+d.Deleted) / float64(total)
}
