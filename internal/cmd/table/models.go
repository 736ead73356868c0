// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/sync"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// ResultToTableData converts a pipeline result to per-entity rows.
func ResultToTableData(r *sync.Result, wide bool) Data {
	switch r.Mode {
	case sync.ModeCreate:
		return resolutionTable(r, wide)
	case sync.ModePatch:
		return diffTable(r, wide)
	default:
		return tombstoneTable(r)
	}
}

func resolutionTable(r *sync.Result, wide bool) Data {
	headers := []string{"Name", "Action", "ID"}
	if wide {
		headers = append(headers, "Namespace", "Types")
	}

	rows := make([][]string, 0, len(r.Resolution))
	for _, key := range r.Resolution.Keys() {
		e := r.Resolution[key]
		row := []string{e.DisplayName, string(e.Action), e.ID.String()}
		if wide {
			row = append(row, orDash(e.Namespace.String()), FormatIDs(e.TypeIDs))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

func diffTable(r *sync.Result, wide bool) Data {
	headers := []string{"Entity", "ID", "Status", "Values", "Relations +", "Relations -"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Changed")
		align = append(align, AlignLeft)
	}

	rows := make([][]string, 0, len(r.Diffs))
	for _, d := range r.Diffs {
		changed := d.Changed()
		var added, removed int
		for _, rd := range d.Relations {
			added += len(rd.ToAdd)
			removed += len(rd.ToRemove)
		}
		values := len(changed)
		if d.DescriptionChanged() {
			values++
		}
		row := []string{
			d.Name,
			d.EntityID.String(),
			string(d.Status),
			strconv.Itoa(values),
			strconv.Itoa(added),
			strconv.Itoa(removed),
		}
		if wide {
			names := make([]string, 0, len(changed)+len(d.Relations))
			for _, pd := range changed {
				names = append(names, pd.Property)
			}
			if d.DescriptionChanged() {
				names = append(names, d.Description.Property)
			}
			for _, rd := range d.Relations {
				if rd.HasChanges() {
					names = append(names, rd.Property)
				}
			}
			row = append(row, orDash(strings.Join(names, ", ")))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

func tombstoneTable(r *sync.Result) Data {
	headers := []string{"Entity", "ID", "Relations", "Properties"}
	var rows [][]string
	if r.Tombstone != nil {
		for _, e := range r.Tombstone.Entries {
			rows = append(rows, []string{
				orDash(e.Name),
				e.EntityID.String(),
				strconv.Itoa(len(e.Relations)),
				strconv.Itoa(len(e.Properties)),
			})
		}
	}
	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight},
	}
}

// SummaryToTableData converts a result's counters to a key/value table.
func SummaryToTableData(r *sync.Result) Data {
	caser := cases.Title(language.English)
	rows := [][]string{
		{"Mode", caser.String(string(r.Mode))},
		{"Namespace", r.Namespace.String()},
		{"Dry Run", strconv.FormatBool(r.DryRun)},
	}
	add := func(key string, n int) {
		rows = append(rows, []string{caser.String(strings.ReplaceAll(key, "_", " ")), strconv.Itoa(n)})
	}

	switch r.Mode {
	case sync.ModeCreate:
		add("created", r.Created)
		add("linked", r.Linked)
	case sync.ModePatch:
		add("updated", r.Updated)
		add("skipped", r.Skipped)
	case sync.ModeTombstone:
		add("tombstoned", r.Tombstoned)
	}
	add("values_set", r.ValuesSet)
	add("values_unset", r.ValuesUnset)
	add("relations_added", r.RelationsAdded)
	add("relations_removed", r.RelationsRemoved)
	if r.Batch != nil {
		add("ops", r.Batch.Len())
	}
	if r.Receipt != nil && r.Receipt.Location != "" {
		rows = append(rows, []string{"Location", r.Receipt.Location})
	}

	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// FormatIDs joins identifiers for a single cell.
func FormatIDs(ids []graph.ID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
