package hscode

import (
	"sort"
	"strings"
)

// Jurisdiction identifies a customs authority, e.g. "US" or "JP".
type Jurisdiction string

// Normalize returns the canonical (upper-case, trimmed) form used for table lookups.
func (j Jurisdiction) Normalize() Jurisdiction {
	return Jurisdiction(strings.ToUpper(strings.TrimSpace(string(j))))
}

// Entry describes one jurisdiction in a Table.
type Entry struct {
	ID     Jurisdiction `json:"id"`
	Label  string       `json:"label"`
	Length int          `json:"length"`
}

// Table maps jurisdictions to the number of digits their tariff codes carry.
// A Table is immutable once built and safe for concurrent use.
type Table struct {
	entries map[Jurisdiction]Entry
}

// DefaultEntries are the jurisdictions offered by the classification UI.
var DefaultEntries = []Entry{
	{ID: "US", Label: "United States (HTS)", Length: 10},
	{ID: "CA", Label: "Canada (HS)", Length: 10},
	{ID: "MX", Label: "Mexico (TIGIE)", Length: 8},
	{ID: "EU", Label: "European Union (TARIC)", Length: 10},
	{ID: "GB", Label: "United Kingdom (UK Tariff)", Length: 10},
	{ID: "CN", Label: "China (HS)", Length: 10},
	{ID: "JP", Label: "Japan (HS)", Length: 9},
	{ID: "IN", Label: "India (ITC-HS)", Length: 8},
	{ID: "AU", Label: "Australia (HS)", Length: 8},
	{ID: "BR", Label: "Brazil (NCM)", Length: 8},
}

var defaultTable = NewTable(DefaultEntries...)

// DefaultTable returns the built-in jurisdiction table.
func DefaultTable() *Table {
	return defaultTable
}

// NewTable builds a Table from entries. IDs are normalized; entries with an
// empty ID or a non-positive length are ignored, later duplicates win.
func NewTable(entries ...Entry) *Table {
	t := &Table{entries: make(map[Jurisdiction]Entry, len(entries))}
	for _, e := range entries {
		id := e.ID.Normalize()
		if id == "" || e.Length <= 0 {
			continue
		}
		e.ID = id
		if e.Label == "" {
			e.Label = string(id)
		}
		t.entries[id] = e
	}
	return t
}

// WithLengths returns a copy of t with the given lengths applied on top.
// Unknown IDs are added with the ID as label.
func (t *Table) WithLengths(lengths map[string]int) *Table {
	entries := t.Entries()
	for id, n := range lengths {
		j := Jurisdiction(id).Normalize()
		replaced := false
		for i := range entries {
			if entries[i].ID == j {
				entries[i].Length = n
				replaced = true
			}
		}
		if !replaced {
			entries = append(entries, Entry{ID: j, Length: n})
		}
	}
	return NewTable(entries...)
}

// Length returns the expected digit count for j. The lookup is case-insensitive.
func (t *Table) Length(j Jurisdiction) (int, bool) {
	if t == nil {
		return 0, false
	}
	e, ok := t.entries[j.Normalize()]
	return e.Length, ok
}

// Lookup returns the full entry for j.
func (t *Table) Lookup(j Jurisdiction) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.entries[j.Normalize()]
	return e, ok
}

// Entries returns all entries sorted by ID.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// Len returns the number of jurisdictions in the table.
func (t *Table) Len() int {
	return len(t.entries)
}
