package workflow

import (
	"slices"
	"sort"

	"maskctl/internal/history"
	"maskctl/internal/jmap"
	"maskctl/internal/maskedemail"
)

// FieldChange is one edited field with its stored and new values.
type FieldChange struct {
	RecordID string
	Email    string
	Field    string
	Old      *string
	New      *string
}

// Preview lists a changeset field by field in edit-file order.
type Preview struct {
	Changes []FieldChange
}

// NewPreview flattens changes against records. Records appear in their
// original order; within a record the editable fields come first, then any
// other keys alphabetically.
func NewPreview(records []maskedemail.Record, changes maskedemail.Changeset) Preview {
	var out []FieldChange
	for _, r := range records {
		fields, ok := changes[r.ID]
		if !ok {
			continue
		}
		for _, key := range orderedKeys(fields) {
			old, _ := r.Field(key)
			out = append(out, FieldChange{
				RecordID: r.ID,
				Email:    r.Email,
				Field:    key,
				Old:      old,
				New:      fields[key],
			})
		}
	}
	return Preview{Changes: out}
}

// Records returns the number of distinct records touched.
func (p Preview) Records() int {
	seen := make(map[string]struct{})
	for _, c := range p.Changes {
		seen[c.RecordID] = struct{}{}
	}
	return len(seen)
}

// HistoryChanges converts the preview into history rows, annotated with the
// per-record outcome when result is non-nil.
func (p Preview) HistoryChanges(result *jmap.SetResult) []history.Change {
	out := make([]history.Change, 0, len(p.Changes))
	for _, c := range p.Changes {
		out = append(out, history.Change{
			RecordID: c.RecordID,
			Email:    c.Email,
			Field:    c.Field,
			OldValue: c.Old,
			NewValue: c.New,
			Outcome:  outcomeFor(result, c.RecordID),
		})
	}
	return out
}

func outcomeFor(result *jmap.SetResult, id string) string {
	if result == nil {
		return ""
	}
	if _, ok := result.Updated[id]; ok {
		return "updated"
	}
	if setErr, ok := result.NotUpdated[id]; ok {
		return "not_updated: " + setErr.Type
	}
	return "unknown"
}

func orderedKeys(fields maskedemail.FieldMap) []string {
	keys := make([]string, 0, len(fields))
	for _, key := range maskedemail.EditableFields {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
		}
	}
	var extra []string
	for key := range fields {
		if !slices.Contains(maskedemail.EditableFields, key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
