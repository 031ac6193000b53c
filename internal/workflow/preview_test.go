package workflow

import (
	"testing"

	"maskctl/internal/maskedemail"
)

func TestNewPreviewOrdering(t *testing.T) {
	records := []maskedemail.Record{
		{ID: "1", Email: "a@x.com", Description: "d", URL: maskedemail.String("https://a")},
		{ID: "2", Email: "b@x.com"},
	}
	changes := maskedemail.Changeset{
		"2": {"description": maskedemail.String("two")},
		"1": {
			"zeta":        maskedemail.String("z"),
			"url":         nil,
			"description": maskedemail.String("D"),
		},
	}

	preview := NewPreview(records, changes)
	var got []string
	for _, c := range preview.Changes {
		got = append(got, c.RecordID+"."+c.Field)
	}
	want := []string{"1.description", "1.url", "1.zeta", "2.description"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if preview.Records() != 2 {
		t.Fatalf("expected 2 records, got %d", preview.Records())
	}
	if maskedemail.Deref(preview.Changes[1].Old) != "https://a" || preview.Changes[1].New != nil {
		t.Fatalf("unexpected url change %+v", preview.Changes[1])
	}
	if preview.Changes[2].Old != nil {
		t.Fatalf("unknown field should have no old value, got %q", *preview.Changes[2].Old)
	}
}

func TestHistoryChangesWithoutResult(t *testing.T) {
	preview := Preview{Changes: []FieldChange{{RecordID: "1", Field: "description"}}}
	rows := preview.HistoryChanges(nil)
	if len(rows) != 1 || rows[0].Outcome != "" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}
