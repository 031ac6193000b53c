package maskedemail_test

import (
	"testing"

	"maskctl/internal/maskedemail"
)

func TestDiff(t *testing.T) {
	original := maskedemail.Record{
		ID:          "m1",
		Email:       "a@x.com",
		Description: "old",
		ForDomain:   "x.com",
	}

	cases := []struct {
		name   string
		edited maskedemail.FieldMap
		want   maskedemail.FieldMap
	}{
		{
			name:   "no changes",
			edited: maskedemail.FieldMap{"description": maskedemail.String("old"), "forDomain": maskedemail.String("x.com"), "url": nil},
			want:   maskedemail.FieldMap{},
		},
		{
			name:   "changed description only",
			edited: maskedemail.FieldMap{"description": maskedemail.String("new"), "forDomain": maskedemail.String("x.com")},
			want:   maskedemail.FieldMap{"description": maskedemail.String("new")},
		},
		{
			name:   "null versus empty string differs",
			edited: maskedemail.FieldMap{"url": maskedemail.String("")},
			want:   maskedemail.FieldMap{"url": maskedemail.String("")},
		},
		{
			name:   "unknown key always differs",
			edited: maskedemail.FieldMap{"color": maskedemail.String("blue")},
			want:   maskedemail.FieldMap{"color": maskedemail.String("blue")},
		},
		{
			name:   "values compared as opaque strings",
			edited: maskedemail.FieldMap{"forDomain": maskedemail.String("X.com")},
			want:   maskedemail.FieldMap{"forDomain": maskedemail.String("X.com")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := maskedemail.Diff(original, tc.edited)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d changed fields, got %#v", len(tc.want), got)
			}
			for key, want := range tc.want {
				value, ok := got[key]
				if !ok {
					t.Fatalf("expected key %q in diff", key)
				}
				if maskedemail.Deref(value) != maskedemail.Deref(want) || (value == nil) != (want == nil) {
					t.Fatalf("key %q: got %#v want %#v", key, value, want)
				}
			}
		})
	}
}

func TestDiffNullURLToValue(t *testing.T) {
	original := maskedemail.Record{ID: "m1", URL: maskedemail.String("https://x.com")}
	got := maskedemail.Diff(original, maskedemail.FieldMap{"url": nil})
	value, ok := got["url"]
	if !ok || value != nil {
		t.Fatalf("expected explicit null url in diff, got %#v", got)
	}
}

func TestChangesetIDsFollowRecordOrder(t *testing.T) {
	records := sampleRecords()
	changes := maskedemail.Changeset{
		"m3": {"description": maskedemail.String("c")},
		"m1": {"description": maskedemail.String("a")},
	}
	ids := changes.IDs(records)
	if len(ids) != 2 || ids[0] != "m1" || ids[1] != "m3" {
		t.Fatalf("unexpected id order: %v", ids)
	}
}
