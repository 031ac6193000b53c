package maskedemail_test

import (
	"errors"
	"strings"
	"testing"

	"maskctl/internal/maskedemail"
	"maskctl/internal/services"
)

func sampleRecords() []maskedemail.Record {
	return []maskedemail.Record{
		{ID: "m1", Email: "a@x.com", Description: "old", ForDomain: "x.com"},
		{ID: "m2", Email: "b@y.com", Description: "Newsletter", ForDomain: "y.com", URL: maskedemail.String("https://y.com/signup")},
		{ID: "m3", Email: "c@z.com", Description: "", ForDomain: ""},
	}
}

func TestParseRoundTripYieldsEmptyChangeset(t *testing.T) {
	records := sampleRecords()
	for _, numbered := range []bool{false, true} {
		text := maskedemail.SerializeWith(records, maskedemail.SerializeOptions{Numbered: numbered})
		changes, err := maskedemail.Parse(text, records)
		if err != nil {
			t.Fatalf("numbered=%v: Parse returned error: %v", numbered, err)
		}
		if len(changes) != 0 {
			t.Fatalf("numbered=%v: expected empty changeset, got %#v", numbered, changes)
		}
	}
}

func TestParseRoundTripEmptyInput(t *testing.T) {
	changes, err := maskedemail.Parse(maskedemail.Serialize(nil), nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected empty changeset, got %#v", changes)
	}
}

func TestParseSingleFieldChange(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", Description: "A", ForDomain: "x.com"}}
	text := strings.Replace(maskedemail.Serialize(records), "description: A", "description: B", 1)

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	fields, ok := changes["m1"]
	if !ok || len(changes) != 1 {
		t.Fatalf("expected only m1 in changeset, got %#v", changes)
	}
	if len(fields) != 1 {
		t.Fatalf("expected exactly one changed field, got %#v", fields)
	}
	if got := maskedemail.Deref(fields["description"]); got != "B" {
		t.Fatalf("expected description B, got %q", got)
	}
}

func TestParseScenarios(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", Description: "old", ForDomain: "x.com"}}
	base := maskedemail.Serialize(records)

	cases := []struct {
		name      string
		edit      func(string) string
		wantKey   string
		wantValue *string
	}{
		{
			name:      "description",
			edit:      func(s string) string { return strings.Replace(s, "description: old", "description: new", 1) },
			wantKey:   "description",
			wantValue: maskedemail.String("new"),
		},
		{
			name:      "url",
			edit:      func(s string) string { return strings.Replace(s, "url: ", "url: https://x.com", 1) },
			wantKey:   "url",
			wantValue: maskedemail.String("https://x.com"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			changes, err := maskedemail.Parse(tc.edit(base), records)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			fields := changes["m1"]
			if len(changes) != 1 || len(fields) != 1 {
				t.Fatalf("expected {m1: {%s}}, got %#v", tc.wantKey, changes)
			}
			got, ok := fields[tc.wantKey]
			if !ok || got == nil || *got != *tc.wantValue {
				t.Fatalf("expected %s=%q, got %#v", tc.wantKey, *tc.wantValue, fields)
			}
		})
	}
}

func TestParseNullURLRoundTrip(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", Description: "d", ForDomain: "x.com"}}
	text := maskedemail.Serialize(records)
	if !strings.Contains(text, "  url: \n") && !strings.HasSuffix(text, "  url: ") {
		t.Fatalf("expected empty url line, got %q", text)
	}

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected no diff for unedited null url, got %#v", changes)
	}
}

func TestParseClearingURLYieldsNull(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", URL: maskedemail.String("https://x.com")}}
	text := strings.Replace(maskedemail.Serialize(records), "url: https://x.com", "url:", 1)

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	value, ok := changes["m1"]["url"]
	if !ok {
		t.Fatalf("expected url change, got %#v", changes)
	}
	if value != nil {
		t.Fatalf("expected explicit null url, got %q", *value)
	}
}

func TestParseRoundTripPreservesEdgeValues(t *testing.T) {
	records := []maskedemail.Record{
		{ID: "m1", Email: "a@x.com", Description: "d", URL: maskedemail.String("")},
		{ID: "m2", Email: "b@x.com", Description: "  padded", ForDomain: "\tx.com"},
		{ID: "m3", Email: "c@x.com", Description: "trailing  "},
	}

	changes, err := maskedemail.Parse(maskedemail.Serialize(records), records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected empty changeset, got %#v", changes)
	}
}

func TestParseEmptyURLStringCanBeReplaced(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", URL: maskedemail.String("")}}
	text := strings.Replace(maskedemail.Serialize(records), "url: ", "url: https://x.com", 1)

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := maskedemail.Deref(changes["m1"]["url"]); got != "https://x.com" {
		t.Fatalf("expected url change, got %#v", changes)
	}
}

func TestParseHeaderWithTrailingSpaceStartsNewBlock(t *testing.T) {
	records := []maskedemail.Record{
		{ID: "1", Email: "one@x.com", Description: "one"},
		{ID: "2", Email: "two@x.com", Description: "two"},
	}
	text := "one@x.com (id: 1)\n  description: one\n\ntwo@x.com (id: 2) \n  description: second\n"

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := changes["1"]; ok {
		t.Fatalf("record 1 must not pick up fields of record 2: %#v", changes)
	}
	if got := maskedemail.Deref(changes["2"]["description"]); got != "second" {
		t.Fatalf("expected description change on record 2, got %#v", changes)
	}
}

func TestParseEmptyDescriptionStaysString(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", Description: "x"}}
	text := strings.Replace(maskedemail.Serialize(records), "description: x", "description:", 1)

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	value := changes["m1"]["description"]
	if value == nil || *value != "" {
		t.Fatalf("expected empty string description, got %#v", value)
	}
}

func TestParseReorderedBlocksFailsCorrelation(t *testing.T) {
	records := []maskedemail.Record{
		{ID: "1", Email: "one@x.com", Description: "one"},
		{ID: "2", Email: "two@x.com", Description: "two"},
	}
	reordered := maskedemail.Serialize([]maskedemail.Record{
		{ID: "2", Email: "two@x.com", Description: "two"},
		{ID: "1", Email: "one@x.com", Description: "edited"},
	})

	_, err := maskedemail.Parse(reordered, records)
	if err == nil {
		t.Fatal("expected correlation failure for reordered blocks")
	}
	if !errors.Is(err, services.ErrCorrelation) {
		t.Fatalf("expected ErrCorrelation, got %v", err)
	}
	var corr *maskedemail.CorrelationError
	if !errors.As(err, &corr) {
		t.Fatalf("expected CorrelationError, got %T", err)
	}
	if corr.ID != "1" || corr.Line != 6 {
		t.Fatalf("unexpected correlation detail: %#v", corr)
	}
}

func TestParseInOrderBlocksCorrelate(t *testing.T) {
	records := []maskedemail.Record{
		{ID: "1", Email: "one@x.com", Description: "one"},
		{ID: "2", Email: "two@x.com", Description: "two"},
	}
	text := strings.Replace(maskedemail.Serialize(records), "description: two", "description: zwei", 1)

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if _, ok := changes["1"]; ok {
		t.Fatalf("record 1 must not be attributed record 2's edit: %#v", changes)
	}
	if got := maskedemail.Deref(changes["2"]["description"]); got != "zwei" {
		t.Fatalf("expected record 2 description zwei, got %q", got)
	}
}

func TestParseUnknownIDFails(t *testing.T) {
	records := sampleRecords()
	text := "ghost@x.com (id: nope)\n  description: boo\n"
	_, err := maskedemail.Parse(text, records)
	if !errors.Is(err, services.ErrCorrelation) {
		t.Fatalf("expected ErrCorrelation for unknown id, got %v", err)
	}
}

func TestParseDeletedBlockIsOmitted(t *testing.T) {
	records := sampleRecords()
	blocks := strings.Split(maskedemail.Serialize(records), "\n\n")
	blocks[2] = strings.Replace(blocks[2], "description: ", "description: filled", 1)
	text := blocks[0] + "\n\n" + blocks[2]

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected one change, got %#v", changes)
	}
	if _, ok := changes["m2"]; ok {
		t.Fatal("omitted block must not appear in changeset")
	}
	if got := maskedemail.Deref(changes["m3"]["description"]); got != "filled" {
		t.Fatalf("unexpected m3 description %q", got)
	}
}

func TestParseDuplicateHeaderLaterBlockWins(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", Description: "old"}}
	text := strings.Join([]string{
		"a@x.com (id: m1)",
		"  description: first",
		"",
		"a@x.com (id: m1)",
		"  description: second",
	}, "\n")

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := maskedemail.Deref(changes["m1"]["description"]); got != "second" {
		t.Fatalf("expected later block to win, got %q", got)
	}

	reverted := strings.Replace(text, "description: second", "description: old", 1)
	changes, err = maskedemail.Parse(reverted, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected unchanged later block to replace earlier edit, got %#v", changes)
	}
}

func TestParseToleratesFieldReorderAndCRLF(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", Description: "d", ForDomain: "x.com"}}
	text := "a@x.com (id: m1)\r\n  url:\r\n  forDomain: x.org\r\n  description: d\r\n"

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	fields := changes["m1"]
	if len(fields) != 1 || maskedemail.Deref(fields["forDomain"]) != "x.org" {
		t.Fatalf("expected only forDomain change, got %#v", fields)
	}
}

func TestParseIgnoresFieldsBeforeFirstHeader(t *testing.T) {
	records := []maskedemail.Record{{ID: "m1", Email: "a@x.com", Description: "d"}}
	text := "note: this is a scratch line\n\n" + maskedemail.Serialize(records)

	changes, err := maskedemail.Parse(text, records)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected empty changeset, got %#v", changes)
	}
}

func TestParseHeader(t *testing.T) {
	cases := []struct {
		line   string
		wantID string
		wantOK bool
	}{
		{"a@x.com (id: m1)", "m1", true},
		{"[3/10] a@x.com (id: masked-42)", "masked-42", true},
		{"x(id: abc)", "abc", true},
		{"  a@x.com (id: m1)", "", false},
		{"(id: m1)", "", false},
		{"a@x.com (id: )", "", false},
		{"a@x.com (id: m 1)", "", false},
		{"a@x.com (id: m1) trailing", "", false},
		{"a@x.com (id: m1) ", "m1", true},
		{"a@x.com (id: m1)\t", "m1", true},
		{"", "", false},
	}
	for _, tc := range cases {
		id, ok := maskedemail.ParseHeader(tc.line)
		if ok != tc.wantOK || id != tc.wantID {
			t.Fatalf("ParseHeader(%q) = %q, %v; want %q, %v", tc.line, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestParseField(t *testing.T) {
	cases := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"  description: Shopping list", "description", "Shopping list", true},
		{"url:", "url", "", true},
		{"\tforDomain:   spaced ", "forDomain", "  spaced ", true},
		{"  description:tight", "description", "tight", true},
		{"  url: https://x.com/a:b", "url", "https://x.com/a:b", true},
		{"  a:b: c", "a:b", "c", true},
		{"  : value", "", "", false},
		{"no colon here", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		key, value, ok := maskedemail.ParseField(tc.line)
		if ok != tc.wantOK || key != tc.wantKey || value != tc.wantValue {
			t.Fatalf("ParseField(%q) = %q, %q, %v; want %q, %q, %v", tc.line, key, value, ok, tc.wantKey, tc.wantValue, tc.wantOK)
		}
	}
}
