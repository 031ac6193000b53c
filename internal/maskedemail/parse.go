package maskedemail

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"maskctl/internal/services"
)

const idMarker = "(id: "

// CorrelationError reports a block whose id cannot be matched to an original
// record at or after the correlation cursor. This happens when blocks were
// reordered or an id was edited.
type CorrelationError struct {
	ID     string
	Line   int
	Cursor int
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("block %q at line %d has no matching record at or after position %d; keep blocks in their original order and do not edit ids",
		e.ID, e.Line, e.Cursor+1)
}

// Unwrap tags correlation failures with services.ErrCorrelation.
func (e *CorrelationError) Unwrap() error {
	return services.ErrCorrelation
}

type block struct {
	id     string
	line   int
	fields FieldMap
}

type parser struct {
	originals []Record
	cursor    int
	current   *block
	changes   Changeset
}

// Parse reads edited text and returns, per record id, the fields that differ
// from originals. originals must be in the order the text was serialized in.
func Parse(text string, originals []Record) (Changeset, error) {
	p := &parser{originals: originals, changes: Changeset{}}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if id, ok := ParseHeader(line); ok {
			if err := p.flush(); err != nil {
				return nil, err
			}
			p.current = &block{id: id, line: i + 1, fields: FieldMap{}}
			continue
		}
		key, value, ok := ParseField(line)
		if !ok || p.current == nil {
			continue
		}
		if key == FieldURL && value == "" {
			p.current.fields[key] = nil
			continue
		}
		p.current.fields[key] = String(value)
	}
	if err := p.flush(); err != nil {
		return nil, err
	}
	return p.changes, nil
}

func (p *parser) flush() error {
	b := p.current
	if b == nil {
		return nil
	}
	p.current = nil

	start := p.cursor
	for p.cursor < len(p.originals) && p.originals[p.cursor].ID != b.id {
		p.cursor++
	}
	if p.cursor == len(p.originals) {
		return &CorrelationError{ID: b.id, Line: b.line, Cursor: start}
	}

	original := p.originals[p.cursor]
	// An empty url line reads as null, but it is also how an empty-string
	// url serializes. Keep the empty string when the record already has it.
	if value, ok := b.fields[FieldURL]; ok && value == nil && original.URL != nil && *original.URL == "" {
		b.fields[FieldURL] = String("")
	}

	changed := Diff(original, b.fields)
	if len(changed) == 0 {
		delete(p.changes, b.id)
		return nil
	}
	p.changes[b.id] = changed
	return nil
}

// ParseHeader reports whether line opens a block and returns its id. A header
// starts with a non-space character and ends with "(id: <id>)" where the id
// contains no whitespace. Trailing whitespace after the closing parenthesis
// is ignored.
func ParseHeader(line string) (string, bool) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	first, _ := utf8.DecodeRuneInString(line)
	if line == "" || unicode.IsSpace(first) || !strings.HasSuffix(line, ")") {
		return "", false
	}
	idx := strings.LastIndex(line, idMarker)
	if idx < 1 {
		return "", false
	}
	id := line[idx+len(idMarker) : len(line)-1]
	if id == "" || strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return "", false
	}
	return id, true
}

// ParseField splits a "key: value" line. Leading whitespace before the key
// and one space after the colon are dropped; the rest of the value is kept
// verbatim.
// The key runs up to the last colon of the first whitespace-delimited token.
func ParseField(line string) (string, string, bool) {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	token := rest
	if end := strings.IndexFunc(rest, unicode.IsSpace); end >= 0 {
		token = rest[:end]
	}
	colon := strings.LastIndex(token, ":")
	if colon < 1 {
		return "", "", false
	}
	key := token[:colon]
	value := strings.TrimPrefix(rest[colon+1:], " ")
	return key, value, true
}
