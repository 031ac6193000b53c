package maskedemail

import (
	"fmt"
	"strings"
)

// SerializeOptions tunes the edit file layout without changing its grammar.
type SerializeOptions struct {
	// Numbered prefixes each header with "[i/N] ".
	Numbered bool
}

// Serialize renders records into the edit file format.
func Serialize(records []Record) string {
	return SerializeWith(records, SerializeOptions{})
}

// SerializeWith renders records using opts. The output depends only on the
// records and options, so identical input yields byte-identical text.
func SerializeWith(records []Record, opts SerializeOptions) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if opts.Numbered {
			fmt.Fprintf(&b, "[%d/%d] ", i+1, len(records))
		}
		writeBlock(&b, r)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, r Record) {
	b.WriteString(header(r))
	for _, key := range EditableFields {
		value, _ := r.Field(key)
		b.WriteString("\n  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(Deref(value))
	}
}

func header(r Record) string {
	return r.Email + " (id: " + r.ID + ")"
}
