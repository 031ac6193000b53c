package maskedemail

import (
	"bufio"
	"io"
	"strings"
)

// ExportFields lists the columns written by WriteExport, in order.
var ExportFields = []string{
	FieldID,
	FieldEmail,
	FieldCreatedBy,
	FieldCreatedAt,
	FieldDescription,
	FieldForDomain,
	FieldURL,
	FieldState,
	FieldLastMessageAt,
}

var exportEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// WriteExport writes every field of every record as semicolon separated,
// double-quoted values with a header row. Backslashes and quotes are
// backslash-escaped; null values are written as "".
func WriteExport(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(ExportFields, ";") + "\n"); err != nil {
		return err
	}
	cells := make([]string, len(ExportFields))
	for _, r := range records {
		for i, key := range ExportFields {
			value, _ := r.Field(key)
			cells[i] = `"` + exportEscaper.Replace(Deref(value)) + `"`
		}
		if _, err := bw.WriteString(strings.Join(cells, ";") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
