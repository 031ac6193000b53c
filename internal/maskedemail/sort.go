package maskedemail

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByEmail orders records by e-mail address using locale-aware collation.
// Case only breaks ties between otherwise equal addresses, lower case first.
// Records with identical addresses keep their relative order.
func SortByEmail(records []Record, tag language.Tag) {
	c := collate.New(tag)
	sort.SliceStable(records, func(i, j int) bool {
		return c.CompareString(records[i].Email, records[j].Email) < 0
	})
}
