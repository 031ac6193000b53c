package maskedemail

// Field names used on the wire and in the edit file.
const (
	FieldID            = "id"
	FieldEmail         = "email"
	FieldDescription   = "description"
	FieldForDomain     = "forDomain"
	FieldURL           = "url"
	FieldCreatedBy     = "createdBy"
	FieldCreatedAt     = "createdAt"
	FieldState         = "state"
	FieldLastMessageAt = "lastMessageAt"
)

// EditableFields lists the fields written to the edit file, in output order.
var EditableFields = []string{FieldDescription, FieldForDomain, FieldURL}

// Record is one masked e-mail alias as returned by MaskedEmail/get.
type Record struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Description   string  `json:"description"`
	ForDomain     string  `json:"forDomain"`
	URL           *string `json:"url"`
	CreatedBy     string  `json:"createdBy,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
	State         string  `json:"state,omitempty"`
	LastMessageAt *string `json:"lastMessageAt,omitempty"`
}

// Field returns the value stored under the wire name key. The second result
// is false when the record has no such field. A nil value with true means the
// field is present and null.
func (r Record) Field(key string) (*string, bool) {
	switch key {
	case FieldID:
		return String(r.ID), true
	case FieldEmail:
		return String(r.Email), true
	case FieldDescription:
		return String(r.Description), true
	case FieldForDomain:
		return String(r.ForDomain), true
	case FieldURL:
		return r.URL, true
	case FieldCreatedBy:
		return String(r.CreatedBy), true
	case FieldCreatedAt:
		return String(r.CreatedAt), true
	case FieldState:
		return String(r.State), true
	case FieldLastMessageAt:
		return r.LastMessageAt, true
	default:
		return nil, false
	}
}

// FieldMap maps a field name to its edited value. A nil value is an explicit
// null and encodes as JSON null.
type FieldMap map[string]*string

// Changeset maps a record id to the fields that differ from the stored record.
type Changeset map[string]FieldMap

// IDs returns the changeset ids in the order they appear in records.
func (c Changeset) IDs(records []Record) []string {
	ids := make([]string, 0, len(c))
	for _, r := range records {
		if _, ok := c[r.ID]; ok {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// Deref returns the pointed-to string or the empty string for nil.
func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
