package maskedemail

// Diff returns the entries of edited whose value differs from original.
// Values are compared as opaque strings; null differs from every string,
// including the empty one. Keys the record does not know always differ.
func Diff(original Record, edited FieldMap) FieldMap {
	changed := FieldMap{}
	for key, value := range edited {
		current, ok := original.Field(key)
		if ok && equalValue(current, value) {
			continue
		}
		changed[key] = value
	}
	return changed
}

func equalValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
