package extract

// OptionalField returns the raw value of an optional column given its
// resolved index within a row. A column that was not present in the header
// (index < 0), a row too short to carry it, and the "." placeholder all
// count as absent.
func OptionalField(fields []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(fields) {
		return "", false
	}
	v := fields[idx]
	if v == "" || v == "." {
		return "", false
	}
	return v, true
}
