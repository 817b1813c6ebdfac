package resolver

// Diff returns the entries of custom that the generated table does not already
// hold identically: new fields, overrides and every explicit disable. Entries
// present only in generated are never returned. Scalar and enum entries are
// not field maps and are left out.
func Diff(custom, generated Table) Table {
	out := make(Table)
	for typeName, tr := range custom {
		if tr == nil {
			continue
		}
		for field, e := range tr.Fields {
			if e == nil {
				continue
			}
			if base, ok := generated.Get(typeName, field); ok && Equal(e, base) {
				continue
			}
			out.Set(typeName, field, e)
		}
	}
	return out
}
