package templates

// typeParamLetter maps a zero-based generic parameter index to its
// conventional letter (A, B, C, D, ...), matching RTuple1..RTuple4's existing
// hand-written naming. Same role as cmd/codegen's prefixedStrings helper,
// adapted from joining numbered identifiers to joining type-parameter
// letters for this package's arity family.
func typeParamLetter(i int) string {
	return string(rune('A' + i))
}
