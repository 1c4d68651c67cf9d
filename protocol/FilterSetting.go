package protocol

// FilterSetting denotes a field and a condition to match an expression on which to filter results
type FilterSetting struct {
	// FilterField names the contact field to match on
	FilterField string `json:"filterField"`
	// Condition chooses the comparison: equals, notequals, contains,
	// notcontains, begins, notbegins, ends, notends, morethan, lessthan,
	// atleast, or atmost
	Condition string `json:"condition"`
	// Expression is the value compared against the field
	Expression string `json:"expression"`
}
