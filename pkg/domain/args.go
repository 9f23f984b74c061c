package domain

// Kwargs holds keyword arguments keyed by parameter name.
type Kwargs map[string]any

// Results is the ordered list of values returned by every action of one firing.
type Results []any
