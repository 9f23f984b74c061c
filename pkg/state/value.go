package state

// Value is the tagged variant stored for each key: Plain or *Computed.
type Value interface {
	isValue()
}

// Plain is a stored literal value.
type Plain struct {
	V any
}

func (Plain) isValue() {}

// Computed is a slot backed by functions instead of a stored value.
// A nil Get makes the slot write-only; a nil Set makes it read-only.
type Computed struct {
	Get func() (any, error)
	Set func(value any) error
}

func (*Computed) isValue() {}

// Keep is a mapping that is stored as-is instead of being promoted to a State.
type Keep map[string]any
