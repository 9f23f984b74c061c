package domain

import (
	"fmt"
	"maps"
	"strings"
	"unicode"
)

// Event is an immutable named message.
// Construct it with NewEvent; the zero value is not a valid event.
type Event struct {
	name   string
	args   []any
	kwargs Kwargs
}

// NewEvent validates name and captures copies of args and kwargs.
func NewEvent(name string, args []any, kwargs Kwargs) (Event, error) {
	if err := ValidateEventName(name); err != nil {
		return Event{}, err
	}
	return Event{
		name:   name,
		args:   append([]any(nil), args...),
		kwargs: maps.Clone(kwargs),
	}, nil
}

// Name returns the event name.
func (e Event) Name() string { return e.name }

// Args returns a copy of the positional arguments.
func (e Event) Args() []any { return append([]any(nil), e.args...) }

// Kwargs returns a copy of the keyword arguments. It is never nil.
func (e Event) Kwargs() Kwargs {
	if e.kwargs == nil {
		return Kwargs{}
	}
	return maps.Clone(e.kwargs)
}

func (e Event) String() string {
	return fmt.Sprintf("Event(%s, args=%v, kwargs=%v)", e.name, e.args, e.kwargs)
}

// ValidateEventName checks that name is an identifier not starting with an underscore.
func ValidateEventName(name string) error {
	if !IsIdentifier(name) {
		return fmt.Errorf("%w: %q is not a valid identifier", ErrInvalidEventName, name)
	}
	if strings.HasPrefix(name, "_") {
		return fmt.Errorf("%w: %q starts with an underscore", ErrInvalidEventName, name)
	}
	return nil
}

// IsIdentifier reports whether s is a non-empty identifier token:
// a letter or underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
