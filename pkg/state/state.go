package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/boardom/pkg/domain"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// State is an ordered, hierarchical key/value container.
type State struct {
	entries *orderedmap.OrderedMap[string, Value]
}

// New returns an empty State.
func New() *State {
	return &State{entries: orderedmap.New[string, Value]()}
}

// FromMap builds a State from a plain mapping, promoting nested mappings.
// Go maps carry no order, so keys are inserted in sorted order.
func FromMap(m map[string]any) (*State, error) {
	s := New()
	for _, k := range sortedKeys(m) {
		if err := s.SetPath([]string{k}, m[k]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Split turns a dotted path into its segments. Surrounding dots and spaces are ignored.
func Split(path string) []string {
	path = strings.Trim(path, ". ")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Get reads the value at a dotted path.
func (s *State) Get(path string) (any, error) {
	return s.GetPath(Split(path))
}

// GetOr reads the value at a dotted path, returning def when it cannot be read.
func (s *State) GetOr(path string, def any) any {
	v, err := s.Get(path)
	if err != nil {
		return def
	}
	return v
}

// Set writes value at a dotted path.
func (s *State) Set(path string, value any) error {
	return s.SetPath(Split(path), value)
}

// Delete removes the entry at a dotted path.
func (s *State) Delete(path string) error {
	return s.DeletePath(Split(path))
}

// Contains reports whether Get would succeed for path.
func (s *State) Contains(path string) bool {
	return s.HasPath(Split(path))
}

// Define installs a computed slot at a dotted path, replacing any existing entry.
func (s *State) Define(path string, slot *Computed) error {
	return s.DefinePath(Split(path), slot)
}

// GetPath reads the value addressed by keys.
func (s *State) GetPath(keys []string) (any, error) {
	parent, key, err := s.parent(keys)
	if err != nil {
		return nil, err
	}
	entry, ok := parent.entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, strings.Join(keys, "."))
	}
	switch v := entry.(type) {
	case Plain:
		return v.V, nil
	case *Computed:
		if v.Get == nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrWriteOnly, strings.Join(keys, "."))
		}
		return v.Get()
	default:
		panic(fmt.Sprintf("state: unexpected entry type %T", entry))
	}
}

// SetPath writes value at the entry addressed by keys.
// Writing over a computed slot calls its setter with the raw value.
// Assigning a *Computed installs it as a slot.
func (s *State) SetPath(keys []string, value any) error {
	if slot, ok := value.(*Computed); ok {
		return s.DefinePath(keys, slot)
	}
	parent, key, err := s.parent(keys)
	if err != nil {
		return err
	}
	if !domain.IsIdentifier(key) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidKey, key)
	}
	if entry, ok := parent.entries.Get(key); ok {
		if slot, ok := entry.(*Computed); ok {
			if slot.Set == nil {
				return fmt.Errorf("%w: %q", domain.ErrReadOnly, strings.Join(keys, "."))
			}
			return slot.Set(value)
		}
	}
	promoted, err := promote(value)
	if err != nil {
		return err
	}
	parent.entries.Set(key, Plain{V: promoted})
	return nil
}

// DefinePath installs a computed slot at the entry addressed by keys.
func (s *State) DefinePath(keys []string, slot *Computed) error {
	parent, key, err := s.parent(keys)
	if err != nil {
		return err
	}
	if !domain.IsIdentifier(key) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidKey, key)
	}
	parent.entries.Set(key, slot)
	return nil
}

// DeletePath removes the entry addressed by keys.
func (s *State) DeletePath(keys []string) error {
	parent, key, err := s.parent(keys)
	if err != nil {
		return err
	}
	if _, ok := parent.entries.Delete(key); !ok {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, strings.Join(keys, "."))
	}
	return nil
}

// HasPath reports whether GetPath would succeed for keys.
func (s *State) HasPath(keys []string) bool {
	_, err := s.GetPath(keys)
	return err == nil
}

// Keys returns the top-level keys in insertion order.
func (s *State) Keys() []string {
	keys := make([]string, 0, s.entries.Len())
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of top-level entries.
func (s *State) Len() int {
	return s.entries.Len()
}

// Range calls fn for each top-level entry in order until fn returns false.
// Plain entries yield their value; computed slots yield the *Computed itself.
func (s *State) Range(fn func(key string, value any) bool) {
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		var v any
		switch entry := pair.Value.(type) {
		case Plain:
			v = entry.V
		case *Computed:
			v = entry
		}
		if !fn(pair.Key, v) {
			return
		}
	}
}

// Paths returns every dotted path reachable in s, descending into nested States.
func (s *State) Paths() []string {
	var paths []string
	s.Range(func(key string, value any) bool {
		paths = append(paths, key)
		if sub, ok := value.(*State); ok {
			for _, p := range sub.Paths() {
				paths = append(paths, key+"."+p)
			}
		}
		return true
	})
	return paths
}

// Update merges other into s, recursing where both sides hold a State.
// other may be a *State or a map[string]any.
func (s *State) Update(other any) error {
	switch o := other.(type) {
	case *State:
		var err error
		o.Range(func(key string, value any) bool {
			err = s.merge(key, value)
			return err == nil
		})
		return err
	case map[string]any:
		for _, k := range sortedKeys(o) {
			if err := s.merge(k, o[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot update state from %T", domain.ErrNotMapping, other)
	}
}

func (s *State) merge(key string, value any) error {
	if !IsMapping(value) {
		return s.SetPath([]string{key}, value)
	}
	var sub *State
	if entry, ok := s.entries.Get(key); ok {
		if p, ok := entry.(Plain); ok {
			sub, _ = p.V.(*State)
		}
	}
	if sub == nil {
		if !domain.IsIdentifier(key) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidKey, key)
		}
		sub = New()
		s.entries.Set(key, Plain{V: sub})
	}
	return sub.Update(value)
}

// ToMap exports s as nested plain maps. Computed slots are skipped.
func (s *State) ToMap() map[string]any {
	out := make(map[string]any, s.entries.Len())
	s.Range(func(key string, value any) bool {
		switch v := value.(type) {
		case *Computed:
		case *State:
			out[key] = v.ToMap()
		default:
			out[key] = v
		}
		return true
	})
	return out
}

func (s *State) String() string {
	var b strings.Builder
	b.WriteString("State{")
	first := true
	s.Range(func(key string, value any) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		if _, ok := value.(*Computed); ok {
			fmt.Fprintf(&b, "%s: <computed>", key)
		} else {
			fmt.Fprintf(&b, "%s: %v", key, value)
		}
		return true
	})
	b.WriteString("}")
	return b.String()
}

// IsMapping reports whether v is a State or a plain map[string]any.
// Keep mappings are not considered mappings.
func IsMapping(v any) bool {
	switch v.(type) {
	case *State, map[string]any:
		return true
	}
	return false
}

// parent walks every segment but the last, which it returns with the holding State.
func (s *State) parent(keys []string) (*State, string, error) {
	if len(keys) == 0 {
		return nil, "", fmt.Errorf("%w: empty path", domain.ErrInvalidKey)
	}
	cur := s
	for i, k := range keys[:len(keys)-1] {
		entry, ok := cur.entries.Get(k)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", domain.ErrNotFound, strings.Join(keys[:i+1], "."))
		}
		p, ok := entry.(Plain)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", domain.ErrNotState, strings.Join(keys[:i+1], "."))
		}
		sub, ok := p.V.(*State)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", domain.ErrNotState, strings.Join(keys[:i+1], "."))
		}
		cur = sub
	}
	return cur, keys[len(keys)-1], nil
}

// promote converts a plain map[string]any, recursively, into a State.
func promote(value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	return FromMap(m)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
