// Package snapshot serializes engine state to YAML, keeping key order.
package snapshot

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/boardom/pkg/engine"
	"github.com/aretw0/boardom/pkg/state"
)

// Snapshot is a point-in-time copy of an engine's state.
type Snapshot struct {
	EngineID string
	Type     string
	SavedAt  time.Time
	State    *state.State
}

// Take snapshots e. The state is copied, so later changes to e do not leak
// into the snapshot. Computed slots and callables are not captured.
func Take(e *engine.Engine) (*Snapshot, error) {
	node, err := EncodeState(e.State())
	if err != nil {
		return nil, err
	}
	s, err := DecodeState(node)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		EngineID: e.ID(),
		Type:     e.Type().Name(),
		SavedAt:  time.Now().UTC(),
		State:    s,
	}, nil
}

// Restore replaces e's state with the snapshot's.
func Restore(e *engine.Engine, snap *Snapshot) error {
	return e.ReplaceState(snap.State)
}

// Marshal encodes snap as a YAML document.
func Marshal(snap *Snapshot) ([]byte, error) {
	body, err := EncodeState(snap.State)
	if err != nil {
		return nil, err
	}
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range []struct {
		key   string
		value any
	}{
		{"engine_id", snap.EngineID},
		{"type", snap.Type},
		{"saved_at", snap.SavedAt},
	} {
		v := &yaml.Node{}
		if err := v.Encode(field.value); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", field.key, err)
		}
		doc.Content = append(doc.Content, keyNode(field.key), v)
	}
	doc.Content = append(doc.Content, keyNode("state"), body)
	return yaml.Marshal(doc)
}

// Unmarshal decodes a document written by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	doc := unwrap(&root)
	if doc == nil || doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("snapshot: document is not a mapping")
	}

	snap := &Snapshot{State: state.New()}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i].Value, doc.Content[i+1]
		var err error
		switch key {
		case "engine_id":
			err = value.Decode(&snap.EngineID)
		case "type":
			err = value.Decode(&snap.Type)
		case "saved_at":
			err = value.Decode(&snap.SavedAt)
		case "state":
			snap.State, err = DecodeState(value)
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", key, err)
		}
	}
	return snap, nil
}

// EncodeState converts s into a YAML mapping node in insertion order.
func EncodeState(s *state.State) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	s.Range(func(key string, value any) bool {
		var v *yaml.Node
		switch val := value.(type) {
		case *state.Computed, *engine.Callable, *engine.Engine:
			return true
		case *state.State:
			v, err = EncodeState(val)
		default:
			v = &yaml.Node{}
			err = v.Encode(val)
		}
		if err != nil {
			err = fmt.Errorf("encode %q: %w", key, err)
			return false
		}
		node.Content = append(node.Content, keyNode(key), v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DecodeState rebuilds a State from a mapping node. Nested mappings become
// nested States; mappings inside sequences stay plain maps.
func DecodeState(node *yaml.Node) (*state.State, error) {
	node = unwrap(node)
	s := state.New()
	if node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return s, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode state: line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := unwrap(node.Content[i+1])

		var v any
		if value.Kind == yaml.MappingNode {
			sub, err := DecodeState(value)
			if err != nil {
				return nil, err
			}
			v = sub
		} else if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		if err := s.SetPath([]string{key}, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) == 1:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}
