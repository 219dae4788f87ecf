// internal/mask/node.go
package mask

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mwrona/maskfold/internal/types"
)

/*
 * Mask value model.
 *
 * A projection mask is a tree of nodes. Node is a closed sum over three
 * kinds:
 *   - KindLeaf: an integer polarity (0 exclude, 1 include). Values outside
 *     {0, 1} are representable and rejected at composition time, not at
 *     construction time.
 *   - KindComplex: a string-keyed map of child nodes. The reserved range
 *     keys ($start, $count) live in the map as integer leaves; the wildcard
 *     ($*) is an ordinary entry.
 *   - KindOpaque: genuinely malformed external input (strings, booleans,
 *     fractional numbers, arrays) preserved verbatim so the interpreter can
 *     report it and leave it untouched.
 *
 * Closed kinds make every composition rule an exhaustive switch; the
 * "unsupported type" branch exists only for KindOpaque.
 *
 * Decoding uses json.Number so integer leaves survive without float
 * round-tripping. Encoding emits the same wire form that request-time
 * field-selector parameters use: nested string-keyed maps with integer
 * leaves.
 */

// Kind identifies the variant a Node holds.
type Kind int

const (
	KindLeaf Kind = iota
	KindComplex
	KindOpaque
)

// String returns the lowercase kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindComplex:
		return "complex"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Node is one mask tree node. The zero value is not useful; construct nodes
// with NewLeaf, NewComplex, NewOpaque, or Decode.
type Node struct {
	kind   Kind
	leaf   int64
	fields map[string]*Node
	raw    any // opaque payload, kept verbatim for diagnostics
}

// NewLeaf returns a leaf node with the given polarity value.
func NewLeaf(v int64) *Node {
	return &Node{kind: KindLeaf, leaf: v}
}

// NewComplex returns an empty complex node.
func NewComplex() *Node {
	return &Node{kind: KindComplex, fields: make(map[string]*Node)}
}

// NewOpaque returns a node wrapping a value outside the mask data model.
func NewOpaque(raw any) *Node {
	return &Node{kind: KindOpaque, raw: raw}
}

// Kind reports the node's variant.
func (n *Node) Kind() Kind { return n.kind }

// Leaf returns the polarity of a leaf node. Zero for other kinds.
func (n *Node) Leaf() int64 { return n.leaf }

// Opaque returns the preserved raw value of an opaque node.
func (n *Node) Opaque() any { return n.raw }

// IsInclude reports whether n is the include leaf. Safe on nil.
func (n *Node) IsInclude() bool {
	return n != nil && n.kind == KindLeaf && n.leaf == types.IncludePolarity
}

// IsExclude reports whether n is the exclude leaf. Safe on nil.
func (n *Node) IsExclude() bool {
	return n != nil && n.kind == KindLeaf && n.leaf == types.ExcludePolarity
}

// Field returns the child stored under name, or nil. Non-complex nodes have
// no fields.
func (n *Node) Field(name string) *Node {
	if n == nil || n.kind != KindComplex {
		return nil
	}
	return n.fields[name]
}

// SetField stores a child under name on a complex node.
func (n *Node) SetField(name string, child *Node) {
	if n.kind != KindComplex {
		return
	}
	n.fields[name] = child
}

// RemoveField deletes the entry stored under name on a complex node.
func (n *Node) RemoveField(name string) {
	if n.kind != KindComplex {
		return
	}
	delete(n.fields, name)
}

// Size returns the field count of a complex node. Zero for other kinds.
func (n *Node) Size() int {
	if n == nil || n.kind != KindComplex {
		return 0
	}
	return len(n.fields)
}

// FieldNames returns the field names of a complex node in sorted order.
// Sorted iteration keeps composition deterministic (stable diagnostics and
// scheduling order across identical inputs).
func (n *Node) FieldNames() []string {
	if n == nil || n.kind != KindComplex {
		return nil
	}
	names := make([]string, 0, len(n.fields))
	for name := range n.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the node. Opaque payloads are copied by
// structure; a payload outside the JSON value model cannot be cloned safely
// and yields ErrCloneUnsupported rather than a silently aliased copy.
func (n *Node) Clone() (*Node, error) {
	switch n.kind {
	case KindLeaf:
		return NewLeaf(n.leaf), nil
	case KindComplex:
		out := &Node{kind: KindComplex, fields: make(map[string]*Node, len(n.fields))}
		for name, child := range n.fields {
			c, err := child.Clone()
			if err != nil {
				return nil, err
			}
			out.fields[name] = c
		}
		return out, nil
	case KindOpaque:
		raw, err := cloneRaw(n.raw)
		if err != nil {
			return nil, err
		}
		return NewOpaque(raw), nil
	default:
		return nil, fmt.Errorf("%w: kind %d", types.ErrCloneUnsupported, n.kind)
	}
}

// cloneRaw deep-copies a decoded JSON value. Scalars are immutable and copy
// by value; containers copy recursively.
func cloneRaw(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, float64, json.Number:
		return val, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			c, err := cloneRaw(elem)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			c, err := cloneRaw(elem)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrCloneUnsupported, v)
	}
}

// Equal reports deep structural equality. Used by tests and by the
// operation-side immutability checks.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindLeaf:
		return n.leaf == other.leaf
	case KindComplex:
		if len(n.fields) != len(other.fields) {
			return false
		}
		for name, child := range n.fields {
			if !child.Equal(other.fields[name]) {
				return false
			}
		}
		return true
	case KindOpaque:
		return equalRaw(n.raw, other.raw)
	default:
		return false
	}
}

func equalRaw(a, b any) bool {
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalRaw(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k := range av {
			if !equalRaw(av[k], bv[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Decode parses a wire-form mask into a node tree.
// Returns types.ErrMaskTooDeep when nesting exceeds types.MaxMaskDepth.
// Malformed values inside an otherwise valid tree decode to opaque nodes;
// they surface as diagnostics during composition, not as decode errors.
func Decode(raw json.RawMessage) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return decodeValue(v, 0)
}

// DecodeComplex parses a wire-form mask and requires the top level to be a
// complex value, the only shape a composition instruction accepts.
func DecodeComplex(raw json.RawMessage) (*Node, error) {
	n, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if n.kind != KindComplex {
		return nil, types.ErrMaskNotComplex
	}
	return n, nil
}

func decodeValue(v any, depth int) (*Node, error) {
	if depth > types.MaxMaskDepth {
		return nil, types.ErrMaskTooDeep
	}
	switch val := v.(type) {
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			// fractional or out-of-range number: not a polarity
			return NewOpaque(val), nil
		}
		return NewLeaf(i), nil
	case map[string]any:
		n := &Node{kind: KindComplex, fields: make(map[string]*Node, len(val))}
		for name, child := range val {
			c, err := decodeValue(child, depth+1)
			if err != nil {
				return nil, err
			}
			n.fields[name] = c
		}
		return n, nil
	default:
		return NewOpaque(val), nil
	}
}

// Encode serializes the node tree back to the wire form.
func (n *Node) Encode() (json.RawMessage, error) {
	return json.Marshal(n.toValue())
}

func (n *Node) toValue() any {
	switch n.kind {
	case KindLeaf:
		return n.leaf
	case KindComplex:
		out := make(map[string]any, len(n.fields))
		for name, child := range n.fields {
			out[name] = child.toValue()
		}
		return out
	default:
		return n.raw
	}
}
