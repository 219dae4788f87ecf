// Package types provides domain models shared across maskfold components.
//
// Zero-dependency design: types.go and errors.go use only encoding/json so
// the engine package stays lean. ID utilities in ids.go import uuid but are
// isolated for selective inclusion.
//
// Separation from the wire layer: the gRPC surface speaks structpb values.
// This package contains hand-written types for concepts that don't belong on
// the wire (reserved keys, resource limits, sentinel errors, helper methods).
package types

import (
	"encoding/json"
	"math"
)

// Reserved mask keys. These must never collide with real field names in user
// schemas; the $ prefix keeps them outside the usual identifier space.
const (
	// WildcardKey holds a mask's default policy for fields not explicitly
	// listed.
	WildcardKey = "$*"

	// StartKey holds the start offset of an array-range directive.
	StartKey = "$start"

	// CountKey holds the element count of an array-range directive.
	CountKey = "$count"
)

// Leaf mask polarities. Exclude is numerically below Include so that
// composing two leaves reduces to taking the minimum (exclude dominates).
const (
	ExcludePolarity int64 = 0
	IncludePolarity int64 = 1
)

// DefaultRangeStart and MaxRangeCount are the implicit values of an absent
// array-range directive. MaxRangeCount doubles as the "unlimited" sentinel;
// neither default is ever materialized in a composed mask.
const (
	DefaultRangeStart int64 = 0
	MaxRangeCount     int64 = math.MaxInt32
)

// Mask represents a projection mask in its wire form: a nested string-keyed
// map with integer leaves. json.RawMessage wrapper preserves original bytes
// for storage; structural interpretation happens in internal/mask.
type Mask json.RawMessage

// MarshalJSON implements json.Marshaler.
// Delegates to json.RawMessage to preserve original mask bytes unchanged.
func (m Mask) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.RawMessage(m).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
// Delegates to json.RawMessage to capture raw bytes without parsing.
func (m *Mask) UnmarshalJSON(data []byte) error {
	return (*json.RawMessage)(m).UnmarshalJSON(data)
}

// Resource limits enforced at the API boundary to keep composition costs
// bounded. The engine itself assumes inputs within these limits.
const (
	// MaxMaskDepth limits mask nesting. Composition recursion is bounded by
	// the instruction queue, but decoding and canonicalization still descend
	// the tree; 64 levels is far beyond any practical projection.
	MaxMaskDepth = 64

	// MaxMaskBytes limits the serialized size of a single mask.
	// 256KB allows tens of thousands of fields without unbounded memory.
	MaxMaskBytes = 256 * 1024

	// MaxResourceNameLength limits template resource identifiers.
	// 255 chars accommodates dotted resource names like "com.example.Album".
	MaxResourceNameLength = 255

	// MaxTemplateList caps the number of templates returned by a single
	// list call.
	MaxTemplateList = 1000
)
