package mask

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mwrona/maskfold/internal/types"
)

func TestDecode_Kinds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
	}{
		{name: "include leaf", in: `1`, kind: KindLeaf},
		{name: "exclude leaf", in: `0`, kind: KindLeaf},
		{name: "out-of-range integer still a leaf", in: `7`, kind: KindLeaf},
		{name: "nested map", in: `{"a": 1}`, kind: KindComplex},
		{name: "string is opaque", in: `"x"`, kind: KindOpaque},
		{name: "boolean is opaque", in: `true`, kind: KindOpaque},
		{name: "fractional number is opaque", in: `1.5`, kind: KindOpaque},
		{name: "array is opaque", in: `[1, 2]`, kind: KindOpaque},
		{name: "null is opaque", in: `null`, kind: KindOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Decode(json.RawMessage(tt.in))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if n.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", n.Kind(), tt.kind)
			}
		})
	}
}

func TestDecode_DepthLimit(t *testing.T) {
	deep := strings.Repeat(`{"a":`, types.MaxMaskDepth+2) + `1` + strings.Repeat(`}`, types.MaxMaskDepth+2)

	_, err := Decode(json.RawMessage(deep))
	if !errors.Is(err, types.ErrMaskTooDeep) {
		t.Errorf("Decode() error = %v, want ErrMaskTooDeep", err)
	}
}

func TestDecodeComplex_RejectsScalars(t *testing.T) {
	_, err := DecodeComplex(json.RawMessage(`1`))
	if !errors.Is(err, types.ErrMaskNotComplex) {
		t.Errorf("DecodeComplex() error = %v, want ErrMaskNotComplex", err)
	}

	n, err := DecodeComplex(json.RawMessage(`{"a": 1}`))
	if err != nil {
		t.Fatalf("DecodeComplex() error = %v", err)
	}
	if n.Kind() != KindComplex {
		t.Errorf("Kind() = %v, want KindComplex", n.Kind())
	}
}

func TestNode_CloneIndependence(t *testing.T) {
	orig := mustDecode(t, `{"a": {"b": 1}, "c": 0}`)
	clone, err := orig.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if !clone.Equal(orig) {
		t.Fatal("clone differs from original")
	}

	clone.Field("a").SetField("b", NewLeaf(0))
	clone.SetField("d", NewLeaf(1))

	if !orig.Equal(mustDecode(t, `{"a": {"b": 1}, "c": 0}`)) {
		t.Error("mutating the clone changed the original")
	}
}

func TestNode_EncodeRoundTrip(t *testing.T) {
	in := `{"a": {"b": 0, "$*": 1}, "$start": 2}`
	n := mustDecode(t, in)

	raw, err := n.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	back, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !back.Equal(n) {
		t.Errorf("round trip changed mask: %s", raw)
	}
}

func TestNode_FieldNamesSorted(t *testing.T) {
	n := mustDecode(t, `{"z": 1, "a": 1, "m": 1}`)
	names := n.FieldNames()
	want := []string{"a", "m", "z"}
	if len(names) != len(want) {
		t.Fatalf("FieldNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("FieldNames()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestPath_Rendering(t *testing.T) {
	var p Path
	if p.String() != "" {
		t.Errorf("empty path renders %q, want empty", p.String())
	}

	child := p.With("a").With("b")
	if child.String() != "a.b" {
		t.Errorf("path = %q, want %q", child.String(), "a.b")
	}

	// With never mutates the receiver
	sibling := p.With("a").With("c")
	if child.String() != "a.b" || sibling.String() != "a.c" {
		t.Errorf("shared prefix mutated: %q / %q", child.String(), sibling.String())
	}
}
