package api

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mwrona/maskfold/internal/mask"
	"github.com/mwrona/maskfold/internal/types"
)

// maskFromStruct converts a wire Struct into a mask tree. Conversion goes
// through JSON so classification (leaf/complex/opaque), depth limits, and
// integer handling live in one place, the mask decoder.
func maskFromStruct(s *structpb.Struct, maxBytes int) (*mask.Node, error) {
	if s == nil {
		return nil, types.ErrMaskNotComplex
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize mask: %w", err)
	}
	if len(raw) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", types.ErrMaskTooLarge, len(raw), maxBytes)
	}
	return mask.DecodeComplex(raw)
}

// structFromMask converts a mask tree back to its wire Struct form.
func structFromMask(n *mask.Node) (*structpb.Struct, error) {
	raw, err := n.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}
	var s structpb.Struct
	if err := s.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to build response mask: %w", err)
	}
	return &s, nil
}

// diagnosticsValue renders ordered diagnostics as a wire list.
func diagnosticsValue(diags []mask.Diagnostic) *structpb.Value {
	values := make([]*structpb.Value, len(diags))
	for i, d := range diags {
		values[i] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"path":    structpb.NewStringValue(d.Path),
				"message": structpb.NewStringValue(d.Message),
			},
		})
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

// objectField extracts a required object-typed field from a request.
func objectField(req *structpb.Struct, name string) (*structpb.Struct, error) {
	if req == nil {
		return nil, fmt.Errorf("%s required", name)
	}
	v, ok := req.Fields[name]
	if !ok {
		return nil, fmt.Errorf("%s required", name)
	}
	s := v.GetStructValue()
	if s == nil {
		return nil, fmt.Errorf("%s must be an object", name)
	}
	return s, nil
}

// stringField extracts a required string-typed field from a request.
func stringField(req *structpb.Struct, name string) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%s required", name)
	}
	v, ok := req.Fields[name]
	if !ok {
		return "", fmt.Errorf("%s required", name)
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return v.GetStringValue(), nil
}

// validateResource enforces resource naming limits shared by all template
// operations.
func validateResource(resource string) error {
	if resource == "" {
		return types.ErrResourceNameEmpty
	}
	if len(resource) > types.MaxResourceNameLength {
		return fmt.Errorf("%w: %d chars (limit %d)", types.ErrResourceNameTooLong, len(resource), types.MaxResourceNameLength)
	}
	return nil
}
