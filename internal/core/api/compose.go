package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mwrona/maskfold/internal/core/auth"
	"github.com/mwrona/maskfold/internal/mask"
	"github.com/mwrona/maskfold/internal/types"
)

// Compose merges the caller's operation mask into the caller's data mask and
// returns the composed mask plus ordered diagnostics. Composition never
// fails on malformed mask content; malformed inputs surface as diagnostics.
func (s *ProjectionAPIService) Compose(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID == "" {
		return nil, status.Error(codes.Internal, "missing tenant_id in context")
	}

	dataStruct, err := objectField(req, "data")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	opStruct, err := objectField(req, "operation")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	data, err := maskFromStruct(dataStruct, s.cfg.MaxMaskBytes)
	if err != nil {
		return nil, maskDecodeStatus("data", err)
	}
	op, err := maskFromStruct(opStruct, s.cfg.MaxMaskBytes)
	if err != nil {
		return nil, maskDecodeStatus("operation", err)
	}

	diags := mask.Compose(data, op)

	composed, err := structFromMask(data)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"mask":        structpb.NewStructValue(composed),
			"diagnostics": diagnosticsValue(diags),
		},
	}, nil
}

// ComposeWithTemplate loads the stored default projection for a resource and
// composes the caller's selector against it. The stored template is the
// shared side: it is cloned before composition and never mutated, so one
// cached tree serves concurrent calls. Returns a response envelope carrying
// the composed projection and any payload the caller asked to be echoed.
func (s *ProjectionAPIService) ComposeWithTemplate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		return nil, status.Error(codes.Internal, "missing tenant_id in context")
	}

	resource, err := stringField(req, "resource")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := validateResource(resource); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	selectorStruct, err := objectField(req, "selector")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	selector, err := maskFromStruct(selectorStruct, s.cfg.MaxMaskBytes)
	if err != nil {
		return nil, maskDecodeStatus("selector", err)
	}

	template, err := s.loadTemplate(tenantID, resource)
	if err != nil {
		if errors.Is(err, types.ErrTemplateNotFound) {
			return nil, status.Error(codes.NotFound, fmt.Sprintf("no template for resource %q", resource))
		}
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	// Template is shared; compose into a private clone.
	working, err := template.Clone()
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to clone template: %v", err))
	}

	diags := mask.Compose(working, selector)

	projection, err := working.Encode()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	envelope := types.ResponseEnvelope{
		Status:     http.StatusOK,
		Projection: types.Mask(projection),
	}
	if len(diags) > 0 {
		envelope.Status = http.StatusMultiStatus
	}
	if payload, ok := req.Fields["payload"]; ok {
		raw, err := payload.MarshalJSON()
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "payload must be JSON-representable")
		}
		envelope.Payload = raw
	}

	resp, err := envelopeToStruct(envelope)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	resp.Fields["diagnostics"] = diagnosticsValue(diags)
	return resp, nil
}

// loadTemplate returns the decoded template for a tenant and resource,
// consulting the in-memory cache before the database.
func (s *ProjectionAPIService) loadTemplate(tenantID, resource string) (*mask.Node, error) {
	if cached := s.cachedTemplate(tenantID, resource); cached != nil {
		return cached, nil
	}

	row, err := s.getTemplateRow(tenantID, resource)
	if err != nil {
		return nil, err
	}

	node, err := mask.DecodeComplex(json.RawMessage(row.Mask))
	if err != nil {
		return nil, fmt.Errorf("stored template for %q is not a valid mask: %w", resource, err)
	}

	s.storeTemplate(tenantID, resource, node)
	return node, nil
}

// envelopeToStruct renders the response envelope in wire form.
func envelopeToStruct(envelope types.ResponseEnvelope) (*structpb.Struct, error) {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize envelope: %w", err)
	}
	var s structpb.Struct
	if err := s.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to build envelope response: %w", err)
	}
	if s.Fields == nil {
		s.Fields = make(map[string]*structpb.Value)
	}
	return &s, nil
}

// maskDecodeStatus maps mask decoding failures to gRPC statuses. Size and
// shape violations are caller errors.
func maskDecodeStatus(field string, err error) error {
	switch {
	case errors.Is(err, types.ErrMaskTooDeep),
		errors.Is(err, types.ErrMaskTooLarge),
		errors.Is(err, types.ErrMaskNotComplex):
		return status.Error(codes.InvalidArgument, fmt.Sprintf("%s: %v", field, err))
	default:
		return status.Error(codes.Internal, fmt.Sprintf("%s: %v", field, err))
	}
}
