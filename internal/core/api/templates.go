package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mwrona/maskfold/internal/core/auth"
	"github.com/mwrona/maskfold/internal/types"
)

// templateRow mirrors the templates table.
// Timestamps stored as RFC3339 strings for cross-driver consistency.
type templateRow struct {
	TemplateID string `db:"template_id"`
	Resource   string `db:"resource"`
	Mask       string `db:"mask"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

// PutTemplate stores or replaces the default projection for a resource.
// The mask is validated and re-encoded before storage so the database only
// ever holds decodable templates.
func (s *ProjectionAPIService) PutTemplate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
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

	maskStruct, err := objectField(req, "mask")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	node, err := maskFromStruct(maskStruct, s.cfg.MaxMaskBytes)
	if err != nil {
		return nil, maskDecodeStatus("mask", err)
	}
	encoded, err := node.Encode()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	now := time.Now().UTC().Format(time.RFC3339)
	templateID := types.NewTemplateID()

	// On conflict the existing template_id and created_at survive; only mask
	// and updated_at change.
	_, err = s.queries.Exec("upsert-template",
		string(templateID), tenantID, resource, string(encoded), now, now)
	if err != nil {
		return nil, status.Error(codes.Unavailable, fmt.Sprintf("failed to store template: %v", err))
	}

	// Read back to report the canonical template_id (unchanged on update).
	row, err := s.getTemplateRow(tenantID, resource)
	if err != nil {
		return nil, status.Error(codes.Unavailable, fmt.Sprintf("failed to read stored template: %v", err))
	}

	s.storeTemplate(tenantID, resource, node)

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"template_id": structpb.NewStringValue(row.TemplateID),
			"resource":    structpb.NewStringValue(resource),
		},
	}, nil
}

// GetTemplate returns the stored default projection for a resource.
func (s *ProjectionAPIService) GetTemplate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
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

	row, err := s.getTemplateRow(tenantID, resource)
	if err != nil {
		if errors.Is(err, types.ErrTemplateNotFound) {
			return nil, status.Error(codes.NotFound, fmt.Sprintf("no template for resource %q", resource))
		}
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	var maskStruct structpb.Struct
	if err := maskStruct.UnmarshalJSON([]byte(row.Mask)); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("stored template for %q is corrupt: %v", resource, err))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"template_id": structpb.NewStringValue(row.TemplateID),
			"resource":    structpb.NewStringValue(row.Resource),
			"mask":        structpb.NewStructValue(&maskStruct),
			"created_at":  structpb.NewStringValue(row.CreatedAt),
			"updated_at":  structpb.NewStringValue(row.UpdatedAt),
		},
	}, nil
}

// ListTemplates returns template metadata for the tenant, ordered by
// resource name. Mask bodies are omitted; use GetTemplate for content.
func (s *ProjectionAPIService) ListTemplates(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		return nil, status.Error(codes.Internal, "missing tenant_id in context")
	}

	var rows []templateRow
	if err := s.queries.Select("list-templates", &rows, tenantID, types.MaxTemplateList); err != nil {
		return nil, status.Error(codes.Unavailable, fmt.Sprintf("failed to list templates: %v", err))
	}

	values := make([]*structpb.Value, len(rows))
	for i, row := range rows {
		values[i] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"template_id": structpb.NewStringValue(row.TemplateID),
				"resource":    structpb.NewStringValue(row.Resource),
				"updated_at":  structpb.NewStringValue(row.UpdatedAt),
			},
		})
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"templates": structpb.NewListValue(&structpb.ListValue{Values: values}),
		},
	}, nil
}

// DeleteTemplate removes the stored default projection for a resource.
// Deleting a missing template is not an error; the response reports whether
// a row was removed.
func (s *ProjectionAPIService) DeleteTemplate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
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

	result, err := s.queries.Exec("delete-template", tenantID, resource)
	if err != nil {
		return nil, status.Error(codes.Unavailable, fmt.Sprintf("failed to delete template: %v", err))
	}
	affected, _ := result.RowsAffected()

	s.invalidateTemplate(tenantID, resource)

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"deleted": structpb.NewBoolValue(affected > 0),
		},
	}, nil
}

// getTemplateRow fetches one template row, mapping missing rows to
// ErrTemplateNotFound.
func (s *ProjectionAPIService) getTemplateRow(tenantID, resource string) (*templateRow, error) {
	var row templateRow
	err := s.queries.Get("get-template", &row, tenantID, resource)
	if err == sql.ErrNoRows {
		return nil, types.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &row, nil
}
