package types

import "errors"

// Sentinel errors for maskfold operations.
var (
	// ErrMaskTooDeep indicates a mask exceeds MaxMaskDepth nesting levels.
	ErrMaskTooDeep = errors.New("mask exceeds maximum nesting depth")

	// ErrMaskTooLarge indicates a serialized mask exceeds MaxMaskBytes.
	ErrMaskTooLarge = errors.New("mask exceeds maximum size")

	// ErrMaskNotComplex indicates a top-level mask is not a nested map.
	ErrMaskNotComplex = errors.New("mask must be a complex value")

	// ErrCloneUnsupported indicates a mask fragment cannot be deep-copied.
	ErrCloneUnsupported = errors.New("mask value cannot be cloned")

	// ErrResourceNameEmpty indicates a template request without a resource.
	ErrResourceNameEmpty = errors.New("resource name is empty")

	// ErrResourceNameTooLong indicates a resource name exceeds
	// MaxResourceNameLength.
	ErrResourceNameTooLong = errors.New("resource name too long")

	// ErrTemplateNotFound indicates no stored projection template exists for
	// the requested tenant and resource.
	ErrTemplateNotFound = errors.New("projection template not found")
)
