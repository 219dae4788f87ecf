package api

// Error mapping is done inline in handlers.
// Auth errors mapped in auth package interceptor.
// Database errors map to UNAVAILABLE.
// Validation and mask shape errors map to INVALID_ARGUMENT.
// Missing templates map to NOT_FOUND.
// Malformed mask content is never a gRPC error; it surfaces as diagnostics.
