package types

import "encoding/json"

// ResponseEnvelope pairs a response payload with the projection the
// serialization layer should apply to it. The projection layer fills in the
// composed mask; the resource layer owns the payload and status.
type ResponseEnvelope struct {
	// Status is the HTTP status the response layer intends to send.
	Status int `json:"status"`

	// Payload is the raw record data, untouched by the projection layer.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Projection is the composed mask the serializer applies to Payload.
	Projection Mask `json:"projection,omitempty"`
}
