package types

// TrackableState is returned by GET /trackables/{name}.
type TrackableState struct {
	// Registered (collision-resolved) name of the trackable.
	// example: player
	Name string `json:"name" example:"player"`
	// Current scalar attribute snapshot.
	Attributes map[string]any `json:"attributes"`
	// Invocation count per tracked method.
	Methods map[string]int `json:"methods"`
}

// TrackablesResponse wraps the full registry snapshot returned by GET /trackables.
type TrackablesResponse struct {
	// Attribute snapshots keyed by trackable name.
	Trackables map[string]map[string]any `json:"trackables"`
}

// MethodsResponse wraps the method-count snapshot returned by GET /methods.
type MethodsResponse struct {
	// Method invocation counts keyed by trackable name.
	Methods map[string]map[string]int `json:"methods"`
}

// AttributeResponse is returned by GET /trackables/{name}/attrs/{key}.
type AttributeResponse struct {
	// Attribute key.
	// example: x
	Key string `json:"key" example:"x"`
	// Current value (scalar or null).
	Value any `json:"value"`
}

// WriteRequest is the body of PUT /trackables/{name}/attrs/{key}.
type WriteRequest struct {
	// New value for the attribute.
	Value any `json:"value"`
	// If true, the write is stored without notifying observers.
	// example: false
	Silent bool `json:"silent,omitempty" example:"false"`
}

// InvokeRequest is the body of POST /trackables/{name}/methods/{method}.
type InvokeRequest struct {
	// Positional arguments for the method.
	Args []any `json:"args,omitempty"`
}

// InvokeResponse reports the outcome of a method invocation.
type InvokeResponse struct {
	// Value returned by the method, if any.
	Result any `json:"result,omitempty"`
	// Invocation count for the method after this call.
	// example: 3
	Calls int `json:"calls" example:"3"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unknown trackable: ghost
	Error string `json:"error" example:"unknown trackable: ghost"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
