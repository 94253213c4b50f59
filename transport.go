package jsonrpc

// Transport issues prepared JSON-RPC calls over some channel. Implementations
// must be safe for concurrent use: the identifier counter is the only shared
// mutable state the protocol layer requires, and it is updated atomically.
type Transport interface {
	// Prepare builds a call carrying a fresh transport-unique identifier.
	Prepare(method string, params Params) MethodCall

	// Execute sends one call and decodes the reply as a single outcome.
	Execute(call MethodCall) (*Response, error)
}

// BatchTransport is a Transport that can also send an ordered group of calls
// as one JSON-RPC batch. Implementers may offer only the basic capability.
type BatchTransport interface {
	Transport

	// ExecuteBatch sends the calls as a JSON array in submission order and
	// decodes the reply as an ordered list of outcomes. Outcomes arrive in
	// server order; match them to calls by identifier.
	ExecuteBatch(calls []MethodCall) (*Response, error)
}
