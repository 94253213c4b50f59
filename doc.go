// Package jsonrpc implements a client-side JSON-RPC 2.0 transport over HTTP.
//
// A transport prepares calls with process-unique numeric identifiers, sends
// them one at a time or as ordered batches, and decodes the reply into
// per-call outcomes:
//
//	t, err := jsonrpc.NewHTTPTransport("http://127.0.0.1:8545/rpc")
//	if err != nil {
//		...
//	}
//	call := t.Prepare("eth_blockNumber", nil)
//	resp, err := t.Execute(call)
//
// Batch replies may come back in any order; use Response.Output to match
// outcomes against submitted calls by identifier. A server-side error for an
// individual call is delivered as data on its Output, never as an Execute
// error; transport and decode failures abort the whole round trip.
//
// The HTTP collaborator is fasthttp. HTTPTransportBuilder exposes its
// authentication, timeout, connection pool and TCP knobs, and TransportConfig
// builds the same thing from a TOML file.
package jsonrpc
