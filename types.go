package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/pquerna/ffjson/ffjson"
	"github.com/riftbit/jrpc2errors"
)

// Version is the JSON-RPC protocol version carried by every call and output.
const Version = "2.0"

// Params holds positional call parameters. A nil Params means the call has no
// parameters and the params member is left off the wire entirely; a non-nil
// empty Params serializes as "params":[].
type Params []interface{}

// ----------------------------------------------------------------------------
// Request side
// ----------------------------------------------------------------------------

// MethodCall is a single JSON-RPC 2.0 call envelope. Calls are produced by
// Transport.Prepare and treated as immutable afterwards.
type MethodCall struct {
	Version string
	Method  string
	Params  Params
	ID      uint64
}

// methodCallWire mirrors MethodCall with the member order and optionality the
// wire format requires.
type methodCallWire struct {
	Version string  `json:"jsonrpc"`
	Method  string  `json:"method"`
	Params  *Params `json:"params,omitempty"`
	ID      uint64  `json:"id"`
}

// MarshalJSON omits the params member only when Params is nil. Struct-tag
// omitempty alone would also drop an empty non-nil list, which must stay on
// the wire as "params":[].
func (c MethodCall) MarshalJSON() ([]byte, error) {
	w := methodCallWire{Version: c.Version, Method: c.Method, ID: c.ID}
	if c.Params != nil {
		w.Params = &c.Params
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a call envelope, preserving the absent-vs-empty
// params distinction.
func (c *MethodCall) UnmarshalJSON(data []byte) error {
	var w methodCallWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Version = w.Version
	c.Method = w.Method
	c.ID = w.ID
	if w.Params != nil {
		c.Params = *w.Params
	} else {
		c.Params = nil
	}
	return nil
}

// Request is the outbound payload shape: exactly one of Single or Batch is
// set. A batch marshals as a JSON array in submission order.
type Request struct {
	Single *MethodCall
	Batch  []MethodCall
}

// MarshalJSON serializes the set variant.
func (r Request) MarshalJSON() ([]byte, error) {
	if r.Single != nil {
		return json.Marshal(r.Single)
	}
	return json.Marshal(r.Batch)
}

// ----------------------------------------------------------------------------
// Response side
// ----------------------------------------------------------------------------

// Output is the outcome of one call: a success carrying a raw result, or a
// failure carrying the server's error object. Error == nil discriminates
// success. ID is nil when the server could not parse the originating call and
// echoed "id":null.
type Output struct {
	Version string             `json:"jsonrpc"`
	Result  json.RawMessage    `json:"result,omitempty"`
	Error   *jrpc2errors.Error `json:"error,omitempty"`
	ID      *uint64            `json:"id"`
}

// Ok reports whether the output is a success.
func (o *Output) Ok() bool { return o.Error == nil }

// Err returns the server error for a failed output, nil for a success.
func (o *Output) Err() error {
	if o.Error == nil {
		return nil
	}
	return o.Error
}

// UnmarshalResult decodes a success result into v. Calling it on a failed
// output returns the server error instead.
func (o *Output) UnmarshalResult(v interface{}) error {
	if o.Error != nil {
		return o.Error
	}
	return ffjson.Unmarshal(o.Result, v)
}

// Response is the decoded reply: Single for a one-call round trip, Batch for
// a batch round trip. Batch outputs stay in server order; a compliant server
// may reorder or drop entries, so correlation against submitted calls goes
// through Output, not position.
type Response struct {
	Single *Output
	Batch  []Output
}

// UnmarshalJSON discriminates on the outer shape of the reply body. Anything
// that is neither an object nor an array is an error.
func (r *Response) UnmarshalJSON(data []byte) error {
	body := bytes.TrimLeft(data, " \t\r\n")
	if len(body) == 0 {
		return errors.New("empty reply body")
	}
	switch body[0] {
	case '{':
		out := new(Output)
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
		r.Single = out
		return nil
	case '[':
		return json.Unmarshal(body, &r.Batch)
	}
	return errors.New("reply is neither an object nor an array")
}

// IsBatch reports whether the response came from a batch round trip.
func (r *Response) IsBatch() bool { return r.Single == nil }

// Outputs returns all outcomes, one element for a single round trip.
func (r *Response) Outputs() []Output {
	if r.Single != nil {
		return []Output{*r.Single}
	}
	return r.Batch
}

// Output returns the outcome echoing the given identifier, or nil when the
// reply carries none. Outcomes whose id the server nulled out never match.
func (r *Response) Output(id uint64) *Output {
	if r.Single != nil {
		if r.Single.ID != nil && *r.Single.ID == id {
			return r.Single
		}
		return nil
	}
	for i := range r.Batch {
		if o := &r.Batch[i]; o.ID != nil && *o.ID == id {
			return o
		}
	}
	return nil
}
