package jsonrpc

import (
	"encoding/base64"
	"fmt"
	"log"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pquerna/ffjson/ffjson"
	"github.com/valyala/fasthttp"
)

const defaultPoolIdleTimeout = 90 * time.Second

// HTTPTransportBuilder configures an HTTPTransport. Every option is
// pass-through configuration for the fasthttp collaborator; none of them
// change the protocol layer.
type HTTPTransportBuilder struct {
	headers         map[string]string
	timeout         time.Duration
	connectTimeout  time.Duration
	poolIdleTimeout time.Duration
	maxConnsPerHost int
	tcpKeepalive    time.Duration
	tcpNoDelay      bool
	httpsOnly       bool
	logger          *log.Logger
}

// NewHTTPTransportBuilder returns a builder with default configuration.
func NewHTTPTransportBuilder() *HTTPTransportBuilder {
	return &HTTPTransportBuilder{
		headers:         make(map[string]string),
		poolIdleTimeout: defaultPoolIdleTimeout,
		tcpNoDelay:      true,
	}
}

// BasicAuth sets an Authorization header using the Basic scheme. An empty
// password encodes as "username:" for servers that take user-only
// credentials.
func (b *HTTPTransportBuilder) BasicAuth(username, password string) *HTTPTransportBuilder {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return b.Header("Authorization", "Basic "+creds)
}

// BearerAuth sets an Authorization header using the Bearer scheme.
func (b *HTTPTransportBuilder) BearerAuth(token string) *HTTPTransportBuilder {
	return b.Header("Authorization", "Bearer "+token)
}

// Header adds a header sent with every request.
func (b *HTTPTransportBuilder) Header(name, value string) *HTTPTransportBuilder {
	b.headers[name] = value
	return b
}

// Headers adds a set of headers sent with every request.
func (b *HTTPTransportBuilder) Headers(headers map[string]string) *HTTPTransportBuilder {
	for name, value := range headers {
		b.headers[name] = value
	}
	return b
}

// Timeout bounds a whole round trip, from sending the request until the reply
// body has been read. Zero means no timeout.
func (b *HTTPTransportBuilder) Timeout(d time.Duration) *HTTPTransportBuilder {
	b.timeout = d
	return b
}

// ConnectTimeout bounds only the dial phase. Zero means no timeout.
func (b *HTTPTransportBuilder) ConnectTimeout(d time.Duration) *HTTPTransportBuilder {
	b.connectTimeout = d
	return b
}

// PoolIdleTimeout sets how long the collaborator keeps idle connections
// around. Default is 90 seconds.
func (b *HTTPTransportBuilder) PoolIdleTimeout(d time.Duration) *HTTPTransportBuilder {
	b.poolIdleTimeout = d
	return b
}

// MaxConnsPerHost caps the pooled connections per host. Zero means the
// fasthttp default.
func (b *HTTPTransportBuilder) MaxConnsPerHost(max int) *HTTPTransportBuilder {
	b.maxConnsPerHost = max
	return b
}

// TCPKeepalive sets SO_KEEPALIVE with the given probe interval. Zero leaves
// the dialer default.
func (b *HTTPTransportBuilder) TCPKeepalive(d time.Duration) *HTTPTransportBuilder {
	b.tcpKeepalive = d
	return b
}

// TCPNoDelay sets whether sockets have TCP_NODELAY enabled. Default is true.
func (b *HTTPTransportBuilder) TCPNoDelay(enabled bool) *HTTPTransportBuilder {
	b.tcpNoDelay = enabled
	return b
}

// HTTPSOnly restricts the transport to https URLs. Default is false.
func (b *HTTPTransportBuilder) HTTPSOnly(enabled bool) *HTTPTransportBuilder {
	b.httpsOnly = enabled
	return b
}

// Logger installs a debug logger for round trips. The transport is silent
// when no logger is set.
func (b *HTTPTransportBuilder) Logger(l *log.Logger) *HTTPTransportBuilder {
	b.logger = l
	return b
}

// Build returns an HTTPTransport for url using this configuration.
func (b *HTTPTransportBuilder) Build(url string) (*HTTPTransport, error) {
	switch {
	case strings.HasPrefix(url, "https://"):
	case strings.HasPrefix(url, "http://"):
		if b.httpsOnly {
			return nil, fmt.Errorf("jsonrpc: transport is https-only, got %q", url)
		}
	default:
		return nil, fmt.Errorf("jsonrpc: unsupported url %q", url)
	}

	headers := make(map[string]string, len(b.headers))
	for name, value := range b.headers {
		headers[name] = value
	}

	return &HTTPTransport{
		url: url,
		client: &fasthttp.Client{
			Name:                "async-jsonrpc",
			MaxIdleConnDuration: b.poolIdleTimeout,
			MaxConnsPerHost:     b.maxConnsPerHost,
			Dial:                b.dialFunc(),
		},
		headers: headers,
		timeout: b.timeout,
		logger:  b.logger,
	}, nil
}

// dialFunc builds the dialer honoring the connect timeout and TCP options.
// fasthttp layers TLS on top of the returned conn for https URLs.
func (b *HTTPTransportBuilder) dialFunc() fasthttp.DialFunc {
	dialer := &net.Dialer{
		Timeout:   b.connectTimeout,
		KeepAlive: b.tcpKeepalive,
	}
	noDelay := b.tcpNoDelay
	return func(addr string) (net.Conn, error) {
		conn, err := dialer.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			if err := tc.SetNoDelay(noDelay); err != nil {
				conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

// HTTPTransport is a JSON-RPC 2.0 client transport over HTTP POST. One
// instance may be shared by any number of goroutines: the identifier counter
// is atomic and the fasthttp client synchronizes its own connection pool.
type HTTPTransport struct {
	url     string
	id      atomic.Uint64
	client  *fasthttp.Client
	headers map[string]string
	timeout time.Duration
	logger  *log.Logger
}

var (
	_ Transport      = (*HTTPTransport)(nil)
	_ BatchTransport = (*HTTPTransport)(nil)
)

// NewHTTPTransport creates a transport for url with default configuration.
//
// This is the same as NewHTTPTransportBuilder().Build(url).
func NewHTTPTransport(url string) (*HTTPTransport, error) {
	return NewHTTPTransportBuilder().Build(url)
}

// Prepare builds a call carrying the next identifier. The counter starts at 1
// and the read-increment is a single atomic step, so concurrent callers never
// observe a duplicate.
func (t *HTTPTransport) Prepare(method string, params Params) MethodCall {
	return MethodCall{
		Version: Version,
		Method:  method,
		Params:  params,
		ID:      t.id.Add(1),
	}
}

// Execute sends one call.
func (t *HTTPTransport) Execute(call MethodCall) (*Response, error) {
	return t.send(Request{Single: &call})
}

// ExecuteBatch sends the calls as one batch in submission order. Each call
// carries the identifier Prepare assigned to it.
func (t *HTTPTransport) ExecuteBatch(calls []MethodCall) (*Response, error) {
	if len(calls) == 0 {
		return nil, ErrEmptyBatch
	}
	return t.send(Request{Batch: calls})
}

func (t *HTTPTransport) send(r Request) (*Response, error) {
	body, err := ffjson.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(t.url)
	req.Header.SetContentType("application/json")
	for name, value := range t.headers {
		req.Header.Set(name, value)
	}
	req.SetBodyRaw(body)

	start := time.Now()
	if t.timeout > 0 {
		err = t.client.DoTimeout(req, resp, t.timeout)
	} else {
		err = t.client.Do(req, resp)
	}
	ffjson.Pool(body)
	if err != nil {
		return nil, &TransportError{URL: t.url, Err: err}
	}

	// The reply body is decoded regardless of HTTP status: servers answer
	// protocol errors with 4xx plus a well-formed JSON-RPC error body, and
	// those must surface as error outcomes, not transport failures.
	out := new(Response)
	if err := out.UnmarshalJSON(resp.Body()); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if t.logger != nil {
		t.logger.Printf("POST %s: %d output(s) in %s", t.url, len(out.Outputs()), time.Since(start))
	}
	return out, nil
}
