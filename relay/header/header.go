// Package header provides header filtering for the relay.
//
// The relay sits between a chat client and an upstream LLM provider:
//
//	Client <--> Relay <--> Upstream LLM Provider
//
// The relay builds the upstream body itself and authenticates with its own
// credential, so only descriptive client headers travel upstream, and only
// content headers travel back.
package header

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler manages headers between relay connections.
type Handler struct{}

// NewHandler creates a new header Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// skipRequest is the set of request headers (client --> relay --> upstream)
// that are not forwarded to the upstream LLM provider.
var skipRequest = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authorization": {},
	"Proxy-Connection":    {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},

	// Rewritten by Go's http.Transport to match the upstream URL.
	"Host": {},

	// Stripped so http.Transport negotiates gzip itself and hands back a
	// decompressed body.
	"Accept-Encoding": {},

	// The upstream body is rebuilt as plain JSON, so the client's length,
	// type and encoding do not apply.
	"Content-Length":   {},
	"Content-Type":     {},
	"Content-Encoding": {},

	// Credentials are server-held. A client never gets to pick the upstream
	// identity, and client cookies never leave the relay.
	"Authorization":  {},
	"X-Api-Key":      {},
	"X-Goog-Api-Key": {},
	"Cookie":         {},

	// Browser CORS headers are answered by the relay.
	"Origin":                         {},
	"Referer":                        {},
	"Access-Control-Request-Method":  {},
	"Access-Control-Request-Headers": {},
}

// skipResponse is the set of upstream response headers (client <-- relay <-- upstream)
// that are not copied back to the downstream client.
var skipResponse = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection":        {},
	"Transfer-Encoding": {},

	// The body has already been decompressed by http.Transport. Fiber's
	// compress middleware sets its own encoding and length.
	"Content-Encoding": {},
	"Content-Length":   {},

	// Upstream cookies belong to the relay's upstream session.
	"Set-Cookie": {},

	// CORS is owned by the relay's middleware.
	"Access-Control-Allow-Origin":  {},
	"Access-Control-Allow-Methods": {},
	"Access-Control-Allow-Headers": {},
}

// SetUpstreamRequestHeaders copies request headers from the Fiber context to
// the outgoing http.Request, filtering headers that the relay should not forward
// to the upstream API.
func (h *Handler) SetUpstreamRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := http.CanonicalHeaderKey(string(key))
		if _, skip := skipRequest[k]; !skip {
			req.Header.Set(k, string(value))
		}
	})
}

// SetClientResponseHeaders copies response headers from the upstream API
// http.Response to the Fiber context, filtering headers that the relay should
// not forward back down to the client.
func (h *Handler) SetClientResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for k, v := range resp.Header {
		if _, skip := skipResponse[http.CanonicalHeaderKey(k)]; !skip {
			c.Set(k, strings.Join(v, ", "))
		}
	}
}
