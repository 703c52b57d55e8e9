package common

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader carries a caller-supplied request ID
const RequestIDHeader = "X-Request-ID"

// RequestID returns the ID assigned by the RequestID middleware, falling
// back to the X-Request-ID header.
func RequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(RequestIDHeader)
}
