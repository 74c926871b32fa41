package access

import (
	"net/http"
)

// Controller is the interface that all access control types should implement.
type Controller interface {
	Limit(next http.Handler) http.Handler
}

// Chain wraps next with the given controllers. The first controller is
// the outermost one, so it sees the request first. Nil controllers are
// skipped.
func Chain(next http.Handler, ctls ...Controller) http.Handler {
	for i := len(ctls) - 1; i >= 0; i-- {
		if ctls[i] == nil {
			continue
		}
		next = ctls[i].Limit(next)
	}
	return next
}

// BodyController bounds the size of request bodies. Reading past MaxBytes
// fails and the handler is expected to answer 400.
type BodyController struct {
	MaxBytes int64
}

// Limit enforces the body size limit while running the next handler.
func (c *BodyController) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.MaxBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, c.MaxBytes)
		}
		next.ServeHTTP(w, r)
	})
}
