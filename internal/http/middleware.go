package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/identity"
)

// ClientIDHeader carries the anonymous visitor id used when no user is signed in.
const ClientIDHeader = "X-Client-ID"

// RequestIDMiddleware adds a unique request ID to each request. The id is stored
// under chi's request id key so chi's logger and our handlers report the same one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MaxBodyMiddleware caps request bodies at limit bytes.
func MaxBodyMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getRequestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// ownerFromRequest picks whose cart and sessions the request acts on: the signed-in
// user, else the client id header, else the shared guest cart.
func ownerFromRequest(r *http.Request) string {
	if u, ok := (identity.ContextProvider{}).CurrentUser(r.Context()); ok && u.ID != "" {
		return u.ID
	}
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return "client-" + id
	}
	return cart.DefaultOwner
}
