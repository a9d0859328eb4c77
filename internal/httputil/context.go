package httputil

import (
	"context"
	"net/http"
)

type contextKey string

const (
	ownerKey contextKey = "owner"
)

// WithOwner stores the authenticated owner id in the request context
func WithOwner(r *http.Request, owner string) *http.Request {
	ctx := context.WithValue(r.Context(), ownerKey, owner)
	return r.WithContext(ctx)
}

// GetOwner returns the authenticated owner id, or "" when the request is anonymous
func GetOwner(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey).(string)
	return owner
}
