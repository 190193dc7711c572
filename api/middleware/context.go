package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxStoreID contextKey = "store_id"
)

const (
	userIDHeader  = "X-User-Id"
	storeIDHeader = "X-Store-Id"
)

// Actor lifts the caller identity headers into the request context. The
// gateway in front of this service authenticates the session and forwards the
// identifiers, so here they are trusted as-is.
func Actor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := r.Header.Get(userIDHeader); userID != "" {
				ctx = WithUserID(ctx, userID)
			}
			if storeID := r.Header.Get(storeIDHeader); storeID != "" {
				ctx = WithStoreID(ctx, storeID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func StoreIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStoreID).(string); ok {
		return v
	}
	return ""
}

// UserUUIDFromContext parses the context user id, Nil when absent or invalid.
func UserUUIDFromContext(ctx context.Context) uuid.UUID {
	value, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil
	}
	return value
}

// StoreUUIDFromContext parses the context store id, nil when absent or invalid.
func StoreUUIDFromContext(ctx context.Context) *uuid.UUID {
	value, err := uuid.Parse(StoreIDFromContext(ctx))
	if err != nil {
		return nil
	}
	return &value
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithStoreID injects the store identifier into the context for downstream handlers.
func WithStoreID(ctx context.Context, storeID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreID, storeID)
}
