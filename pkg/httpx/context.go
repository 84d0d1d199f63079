package httpx

import "context"

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"
	ctxKeyScopes ctxKey = "scopes"
	ctxKeyBearer ctxKey = "bearer"
)

// Principal is what a bearer token resolves to.
type Principal struct {
	UserID   string
	ClientID string
	Scopes   []string
}

func contextWithPrincipal(ctx context.Context, token string, p Principal) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, p.UserID)
	ctx = context.WithValue(ctx, ctxKeyScopes, p.Scopes)
	ctx = context.WithValue(ctx, ctxKeyBearer, token)
	return ctx
}

// UserIDFromContext returns the authenticated user id set by RequireBearer.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyUserID).(string)
	return v, ok && v != ""
}

// ScopesFromContext returns the scopes granted to the bearer token.
func ScopesFromContext(ctx context.Context) []string {
	if v, ok := ctx.Value(ctxKeyScopes).([]string); ok {
		return v
	}
	return nil
}

// BearerFromContext returns the raw token RequireBearer accepted.
func BearerFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyBearer).(string)
	return v
}
