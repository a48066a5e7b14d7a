package core

import "context"

type contextKey string

const ctxKeyOrigin contextKey = "import_origin"

// Origin identifies the client an import came from. The store records it
// next to each committed import.
type Origin struct {
	IPAddress string
	UserAgent string
}

// ContextWithOrigin attaches the client origin to ctx.
func ContextWithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, ctxKeyOrigin, o)
}

// OriginFromContext returns the origin set by ContextWithOrigin, or the
// zero Origin.
func OriginFromContext(ctx context.Context) Origin {
	if o, ok := ctx.Value(ctxKeyOrigin).(Origin); ok {
		return o
	}
	return Origin{}
}
