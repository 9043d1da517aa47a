package identity

import "context"

// Principal is the verified identity attached to a request.
// It is built from token claims only and never persisted.
type Principal struct {
	SubjectID string `json:"uid"`
	Role      Role   `json:"role"`
}

type ctxKey int

const ctxPrincipal ctxKey = iota

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// FromContext returns the principal attached by the identity middleware.
// ok is false for anonymous requests.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	if !ok || p.SubjectID == "" {
		return Principal{}, false
	}
	return p, true
}
