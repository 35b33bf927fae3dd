package auth

import (
	"context"

	"github.com/goliatone/go-lis/internal/permissions"
	"github.com/google/uuid"
)

// Principal is the authenticated caller of a request: an editor with a
// session or a client presenting an API key.
type Principal struct {
	EditorID uuid.UUID
	Username string
	Groups   []string
	APIKeyID uuid.UUID
}

// IsEditor reports whether the principal came from an editor session.
func (p *Principal) IsEditor() bool {
	return p != nil && p.EditorID != uuid.Nil
}

type principalKey struct{}

// WithPrincipal stores p on ctx and installs a permission checker for the
// editor groups.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if p == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, principalKey{}, p)
	if p.IsEditor() {
		ctx = permissions.WithGroups(ctx, p.Groups...)
	}
	return ctx
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
