package auth

import (
	"context"
)

var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// Locals keys under which gates expose the resolved principal to router
// handlers, one per kind so handlers never pick up the wrong identity.
const (
	CustomerLocalsKey = "customer"
	SellerLocalsKey   = "seller"
)

// LocalsKeyFor maps a kind to its router locals key
func LocalsKeyFor(kind Kind) string {
	if kind == KindSeller {
		return SellerLocalsKey
	}
	return CustomerLocalsKey
}

// WithPrincipalContext attaches the resolved principal to the given context.
// The attachment is request-scoped and never persisted.
func WithPrincipalContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext finds the principal attached by an authentication gate
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	return p, ok
}

// CustomerFromContext returns the attached principal as a customer
func CustomerFromContext(ctx context.Context) (*Customer, bool) {
	p, ok := ctx.Value(principalCtxKey).(*Customer)
	return p, ok
}

// SellerFromContext returns the attached principal as a seller
func SellerFromContext(ctx context.Context) (*Seller, bool) {
	p, ok := ctx.Value(principalCtxKey).(*Seller)
	return p, ok
}
