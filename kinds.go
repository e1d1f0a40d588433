package auth

import (
	"context"
)

// Cookie names for the two session namespaces. A single browser can hold
// both identities at once because the names never overlap.
const (
	CustomerCookieName = "token"
	SellerCookieName   = "seller_token"
)

// KindDescriptor bundles everything the generic authentication gate needs to
// operate for one principal kind: which cookie to read, which namespace
// verifies it, and how to resolve claims to a live record.
type KindDescriptor struct {
	Kind       Kind
	CookieName string
	Verifier   SessionVerifier
	Resolve    func(ctx context.Context, claims *SessionClaims) (Principal, error)
}

// Descriptor returns the gate descriptor for the given kind
func (a *Authenticator) Descriptor(kind Kind) KindDescriptor {
	k := KindCustomer
	if kind == KindSeller {
		k = KindSeller
	}

	return KindDescriptor{
		Kind:       k,
		CookieName: cookieNameFor(k),
		Verifier:   a.Sessions(k),
		Resolve: func(ctx context.Context, claims *SessionClaims) (Principal, error) {
			return a.ResolvePrincipal(ctx, k, claims)
		},
	}
}
