package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the long-lived per-request credential payload. It carries
// only the principal's identifier and enough claims to resolve it; never the
// principal record itself.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid,omitempty"`
	Kind Kind   `json:"kind,omitempty"`
	Role Role   `json:"role,omitempty"`
}

// UserID returns the principal identifier, falling back to the subject claim
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// CustomerCandidate is the prospective customer carried inside an activation
// token. The password is hashed before signing; the avatar travels as a
// storage reference only, never the binary.
type CustomerCandidate struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Phone        string `json:"phone_number,omitempty"`
	AvatarID     string `json:"avatar_id,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// SellerCandidate is the prospective seller carried inside an activation token
type SellerCandidate struct {
	ShopName     string `json:"shop_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Address      string `json:"address"`
	Phone        string `json:"phone_number"`
	ZipCode      string `json:"zip_code"`
	AvatarID     string `json:"avatar_id,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// ActivationClaims is the short-lived bridge between registration intent and
// persisted existence. Exactly one candidate is set, matching Kind.
type ActivationClaims struct {
	jwt.RegisteredClaims
	Kind     Kind               `json:"kind"`
	Customer *CustomerCandidate `json:"customer,omitempty"`
	Seller   *SellerCandidate   `json:"seller,omitempty"`
}

// Email returns the candidate's email regardless of kind
func (c *ActivationClaims) Email() string {
	switch {
	case c.Customer != nil:
		return c.Customer.Email
	case c.Seller != nil:
		return c.Seller.Email
	default:
		return ""
	}
}

func newSessionClaims(p Principal, issuer string, ttl time.Duration) *SessionClaims {
	now := time.Now()
	return &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   p.PrincipalID().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:  p.PrincipalID().String(),
		Kind: p.PrincipalKind(),
		Role: p.PrincipalRole(),
	}
}
