package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// SessionVerifier validates raw session tokens without tying callers to a
// specific signing implementation.
type SessionVerifier interface {
	ValidateSession(raw string) (*SessionClaims, error)
}

// TokenService signs and verifies tokens under a single shared secret.
// The activation namespace and each session namespace get their own instance
// so compromise of one secret cannot forge credentials in another.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	logger     Logger
}

// NewTokenService creates a TokenService for one secret/TTL pair
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		logger:     logger,
	}
}

// TTL returns the configured token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// IssueSession builds and signs session claims for the given principal
func (ts *TokenService) IssueSession(p Principal) (string, error) {
	if p == nil {
		return "", errors.New("principal is required", errors.CategoryBadInput)
	}
	return ts.SignClaims(newSessionClaims(p, ts.issuer, ts.ttl))
}

// IssueActivation signs activation claims, stamping issuer and expiry from
// the service's configuration.
func (ts *TokenService) IssueActivation(claims *ActivationClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims.RegisteredClaims.Issuer = ts.issuer
	claims.RegisteredClaims.Subject = claims.Email()
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.ttl))

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key
func (ts *TokenService) SignClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// ValidateSession parses and validates a session token
func (ts *TokenService) ValidateSession(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := ts.parse(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateActivation parses and validates an activation token
func (ts *TokenService) ValidateActivation(raw string) (*ActivationClaims, error) {
	claims := &ActivationClaims{}
	if err := ts.parse(raw, claims); err != nil {
		return nil, err
	}

	if claims.Email() == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// parse verifies signature and expiry, mapping failures to the two
// distinguishable credential errors.
func (ts *TokenService) parse(raw string, claims jwt.Claims) error {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token service encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	if !token.Valid {
		return ErrTokenMalformed
	}

	return nil
}
