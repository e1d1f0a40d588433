package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/soukhq/souk-auth"
)

func TestNew(t *testing.T) {
	t.Run("builds with valid config", func(t *testing.T) {
		auther, err := auth.New(newStubRepo(), testConfig())
		require.NoError(t, err)
		assert.NotNil(t, auther)
	})

	t.Run("rejects missing repository", func(t *testing.T) {
		_, err := auth.New(nil, testConfig())
		require.Error(t, err)
	})

	t.Run("rejects missing config", func(t *testing.T) {
		_, err := auth.New(newStubRepo(), nil)
		require.Error(t, err)
	})

	t.Run("rejects shared session secrets", func(t *testing.T) {
		cfg := testConfig()
		cfg.SellerSessionSecret = cfg.CustomerSessionSecret

		_, err := auth.New(newStubRepo(), cfg)
		require.Error(t, err)
	})
}

func TestAuthenticator_LoginCustomer(t *testing.T) {
	ctx := context.Background()

	hash, err := auth.HashPassword("correct horse battery")
	require.NoError(t, err)

	repo := newStubRepo()
	repo.customers = newStubCustomers(&auth.Customer{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: hash,
	})

	auther := mustAuthenticator(repo)

	t.Run("issues a session on valid credentials", func(t *testing.T) {
		token, customer, err := auther.LoginCustomer(ctx, "ada@example.com", "correct horse battery")
		require.NoError(t, err)
		require.NotNil(t, customer)
		assert.NotEmpty(t, token)

		claims, err := auther.Sessions(auth.KindCustomer).ValidateSession(token)
		require.NoError(t, err)
		assert.Equal(t, customer.ID.String(), claims.UserID())
		assert.Equal(t, auth.KindCustomer, claims.Kind)
		assert.Equal(t, auth.RoleUser, claims.Role)
	})

	t.Run("customer sessions never verify under the seller secret", func(t *testing.T) {
		token, _, err := auther.LoginCustomer(ctx, "ada@example.com", "correct horse battery")
		require.NoError(t, err)

		_, err = auther.Sessions(auth.KindSeller).ValidateSession(token)
		require.Error(t, err)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, _, err := auther.LoginCustomer(ctx, "ada@example.com", "wrong password")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("unknown email fails exactly like a wrong password", func(t *testing.T) {
		_, _, unknownErr := auther.LoginCustomer(ctx, "ghost@example.com", "whatever")
		require.Error(t, unknownErr)
		assert.ErrorIs(t, unknownErr, auth.ErrMismatchedHashAndPassword)

		_, _, wrongErr := auther.LoginCustomer(ctx, "ada@example.com", "wrong password")
		require.Error(t, wrongErr)
		assert.Equal(t, wrongErr.Error(), unknownErr.Error(),
			"login failures must not reveal which emails are registered")
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, _, err := auther.LoginCustomer(ctx, "", "")
		require.Error(t, err)

		var richErr *errors.Error
		require.True(t, errors.As(err, &richErr))
		assert.Equal(t, errors.CategoryValidation, richErr.Category)
	})
}

func TestAuthenticator_LoginSeller(t *testing.T) {
	ctx := context.Background()

	hash, err := auth.HashPassword("shop secret pass")
	require.NoError(t, err)

	repo := newStubRepo()
	repo.sellers = newStubSellers(&auth.Seller{
		ID:           uuid.New(),
		ShopName:     "Ada's Shop",
		Email:        "shop@example.com",
		PasswordHash: hash,
	})

	auther := mustAuthenticator(repo)

	token, seller, err := auther.LoginSeller(ctx, "shop@example.com", "shop secret pass")
	require.NoError(t, err)
	require.NotNil(t, seller)

	claims, err := auther.Sessions(auth.KindSeller).ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, auth.KindSeller, claims.Kind)
	assert.Equal(t, auth.RoleSeller, claims.Role)
}

func TestAuthenticator_ResolvePrincipal(t *testing.T) {
	ctx := context.Background()

	customer := &auth.Customer{ID: uuid.New(), Email: "ada@example.com"}
	seller := &auth.Seller{ID: uuid.New(), Email: "shop@example.com"}

	repo := newStubRepo()
	repo.customers = newStubCustomers(customer)
	repo.sellers = newStubSellers(seller)

	auther := mustAuthenticator(repo)

	sessionFor := func(t *testing.T, p auth.Principal) *auth.SessionClaims {
		t.Helper()
		token, err := auther.Sessions(p.PrincipalKind()).IssueSession(p)
		require.NoError(t, err)
		claims, err := auther.Sessions(p.PrincipalKind()).ValidateSession(token)
		require.NoError(t, err)
		return claims
	}

	t.Run("resolves customer claims", func(t *testing.T) {
		principal, err := auther.ResolvePrincipal(ctx, auth.KindCustomer, sessionFor(t, customer))
		require.NoError(t, err)
		assert.Equal(t, customer.ID, principal.PrincipalID())
		assert.Equal(t, auth.KindCustomer, principal.PrincipalKind())
	})

	t.Run("resolves seller claims", func(t *testing.T) {
		principal, err := auther.ResolvePrincipal(ctx, auth.KindSeller, sessionFor(t, seller))
		require.NoError(t, err)
		assert.Equal(t, seller.ID, principal.PrincipalID())
	})

	t.Run("rejects claims minted for another kind", func(t *testing.T) {
		_, err := auther.ResolvePrincipal(ctx, auth.KindSeller, sessionFor(t, customer))
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("rejects nil claims", func(t *testing.T) {
		_, err := auther.ResolvePrincipal(ctx, auth.KindCustomer, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("verified claims for a deleted record fail with not found", func(t *testing.T) {
		ghost := &auth.Customer{ID: uuid.New(), Email: "ghost@example.com"}
		claims := sessionFor(t, ghost)

		_, err := auther.ResolvePrincipal(ctx, auth.KindCustomer, claims)
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrPrincipalNotFound)
	})
}
