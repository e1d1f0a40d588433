package auth

import (
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RequireAnyOf is the authorization gate. It must run after an
// authentication gate has attached a principal; a missing principal at this
// point is a wiring bug and fails closed as Unauthenticated, because
// authentication, not authorization, is what is actually missing.
func RequireAnyOf(roles ...Role) router.MiddlewareFunc {
	return RequireAnyOfWithHandler(WriteError, roles...)
}

// RequireAnyOfWithHandler is RequireAnyOf with a custom rejection writer
func RequireAnyOfWithHandler(errorHandler router.ErrorHandler, roles ...Role) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = WriteError
	}

	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			principal, ok := PrincipalFromContext(ctx.Context())
			if !ok || principal == nil {
				return errorHandler(ctx, ErrUnauthenticated)
			}

			role := principal.PrincipalRole()
			if _, ok := allowed[role]; !ok {
				return errorHandler(ctx, errors.New(
					fmt.Sprintf("%s cannot access this resource", role),
					errors.CategoryAuthz,
				).WithCode(errors.CodeForbidden).WithTextCode(TextCodeForbidden))
			}

			return next(ctx)
		}
	}
}
