package auth

import (
	"github.com/goliatone/go-router"
)

// GateConfig configures one authentication gate instance
type GateConfig struct {
	Descriptor KindDescriptor
	// ErrorHandler writes the short-circuit response. Defaults to the JSON
	// failure envelope used across the API.
	ErrorHandler router.ErrorHandler
	Logger       Logger
}

// SessionGate is the authentication gate. It reads the session cookie for
// exactly one principal kind, verifies it, resolves the claims to a live
// principal record, and attaches that principal to the request context.
// Failure is terminal within a request; there is no retry.
func SessionGate(cfg GateConfig) router.MiddlewareFunc {
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = NewErrorWriter(cfg.Logger)
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw := ctx.Cookies(cfg.Descriptor.CookieName)
			if raw == "" {
				return cfg.ErrorHandler(ctx, ErrUnauthenticated)
			}

			claims, err := cfg.Descriptor.Verifier.ValidateSession(raw)
			if err != nil {
				// Expired and tampered credentials both terminate as
				// Unauthenticated; the distinction stays in the logs.
				cfg.Logger.Debug("session gate rejected credential",
					"kind", string(cfg.Descriptor.Kind),
					"expired", IsTokenExpiredError(err),
				)
				return cfg.ErrorHandler(ctx, ErrUnauthenticated)
			}

			principal, err := cfg.Descriptor.Resolve(ctx.Context(), claims)
			if err != nil {
				cfg.Logger.Debug("session gate could not resolve principal",
					"kind", string(cfg.Descriptor.Kind),
				)
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(LocalsKeyFor(cfg.Descriptor.Kind), principal)
			ctx.SetContext(WithPrincipalContext(ctx.Context(), principal))

			return next(ctx)
		}
	}
}
