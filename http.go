package auth

import (
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// CookieAuth moves session tokens between the Authenticator and the browser.
// Each kind gets its own cookie name so a browser can hold a customer and a
// seller session at the same time.
type CookieAuth struct {
	auth   *Authenticator
	Logger Logger
}

// NewCookieAuth builds the HTTP-facing session helper
func NewCookieAuth(auther *Authenticator) *CookieAuth {
	return &CookieAuth{
		auth:   auther,
		Logger: defLogger{},
	}
}

// LoginCustomer authenticates a customer and, on success, sets the customer
// session cookie on the response.
func (a *CookieAuth) LoginCustomer(ctx router.Context, email, password string) (*Customer, error) {
	token, customer, err := a.auth.LoginCustomer(ctx.Context(), email, password)
	if err != nil {
		a.Logger.Error("customer login error", "error", err)
		return nil, err
	}

	a.SetSessionCookie(ctx, KindCustomer, token)
	return customer, nil
}

// LoginSeller authenticates a seller and, on success, sets the seller session
// cookie on the response.
func (a *CookieAuth) LoginSeller(ctx router.Context, email, password string) (*Seller, error) {
	token, seller, err := a.auth.LoginSeller(ctx.Context(), email, password)
	if err != nil {
		a.Logger.Error("seller login error", "error", err)
		return nil, err
	}

	a.SetSessionCookie(ctx, KindSeller, token)
	return seller, nil
}

// SetSessionCookie writes the session token for the given kind. The cookie
// lives as long as the token does, is never readable from script, and rides
// cross-site requests so a separately hosted storefront can call the API.
func (a *CookieAuth) SetSessionCookie(ctx router.Context, kind Kind, token string) {
	ctx.Cookie(&router.Cookie{
		Name:     cookieNameFor(kind),
		Value:    token,
		Expires:  time.Now().Add(a.auth.Sessions(kind).TTL()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})
}

// ClearSessionCookie terminates the session for the given kind by overwriting
// its cookie with an empty, already expired value. The token itself stays
// valid until its expiry claim passes; logout only removes the browser's copy.
func (a *CookieAuth) ClearSessionCookie(ctx router.Context, kind Kind) {
	ctx.Cookie(&router.Cookie{
		Name:     cookieNameFor(kind),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})
}

func cookieNameFor(kind Kind) string {
	if kind == KindSeller {
		return SellerCookieName
	}
	return CustomerCookieName
}

// WriteError is the single JSON error boundary. Every failure leaves the API
// as a {success:false, message} envelope with the status carried by the rich
// error; anything unclassified becomes a 500 with a generic message.
func WriteError(ctx router.Context, err error) error {
	return writeError(ctx, err, defLogger{})
}

// NewErrorWriter is WriteError with server failures logged through the given
// collaborator instead of the fallback logger.
func NewErrorWriter(logger Logger) router.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return func(ctx router.Context, err error) error {
		return writeError(ctx, err, logger)
	}
}

func writeError(ctx router.Context, err error, logger Logger) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Error(
			"request failed",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	}

	return ctx.JSON(status, map[string]any{
		"success": false,
		"message": richErr.Message,
	})
}
