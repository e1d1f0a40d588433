package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Authenticator is the session flow controller. It authenticates credentials
// against a persisted principal and issues session tokens under the signing
// namespace matching the principal's kind.
type Authenticator struct {
	repo             RepositoryManager
	cfg              *Config
	activationTokens *TokenService
	customerSessions *TokenService
	sellerSessions   *TokenService
	logger           Logger
}

// New validates the configuration and builds an Authenticator with one token
// service per signing namespace.
func New(repo RepositoryManager, cfg *Config) (*Authenticator, error) {
	if repo == nil {
		return nil, errors.New("repository manager is required", errors.CategoryBadInput)
	}
	if cfg == nil {
		return nil, errors.New("config is required", errors.CategoryBadInput)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid auth configuration")
	}

	logger := Logger(defLogger{})

	return &Authenticator{
		repo:             repo,
		cfg:              cfg,
		logger:           logger,
		activationTokens: NewTokenService([]byte(cfg.ActivationSecret), cfg.ActivationTTL, cfg.Issuer, logger),
		customerSessions: NewTokenService([]byte(cfg.CustomerSessionSecret), cfg.SessionTTL, cfg.Issuer, logger),
		sellerSessions:   NewTokenService([]byte(cfg.SellerSessionSecret), cfg.SessionTTL, cfg.Issuer, logger),
	}, nil
}

// WithLogger replaces the diagnostic collaborator
func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
		a.activationTokens = NewTokenService([]byte(a.cfg.ActivationSecret), a.cfg.ActivationTTL, a.cfg.Issuer, logger)
		a.customerSessions = NewTokenService([]byte(a.cfg.CustomerSessionSecret), a.cfg.SessionTTL, a.cfg.Issuer, logger)
		a.sellerSessions = NewTokenService([]byte(a.cfg.SellerSessionSecret), a.cfg.SessionTTL, a.cfg.Issuer, logger)
	}
	return a
}

// Config returns the configuration the authenticator was built with
func (a *Authenticator) Config() *Config {
	return a.cfg
}

// ActivationTokens returns the activation signing namespace
func (a *Authenticator) ActivationTokens() *TokenService {
	return a.activationTokens
}

// Sessions returns the session signing namespace for the given kind
func (a *Authenticator) Sessions(kind Kind) *TokenService {
	if kind == KindSeller {
		return a.sellerSessions
	}
	return a.customerSessions
}

// LoginCustomer authenticates a customer and issues a session token
func (a *Authenticator) LoginCustomer(ctx context.Context, email, password string) (string, *Customer, error) {
	if err := requireLoginFields(email, password); err != nil {
		return "", nil, err
	}

	customer, err := a.repo.Customers().GetByEmail(ctx, email)
	if err != nil {
		return "", nil, loginLookupError(err)
	}

	if err := customer.VerifyPassword(password); err != nil {
		a.logger.Debug("customer login rejected", "reason", "credential mismatch")
		return "", nil, ErrMismatchedHashAndPassword
	}

	token, err := a.customerSessions.IssueSession(customer)
	if err != nil {
		a.logger.Error("failed to issue customer session", "error", err)
		return "", nil, err
	}

	a.logger.Info("customer login", "customer_id", customer.ID.String())
	return token, customer, nil
}

// LoginSeller authenticates a seller and issues a session token
func (a *Authenticator) LoginSeller(ctx context.Context, email, password string) (string, *Seller, error) {
	if err := requireLoginFields(email, password); err != nil {
		return "", nil, err
	}

	seller, err := a.repo.Sellers().GetByEmail(ctx, email)
	if err != nil {
		return "", nil, loginLookupError(err)
	}

	if err := seller.VerifyPassword(password); err != nil {
		a.logger.Debug("seller login rejected", "reason", "credential mismatch")
		return "", nil, ErrMismatchedHashAndPassword
	}

	token, err := a.sellerSessions.IssueSession(seller)
	if err != nil {
		a.logger.Error("failed to issue seller session", "error", err)
		return "", nil, err
	}

	a.logger.Info("seller login", "seller_id", seller.ID.String())
	return token, seller, nil
}

// ResolvePrincipal turns verified session claims into a live principal
// record. Claims minted for another kind never resolve, even if a signing
// secret were ever shared.
func (a *Authenticator) ResolvePrincipal(ctx context.Context, kind Kind, claims *SessionClaims) (Principal, error) {
	if claims == nil || claims.Kind != kind {
		return nil, ErrUnauthenticated
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	var principal Principal
	switch kind {
	case KindSeller:
		principal, err = a.repo.Sellers().FindByID(ctx, id)
	default:
		principal, err = a.repo.Customers().FindByID(ctx, id)
	}

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrPrincipalNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve session principal")
	}

	return principal, nil
}

func requireLoginFields(email, password string) error {
	if email == "" || password == "" {
		return errors.New("please provide all required fields", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}
	return nil
}

// loginLookupError collapses an unknown email into the same credential
// failure a wrong password produces, so login never reveals which addresses
// are registered.
func loginLookupError(err error) error {
	if repository.IsRecordNotFound(err) {
		return ErrMismatchedHashAndPassword
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during login")
}
