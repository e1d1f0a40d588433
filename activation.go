package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// AvatarFolder is the remote folder avatar uploads land in
const AvatarFolder = "avatars"

// CustomerSignupMessage is the customer registration request
type CustomerSignupMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone_number"`
	// Avatar is the image payload as a data URI; it is uploaded before the
	// activation token is minted so the token never carries binary data.
	Avatar string `json:"avatar"`
}

func (m CustomerSignupMessage) Type() string { return "customer.signup" }

// Validate enforces the signup payload invariants
func (m CustomerSignupMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(2, 120)),
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&m.Phone, validation.By(optionalPhone)),
	)
}

// SellerSignupMessage is the shop registration request
type SellerSignupMessage struct {
	ShopName string `json:"shop_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone_number"`
	ZipCode  string `json:"zip_code"`
	Avatar   string `json:"avatar"`
}

func (m SellerSignupMessage) Type() string { return "seller.signup" }

// Validate enforces the shop signup payload invariants
func (m SellerSignupMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ShopName, validation.Required, validation.Length(2, 120)),
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&m.Address, validation.Required),
		validation.Field(&m.Phone, validation.Required, validation.By(requiredPhone)),
		validation.Field(&m.ZipCode, validation.Required),
	)
}

// ActivationService runs the two-step registration flow: a signup request
// becomes a short-lived activation token delivered by email, and presenting
// that token creates the persisted principal. Nothing touches storage until
// the token comes back.
type ActivationService struct {
	auth   *Authenticator
	repo   RepositoryManager
	mailer Mailer
	images ImageStore
	logger Logger
}

// NewActivationService wires the activation flow collaborators. The image
// store may be nil when avatar support is disabled.
func NewActivationService(auther *Authenticator, repo RepositoryManager, mailer Mailer, images ImageStore) *ActivationService {
	return &ActivationService{
		auth:   auther,
		repo:   repo,
		mailer: mailer,
		images: images,
		logger: defLogger{},
	}
}

// WithLogger replaces the diagnostic collaborator
func (s *ActivationService) WithLogger(logger Logger) *ActivationService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// BeginCustomerActivation validates a customer signup, stores the avatar,
// mints the activation token, and emails the activation link. The email send
// is awaited; a delivery failure fails the whole call and the caller may
// safely retry the signup.
func (s *ActivationService) BeginCustomerActivation(ctx context.Context, msg CustomerSignupMessage) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled during signup")
	default:
	}

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid signup request").
			WithCode(errors.CodeBadRequest)
	}

	if err := s.failIfRegistered(ctx, KindCustomer, msg.Email); err != nil {
		return err
	}

	avatar, err := s.uploadAvatar(ctx, msg.Avatar)
	if err != nil {
		return err
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		s.discardAvatar(ctx, avatar)
		return err
	}

	claims := &ActivationClaims{
		Kind: KindCustomer,
		Customer: &CustomerCandidate{
			Name:         msg.Name,
			Email:        msg.Email,
			PasswordHash: hash,
			Phone:        msg.Phone,
		},
	}
	if avatar != nil {
		claims.Customer.AvatarID = avatar.ID
		claims.Customer.AvatarURL = avatar.URL
	}

	if err := s.deliverActivation(ctx, msg.Email, msg.Name, claims, avatar); err != nil {
		return err
	}

	s.logger.Info("customer activation email sent", "email", msg.Email)
	return nil
}

// BeginSellerActivation is the shop counterpart of BeginCustomerActivation
func (s *ActivationService) BeginSellerActivation(ctx context.Context, msg SellerSignupMessage) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled during signup")
	default:
	}

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid shop signup request").
			WithCode(errors.CodeBadRequest)
	}

	if err := s.failIfRegistered(ctx, KindSeller, msg.Email); err != nil {
		return err
	}

	avatar, err := s.uploadAvatar(ctx, msg.Avatar)
	if err != nil {
		return err
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		s.discardAvatar(ctx, avatar)
		return err
	}

	claims := &ActivationClaims{
		Kind: KindSeller,
		Seller: &SellerCandidate{
			ShopName:     msg.ShopName,
			Email:        msg.Email,
			PasswordHash: hash,
			Address:      msg.Address,
			Phone:        msg.Phone,
			ZipCode:      msg.ZipCode,
		},
	}
	if avatar != nil {
		claims.Seller.AvatarID = avatar.ID
		claims.Seller.AvatarURL = avatar.URL
	}

	if err := s.deliverActivation(ctx, msg.Email, msg.ShopName, claims, avatar); err != nil {
		return err
	}

	s.logger.Info("seller activation email sent", "email", msg.Email)
	return nil
}

// CompleteActivation verifies an activation token and persists the candidate
// it carries, returning a fresh session token so activation doubles as the
// first login. A token minted for another kind is rejected before storage is
// touched, so a failed completion never leaves a record behind. Replaying a
// consumed token fails with ErrAlreadyRegistered; the unique index on email
// is the authoritative guard when two completions race.
func (s *ActivationService) CompleteActivation(ctx context.Context, kind Kind, raw string) (string, Principal, error) {
	claims, err := s.auth.ActivationTokens().ValidateActivation(raw)
	if err != nil {
		return "", nil, err
	}

	if claims.Kind != kind {
		s.logger.Debug("activation token presented to the wrong endpoint",
			"token_kind", string(claims.Kind),
			"endpoint_kind", string(kind),
		)
		return "", nil, ErrTokenMalformed
	}

	if err := s.failIfRegistered(ctx, claims.Kind, claims.Email()); err != nil {
		return "", nil, err
	}

	var principal Principal

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		switch claims.Kind {
		case KindSeller:
			principal, err = s.createSeller(ctx, tx, claims.Seller)
		default:
			principal, err = s.createCustomer(ctx, tx, claims.Customer)
		}
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return "", nil, ErrAlreadyRegistered
		}
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return "", nil, richErr
		}
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "activation transaction failed")
	}

	token, err := s.auth.Sessions(claims.Kind).IssueSession(principal)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("activation completed",
		"kind", string(claims.Kind),
		"principal_id", principal.PrincipalID().String(),
	)

	return token, principal, nil
}

func (s *ActivationService) createCustomer(ctx context.Context, tx bun.Tx, candidate *CustomerCandidate) (*Customer, error) {
	if candidate == nil {
		return nil, ErrTokenMalformed
	}

	record := &Customer{
		Name:         candidate.Name,
		Email:        candidate.Email,
		PasswordHash: candidate.PasswordHash,
		Phone:        candidate.Phone,
		AvatarID:     candidate.AvatarID,
		AvatarURL:    candidate.AvatarURL,
	}
	if id, err := hashid.NewUUID(candidate.Email); err == nil {
		record.ID = id
	}

	return s.repo.Customers().RegisterTx(ctx, tx, record)
}

func (s *ActivationService) createSeller(ctx context.Context, tx bun.Tx, candidate *SellerCandidate) (*Seller, error) {
	if candidate == nil {
		return nil, ErrTokenMalformed
	}

	record := &Seller{
		ShopName:     candidate.ShopName,
		Email:        candidate.Email,
		PasswordHash: candidate.PasswordHash,
		Address:      candidate.Address,
		Phone:        candidate.Phone,
		ZipCode:      candidate.ZipCode,
		AvatarID:     candidate.AvatarID,
		AvatarURL:    candidate.AvatarURL,
	}
	if id, err := hashid.NewUUID(candidate.Email); err == nil {
		record.ID = id
	}

	return s.repo.Sellers().RegisterTx(ctx, tx, record)
}

// failIfRegistered is the fast path duplicate check. It cannot catch two
// in-flight activations for the same email; storage uniqueness does.
func (s *ActivationService) failIfRegistered(ctx context.Context, kind Kind, email string) error {
	var err error
	switch kind {
	case KindSeller:
		_, err = s.repo.Sellers().GetByEmail(ctx, email)
	default:
		_, err = s.repo.Customers().GetByEmail(ctx, email)
	}

	if err == nil {
		return ErrAlreadyRegistered
	}
	if repository.IsRecordNotFound(err) {
		return nil
	}
	return errors.Wrap(err, errors.CategoryInternal, "failed to check for existing account")
}

func (s *ActivationService) uploadAvatar(ctx context.Context, data string) (*Image, error) {
	if data == "" || s.images == nil {
		return nil, nil
	}

	img, err := s.images.Upload(ctx, data, AvatarFolder)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to store avatar").
			WithCode(errors.CodeInternal).
			WithTextCode(TextCodeUploadFailed)
	}
	return img, nil
}

// discardAvatar undoes an upload whose signup did not go through. Best
// effort; a leaked avatar is a storage cost, not a correctness problem.
func (s *ActivationService) discardAvatar(ctx context.Context, avatar *Image) {
	if avatar == nil || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, avatar.ID); err != nil {
		s.logger.Warn("failed to discard avatar after aborted signup", "avatar_id", avatar.ID)
	}
}

func (s *ActivationService) deliverActivation(ctx context.Context, email, name string, claims *ActivationClaims, avatar *Image) error {
	token, err := s.auth.ActivationTokens().IssueActivation(claims)
	if err != nil {
		s.discardAvatar(ctx, avatar)
		return err
	}

	link := fmt.Sprintf("%s/%s", strings.TrimRight(s.auth.Config().ActivationBaseURL, "/"), token)

	err = s.mailer.Send(ctx, Message{
		To:      email,
		Subject: "Activate your account",
		Body:    fmt.Sprintf("Hello %s, please click on the link to activate your account: %s", name, link),
	})
	if err != nil {
		s.discardAvatar(ctx, avatar)
		return errors.Wrap(err, errors.CategoryOperation, "failed to send activation email").
			WithCode(errors.CodeInternal).
			WithTextCode(TextCodeDeliveryFailed)
	}

	return nil
}

func optionalPhone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return requiredPhone(s)
}

func requiredPhone(value any) error {
	s, _ := value.(string)
	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return fmt.Errorf("must be a valid phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("must be a valid phone number")
	}
	return nil
}
