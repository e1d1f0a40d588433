package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// AuthController exposes the activation and session flows as a JSON API
type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Auther       *Authenticator
	Cookies      *CookieAuth
	Activation   *ActivationService
	ErrorHandler router.ErrorHandler
}

// AuthControllerOption mutates the controller during construction
type AuthControllerOption func(*AuthController) *AuthController

// WithController sets the collaborators in one shot
func WithController(repo RepositoryManager, auther *Authenticator, activation *ActivationService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		c.Auther = auther
		c.Activation = activation
		return c
	}
}

// WithControllerLogger sets the diagnostic collaborator
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

// WithControllerDebug toggles payload dumps on the console
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// NewAuthController builds the controller, panicking on missing collaborators
// since route registration without them is a wiring bug, not a runtime state.
func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = NewErrorWriter(c.Logger)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Activation == nil {
		panic("Missing ActivationService in auth controller...")
	}

	if c.Cookies == nil {
		c.Cookies = NewCookieAuth(c.Auther)
	}

	return c
}

// RegisterAuthRoutes mounts the customer and seller route surfaces
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	customerGate := SessionGate(GateConfig{
		Descriptor:   controller.Auther.Descriptor(KindCustomer),
		ErrorHandler: controller.ErrorHandler,
		Logger:       controller.Logger,
	})
	sellerGate := SessionGate(GateConfig{
		Descriptor:   controller.Auther.Descriptor(KindSeller),
		ErrorHandler: controller.ErrorHandler,
		Logger:       controller.Logger,
	})
	adminOnly := RequireAnyOfWithHandler(controller.ErrorHandler, RoleAdmin)

	app.Post("/create-user", controller.CreateUser).SetName("customer.signup")
	app.Post("/activation", controller.ActivateCustomer).SetName("customer.activation")
	app.Post("/login-user", controller.LoginUser).SetName("customer.login")
	app.Get("/getuser", customerGate(controller.GetUser)).SetName("customer.profile")
	app.Get("/logout", customerGate(controller.Logout)).SetName("customer.logout")
	app.Put("/update-user-info", customerGate(controller.UpdateUserInfo)).SetName("customer.update")
	app.Delete("/delete-user-address/:id", customerGate(controller.DeleteUserAddress)).SetName("customer.address.delete")
	app.Get("/admin-all-users", customerGate(adminOnly(controller.AdminAllUsers))).SetName("admin.users")

	app.Post("/create-shop", controller.CreateShop).SetName("seller.signup")
	app.Post("/shop/activation", controller.ActivateSeller).SetName("seller.activation")
	app.Post("/login-shop", controller.LoginShop).SetName("seller.login")
	app.Get("/getseller", sellerGate(controller.GetSeller)).SetName("seller.profile")
	app.Get("/shop/logout", sellerGate(controller.ShopLogout)).SetName("seller.logout")
	app.Put("/update-shop-info", sellerGate(controller.UpdateShopInfo)).SetName("seller.update")
}

// CreateUser starts a customer activation
func (a *AuthController) CreateUser(ctx router.Context) error {
	payload := new(CustomerSignupMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(map[string]string{"email": payload.Email}))
	}

	if err := a.Activation.BeginCustomerActivation(ctx.Context(), *payload); err != nil {
		a.Logger.Error("customer signup error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"success": true,
		"message": fmt.Sprintf("please check your email:- %s to activate your account!", payload.Email),
	})
}

// CreateShop starts a seller activation
func (a *AuthController) CreateShop(ctx router.Context) error {
	payload := new(SellerSignupMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(map[string]string{"email": payload.Email}))
	}

	if err := a.Activation.BeginSellerActivation(ctx.Context(), *payload); err != nil {
		a.Logger.Error("seller signup error", "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"success": true,
		"message": fmt.Sprintf("please check your email:- %s to activate your shop!", payload.Email),
	})
}

// ActivationRequest carries the token presented back from the emailed link
type ActivationRequest struct {
	ActivationToken string `json:"activation_token"`
}

// Validate enforces the payload invariants
func (r ActivationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ActivationToken, validation.Required),
	)
}

// ActivateCustomer consumes an activation token and logs the new customer in
func (a *AuthController) ActivateCustomer(ctx router.Context) error {
	return a.activate(ctx, KindCustomer)
}

// ActivateSeller consumes an activation token and logs the new seller in
func (a *AuthController) ActivateSeller(ctx router.Context) error {
	return a.activate(ctx, KindSeller)
}

func (a *AuthController) activate(ctx router.Context, kind Kind) error {
	payload := new(ActivationRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	token, principal, err := a.Activation.CompleteActivation(ctx.Context(), kind, payload.ActivationToken)
	if err != nil {
		a.Logger.Error("activation error", "kind", string(kind), "error", err)
		return a.ErrorHandler(ctx, err)
	}

	a.Cookies.SetSessionCookie(ctx, kind, token)

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"success": true,
		"user":    principal,
	})
}

// LoginRequest is the credential payload for both kinds
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate enforces the payload invariants
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginUser authenticates a customer and sets the session cookie
func (a *AuthController) LoginUser(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	customer, err := a.Cookies.LoginCustomer(ctx, payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    customer,
	})
}

// LoginShop authenticates a seller and sets the seller session cookie
func (a *AuthController) LoginShop(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	seller, err := a.Cookies.LoginSeller(ctx, payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"seller":  seller,
	})
}

// GetUser returns the authenticated customer's own record
func (a *AuthController) GetUser(ctx router.Context) error {
	customer, ok := CustomerFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    customer,
	})
}

// GetSeller returns the authenticated seller's own record
func (a *AuthController) GetSeller(ctx router.Context) error {
	seller, ok := SellerFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"seller":  seller,
	})
}

// Logout terminates the customer session by expiring its cookie
func (a *AuthController) Logout(ctx router.Context) error {
	a.Cookies.ClearSessionCookie(ctx, KindCustomer)
	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"message": "log out successful!",
	})
}

// ShopLogout terminates the seller session by expiring its cookie
func (a *AuthController) ShopLogout(ctx router.Context) error {
	a.Cookies.ClearSessionCookie(ctx, KindSeller)
	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"message": "log out successful!",
	})
}

// UpdateUserRequest is the profile update payload. The password is required
// again so a stolen session cookie alone cannot rewrite the account.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone_number"`
}

// Validate enforces the payload invariants
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateUserInfo re-authenticates and updates the customer profile
func (a *AuthController) UpdateUserInfo(ctx router.Context) error {
	customer, ok := CustomerFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	payload := new(UpdateUserRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	if err := customer.VerifyPassword(payload.Password); err != nil {
		return a.ErrorHandler(ctx, ErrMismatchedHashAndPassword)
	}

	customer.Name = payload.Name
	customer.Email = payload.Email
	customer.Phone = payload.Phone

	updated, err := a.Repo.Customers().Update(ctx.Context(), customer)
	if err != nil {
		a.Logger.Error("customer update error", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to update account"))
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    updated,
	})
}

// UpdateShopRequest is the shop profile update payload
type UpdateShopRequest struct {
	ShopName    string `json:"shop_name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone_number"`
	ZipCode     string `json:"zip_code"`
}

// Validate enforces the payload invariants
func (r UpdateShopRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ShopName, validation.Required, validation.Length(2, 120)),
		validation.Field(&r.Address, validation.Required),
		validation.Field(&r.ZipCode, validation.Required),
	)
}

// UpdateShopInfo updates the seller profile
func (a *AuthController) UpdateShopInfo(ctx router.Context) error {
	seller, ok := SellerFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	payload := new(UpdateShopRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	seller.ShopName = payload.ShopName
	seller.Description = payload.Description
	seller.Address = payload.Address
	seller.Phone = payload.Phone
	seller.ZipCode = payload.ZipCode

	updated, err := a.Repo.Sellers().Update(ctx.Context(), seller)
	if err != nil {
		a.Logger.Error("seller update error", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to update shop"))
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"seller":  updated,
	})
}

// DeleteUserAddress removes one saved address from the customer's list
func (a *AuthController) DeleteUserAddress(ctx router.Context) error {
	customer, ok := CustomerFromContext(ctx.Context())
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	addressID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return a.ErrorHandler(ctx, errors.New("invalid address id", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest))
	}

	updated, err := a.Repo.Customers().RemoveAddress(ctx.Context(), customer.ID, addressID)
	if err != nil {
		a.Logger.Error("address delete error", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to delete address"))
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    updated,
	})
}

// AdminAllUsers lists every customer, newest first. Admin role required.
func (a *AuthController) AdminAllUsers(ctx router.Context) error {
	users, err := a.Repo.Customers().ListAll(ctx.Context())
	if err != nil {
		a.Logger.Error("admin user list error", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryInternal, "failed to list users"))
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}

func bindError(err error) error {
	return errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body").
		WithCode(errors.CodeBadRequest)
}

func validationError(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, "invalid request").
		WithCode(errors.CodeBadRequest)
}
