package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is an enumerated marketplace role. Stringly-typed role checks are
// deliberately avoided; use ParseRole at system boundaries.
type Role string

const (
	// RoleUser is the default role assigned to new customers
	RoleUser Role = "user"
	// RoleAdmin grants access to admin-gated marketplace routes
	RoleAdmin Role = "Admin"
	// RoleSeller tags shop principals; sellers have no role hierarchy
	RoleSeller Role = "seller"
)

// IsValid checks the role against the known set
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSeller:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.IsValid()
}

// Kind discriminates the two principal namespaces. Each kind has its own
// cookie, its own signing secret, and its own collection.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSeller   Kind = "seller"
)

// Address is a customer's saved shipping address, stored inline as JSON
// the way the source system keeps the list ordered on the principal record.
type Address struct {
	ID          uuid.UUID `json:"id,omitempty"`
	Country     string    `json:"country,omitempty"`
	City        string    `json:"city,omitempty"`
	Address1    string    `json:"address1,omitempty"`
	Address2    string    `json:"address2,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty"`
	AddressType string    `json:"address_type,omitempty"`
}

// Customer is the buyer principal model
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:cst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Role          Role       `bun:"role,notnull" json:"role,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	AvatarID      string     `bun:"avatar_id" json:"avatar_id,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	Addresses     []Address  `bun:"addresses,type:jsonb" json:"addresses,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// VerifyPassword compares the given cleartext against the stored hash
func (c *Customer) VerifyPassword(password string) error {
	return ComparePasswordAndHash(password, c.PasswordHash)
}

// Seller is the shop principal model
type Seller struct {
	bun.BaseModel `bun:"table:sellers,alias:slr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ShopName      string     `bun:"shop_name,notnull" json:"shop_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Address       string     `bun:"address" json:"address,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	ZipCode       string     `bun:"zip_code" json:"zip_code,omitempty"`
	AvatarID      string     `bun:"avatar_id" json:"avatar_id,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// VerifyPassword compares the given cleartext against the stored hash
func (s *Seller) VerifyPassword(password string) error {
	return ComparePasswordAndHash(password, s.PasswordHash)
}

// Principal is the shared capability set of the two stored principal kinds.
type Principal interface {
	PrincipalID() uuid.UUID
	PrincipalKind() Kind
	PrincipalEmail() string
	PrincipalRole() Role
	VerifyPassword(password string) error
}

func (c *Customer) PrincipalID() uuid.UUID { return c.ID }
func (c *Customer) PrincipalKind() Kind    { return KindCustomer }
func (c *Customer) PrincipalEmail() string { return c.Email }

// PrincipalRole returns the customer's role, defaulting to RoleUser for
// records created before the role column existed.
func (c *Customer) PrincipalRole() Role {
	if c.Role == "" {
		return RoleUser
	}
	return c.Role
}

func (s *Seller) PrincipalID() uuid.UUID { return s.ID }
func (s *Seller) PrincipalKind() Kind    { return KindSeller }
func (s *Seller) PrincipalEmail() string { return s.Email }
func (s *Seller) PrincipalRole() Role    { return RoleSeller }

var (
	_ Principal = (*Customer)(nil)
	_ Principal = (*Seller)(nil)
)
