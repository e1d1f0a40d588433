package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes the principal stores
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Customers() Customers
	Sellers() Sellers
}

type mngr struct {
	db        *bun.DB
	customers Customers
	sellers   Sellers
}

// NewRepositoryManager builds the default repository manager over a bun DB
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		customers: NewCustomersRepository(db),
		sellers:   NewSellersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.customers == nil {
		return errors.New("repository customers should be initialized")
	}

	if m.sellers == nil {
		return errors.New("repository sellers should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Customers() Customers {
	return m.customers
}

func (m mngr) Sellers() Sellers {
	return m.sellers
}
