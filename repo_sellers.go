package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sellers is the shop principal store
type Sellers interface {
	repository.Repository[*Seller]

	GetByEmail(ctx context.Context, email string) (*Seller, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Seller, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Seller, error)
	Register(ctx context.Context, record *Seller) (*Seller, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Seller) (*Seller, error)
}

type sellers struct {
	repository.Repository[*Seller]
	db *bun.DB
}

var _ Sellers = (*sellers)(nil)

// NewSellersRepository wires the generic repository handlers for Seller
func NewSellersRepository(db *bun.DB) Sellers {
	repo := repository.NewRepository[*Seller](db, repository.ModelHandlers[*Seller]{
		NewRecord: func() *Seller { return &Seller{} },
		GetID: func(s *Seller) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Seller, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &sellers{Repository: repo, db: db}
}

func (r *sellers) GetByEmail(ctx context.Context, email string) (*Seller, error) {
	return r.GetByEmailTx(ctx, r.db, email)
}

func (r *sellers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Seller, error) {
	record := &Seller{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}

	return record, nil
}

// FindByID is the uuid-typed record lookup; the identifier-based lookups the
// embedded repository exposes stay string-typed.
func (r *sellers) FindByID(ctx context.Context, id uuid.UUID) (*Seller, error) {
	return r.FindByIDTx(ctx, r.db, id)
}

func (r *sellers) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Seller, error) {
	record := &Seller{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (r *sellers) Register(ctx context.Context, record *Seller) (*Seller, error) {
	return r.RegisterTx(ctx, r.db, record)
}

func (r *sellers) RegisterTx(ctx context.Context, tx bun.IDB, record *Seller) (*Seller, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, record)
}
