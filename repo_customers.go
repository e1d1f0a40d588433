package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Customers is the customer principal store
type Customers interface {
	repository.Repository[*Customer]

	GetByEmail(ctx context.Context, email string) (*Customer, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Customer, error)
	Register(ctx context.Context, record *Customer) (*Customer, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Customer) (*Customer, error)
	ListAll(ctx context.Context) ([]*Customer, error)
	RemoveAddress(ctx context.Context, id, addressID uuid.UUID) (*Customer, error)
}

type customers struct {
	repository.Repository[*Customer]
	db *bun.DB
}

var _ Customers = (*customers)(nil)

// NewCustomersRepository wires the generic repository handlers for Customer
func NewCustomersRepository(db *bun.DB) Customers {
	repo := repository.NewRepository[*Customer](db, repository.ModelHandlers[*Customer]{
		NewRecord: func() *Customer { return &Customer{} },
		GetID: func(c *Customer) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Customer, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &customers{Repository: repo, db: db}
}

func (r *customers) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return r.GetByEmailTx(ctx, r.db, email)
}

func (r *customers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Customer, error) {
	record := &Customer{}
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
func (r *customers) FindByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return r.FindByIDTx(ctx, r.db, id)
}

func (r *customers) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Customer, error) {
	record := &Customer{}
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

func (r *customers) Register(ctx context.Context, record *Customer) (*Customer, error) {
	return r.RegisterTx(ctx, r.db, record)
}

func (r *customers) RegisterTx(ctx context.Context, tx bun.IDB, record *Customer) (*Customer, error) {
	prepareCustomerDefaults(record)
	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *customers) ListAll(ctx context.Context) ([]*Customer, error) {
	var records []*Customer
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RemoveAddress drops one saved address from the customer's ordered list
func (r *customers) RemoveAddress(ctx context.Context, id, addressID uuid.UUID) (*Customer, error) {
	record, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := make([]Address, 0, len(record.Addresses))
	for _, addr := range record.Addresses {
		if addr.ID != addressID {
			kept = append(kept, addr)
		}
	}
	record.Addresses = kept

	return r.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func prepareCustomerDefaults(record *Customer) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
