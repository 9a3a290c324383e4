package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutrisnap/nutrisnap/pkg/pg"
)

// Receipt is the durable record of a settled payment. One row is written
// per successful charge, keyed by the provider's charge identifier so
// webhook redeliveries cannot double-book a purchase.
type Receipt struct {
	ID               uuid.UUID
	UserID           int64
	Kind             Kind
	Plan             string
	DurationMonths   int
	Product          Product
	Amount           int64
	Currency         string
	ProviderChargeID string
	Payload          string
	CreatedAt        time.Time
}

// Repository persists payment receipts.
type Repository interface {
	// Save inserts a receipt. Returns ErrDuplicatePayment when a receipt
	// with the same provider charge ID already exists.
	Save(ctx context.Context, r Receipt) error
	// ListByUser returns a user's receipts newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]Receipt, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a Repository backed by PostgreSQL.
func NewPgRepository(pool *pgxpool.Pool) Repository {
	if pool == nil {
		panic("payment: pgx pool is required")
	}
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Save(ctx context.Context, receipt Receipt) error {
	const q = `
		INSERT INTO payments (id, user_id, kind, plan, duration_months, product, amount, currency, provider_charge_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, q,
		receipt.ID,
		receipt.UserID,
		string(receipt.Kind),
		receipt.Plan,
		receipt.DurationMonths,
		string(receipt.Product),
		receipt.Amount,
		receipt.Currency,
		receipt.ProviderChargeID,
		receipt.Payload,
		receipt.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicatePayment
		}
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (r *pgRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]Receipt, error) {
	const q = `
		SELECT id, user_id, kind, plan, duration_months, product, amount, currency, provider_charge_id, payload, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		var rec Receipt
		var kind, product string
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&kind,
			&rec.Plan,
			&rec.DurationMonths,
			&product,
			&rec.Amount,
			&rec.Currency,
			&rec.ProviderChargeID,
			&rec.Payload,
			&rec.CreatedAt,
		); err != nil {
			return nil, errors.Join(ErrPersistence, err)
		}
		rec.Kind = Kind(kind)
		rec.Product = Product(product)
		receipts = append(receipts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	return receipts, nil
}
