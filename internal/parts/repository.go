package parts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Lookup(ctx context.Context, id string) (*Part, error) {
	const q = `
SELECT id, name, category, cost::text, in_stock
FROM parts
WHERE id = $1
`
	var p Part
	var cost string
	if err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Category, &cost, &p.InStock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, err
	}
	p.Cost = c
	return &p, nil
}

func (r *Repository) Upsert(ctx context.Context, p Part) error {
	const q = `
INSERT INTO parts (id, name, category, cost, in_stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  category = EXCLUDED.category,
  cost = EXCLUDED.cost,
  in_stock = EXCLUDED.in_stock,
  updated_at = NOW()
`
	_, err := r.db.Exec(ctx, q, p.ID, p.Name, p.Category, p.Cost.String(), p.InStock)
	return err
}
