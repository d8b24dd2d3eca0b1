package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"garageflow/pkg/db"
)

// PGStore keeps the aggregate as a jsonb snapshot alongside a few indexed
// scalar columns. Update takes a FOR UPDATE row lock so concurrent
// transitions on one booking serialize at the database.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Create(ctx context.Context, b *Booking) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO bookings (id, status, customer_name, vehicle_plate, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb), $6, $7)
`
	_, err = s.pool.Exec(ctx, q, b.ID, string(b.Status), b.CustomerName, b.VehiclePlate, string(data), b.CreatedAt, b.UpdatedAt)
	return err
}

func (s *PGStore) Get(ctx context.Context, id string) (*Booking, error) {
	const q = `SELECT data FROM bookings WHERE id = $1`
	var data []byte
	if err := s.pool.QueryRow(ctx, q, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (s *PGStore) List(ctx context.Context) ([]*Booking, error) {
	const q = `SELECT data FROM bookings ORDER BY created_at DESC, id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		b, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PGStore) Update(ctx context.Context, id string, fn func(b *Booking) (*Booking, error)) (*Booking, error) {
	var updated *Booking
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		const qSel = `SELECT data FROM bookings WHERE id = $1 FOR UPDATE`
		var data []byte
		if err := tx.QueryRow(ctx, qSel, id).Scan(&data); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		cur, err := decode(data)
		if err != nil {
			return err
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(next)
		if err != nil {
			return err
		}
		const qUpd = `
UPDATE bookings
SET status = $2, data = CAST($3 AS jsonb), updated_at = $4
WHERE id = $1
`
		if _, err := tx.Exec(ctx, qUpd, id, string(next.Status), string(encoded), time.Now().UTC()); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func decode(data []byte) (*Booking, error) {
	var b Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
