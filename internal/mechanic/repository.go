package mechanic

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres-backed directory.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Lookup(ctx context.Context, id string) (*Mechanic, error) {
	const q = `
SELECT id, name, COALESCE(phone,''), specialization, rating, experience_years, available, open_jobs
FROM mechanics
WHERE id = $1
`
	var m Mechanic
	if err := r.db.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.Name, &m.Phone, &m.Specialization, &m.Rating, &m.ExperienceYears, &m.Available, &m.OpenJobs,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) List(ctx context.Context) ([]Mechanic, error) {
	const q = `
SELECT id, name, COALESCE(phone,''), specialization, rating, experience_years, available, open_jobs
FROM mechanics
ORDER BY id
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mechanic
	for rows.Next() {
		var m Mechanic
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone, &m.Specialization, &m.Rating, &m.ExperienceYears, &m.Available, &m.OpenJobs); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) SetAvailability(ctx context.Context, id string, available bool) error {
	const q = `UPDATE mechanics SET available = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert registers or refreshes a mechanic record (used by the seeder).
func (r *Repository) Upsert(ctx context.Context, m Mechanic) error {
	const q = `
INSERT INTO mechanics (id, name, phone, specialization, rating, experience_years, available, open_jobs)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  phone = EXCLUDED.phone,
  specialization = EXCLUDED.specialization,
  rating = EXCLUDED.rating,
  experience_years = EXCLUDED.experience_years,
  available = EXCLUDED.available,
  open_jobs = EXCLUDED.open_jobs,
  updated_at = NOW()
`
	_, err := r.db.Exec(ctx, q, m.ID, m.Name, m.Phone, m.Specialization, m.Rating, m.ExperienceYears, m.Available, m.OpenJobs)
	return err
}
