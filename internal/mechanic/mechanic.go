package mechanic

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("mechanic not found")

// Mechanic is read-mostly reference data. The workflow engine reads it to
// validate assignment and snapshot name/phone into notifications.
type Mechanic struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone,omitempty"`
	Specialization  string  `json:"specialization"`
	Rating          float64 `json:"rating"`
	ExperienceYears int     `json:"experienceYears"`
	Available       bool    `json:"available"`
	OpenJobs        int     `json:"openJobs"`
}

// MemoryDirectory serves mechanics from memory; used for dev and tests and
// as the reference directory implementation.
type MemoryDirectory struct {
	mu        sync.RWMutex
	mechanics map[string]Mechanic
}

func NewMemoryDirectory(seed []Mechanic) *MemoryDirectory {
	d := &MemoryDirectory{mechanics: make(map[string]Mechanic, len(seed))}
	for _, m := range seed {
		d.mechanics[m.ID] = m
	}
	return d
}

func (d *MemoryDirectory) Lookup(_ context.Context, id string) (*Mechanic, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.mechanics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (d *MemoryDirectory) List(_ context.Context) ([]Mechanic, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Mechanic, 0, len(d.mechanics))
	for _, m := range d.mechanics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetAvailability flips a mechanic's availability flag (shop admin action).
func (d *MemoryDirectory) SetAvailability(_ context.Context, id string, available bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.mechanics[id]
	if !ok {
		return ErrNotFound
	}
	m.Available = available
	d.mechanics[id] = m
	return nil
}

// SeedMechanics is the dev dataset loaded when no database is configured.
func SeedMechanics() []Mechanic {
	return []Mechanic{
		{ID: "mech-ravi", Name: "Ravi Kumar", Phone: "+91-9800000001", Specialization: "Engine", Rating: 4.7, ExperienceYears: 12, Available: true},
		{ID: "mech-sanjay", Name: "Sanjay Patel", Phone: "+91-9800000002", Specialization: "AC System", Rating: 4.5, ExperienceYears: 8, Available: true},
		{ID: "mech-amit", Name: "Amit Sharma", Phone: "+91-9800000003", Specialization: "Electrical", Rating: 4.2, ExperienceYears: 6, Available: true},
		{ID: "mech-fatima", Name: "Fatima Sheikh", Phone: "+91-9800000004", Specialization: "Brakes", Rating: 4.9, ExperienceYears: 15, Available: false, OpenJobs: 3},
	}
}
