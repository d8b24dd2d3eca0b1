package parts

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("part not found")

// Part is catalog reference data; cost is the unit cost snapshotted into
// inspection line items at submission time.
type Part struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Cost     decimal.Decimal `json:"cost"`
	InStock  bool            `json:"inStock"`
}

type MemoryCatalog struct {
	mu    sync.RWMutex
	parts map[string]Part
}

func NewMemoryCatalog(seed []Part) *MemoryCatalog {
	c := &MemoryCatalog{parts: make(map[string]Part, len(seed))}
	for _, p := range seed {
		c.parts[p.ID] = p
	}
	return c
}

func (c *MemoryCatalog) Lookup(_ context.Context, id string) (*Part, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.parts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// SeedParts is the dev dataset loaded when no database is configured.
func SeedParts() []Part {
	return []Part{
		{ID: "part-compressor", Name: "AC Compressor", Category: "AC System", Cost: decimal.NewFromInt(15000), InStock: true},
		{ID: "part-brake-pads", Name: "Brake Pad Set", Category: "Brakes", Cost: decimal.NewFromInt(3200), InStock: true},
		{ID: "part-battery", Name: "12V Battery", Category: "Electrical", Cost: decimal.NewFromInt(7800), InStock: true},
		{ID: "part-air-filter", Name: "Air Filter", Category: "Engine", Cost: decimal.NewFromInt(650), InStock: true},
		{ID: "part-coolant", Name: "Coolant (1L)", Category: "Engine", Cost: decimal.RequireFromString("449.50"), InStock: true},
	}
}
