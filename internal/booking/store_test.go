package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	b := &Booking{ID: "bk-1", CustomerName: "Asha", Status: StatusPendingAssignment, CreatedAt: time.Now()}
	require.NoError(t, s.Create(ctx, b))
	require.Error(t, s.Create(ctx, b), "duplicate id must be rejected")

	got, err := s.Get(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.CustomerName)

	// The store hands out clones; mutating them must not leak in.
	got.CustomerName = "Mallory"
	again, err := s.Get(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", again.CustomerName)

	_, err = s.Get(ctx, "bk-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &Booking{ID: "bk-1", Status: StatusPendingAssignment}))

	updated, err := s.Update(ctx, "bk-1", func(b *Booking) (*Booking, error) {
		b.Status = StatusAssigned
		return b, nil
	})
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, updated.Status)

	// A failing fn leaves the stored aggregate untouched.
	boom := errors.New("boom")
	_, err = s.Update(ctx, "bk-1", func(b *Booking) (*Booking, error) {
		b.Status = StatusCancelled
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, got.Status)

	_, err = s.Update(ctx, "bk-missing", func(b *Booking) (*Booking, error) { return b, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &Booking{ID: "bk-1", Status: StatusAssigned}))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "bk-1", func(b *Booking) (*Booking, error) {
				b.WorkProgressLog = append(b.WorkProgressLog, WorkProgressEntry{Status: b.Status, Actor: "staff"})
				return b, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "bk-1")
	require.NoError(t, err)
	assert.Len(t, got.WorkProgressLog, n, "every update must be serialized, none lost")
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Create(ctx, &Booking{ID: "bk-old", CreatedAt: base}))
	require.NoError(t, s.Create(ctx, &Booking{ID: "bk-new", CreatedAt: base.Add(time.Hour)}))

	out, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "bk-new", out[0].ID, "newest first")
	assert.Equal(t, "bk-old", out[1].ID)
}

func TestCloneIsDeep(t *testing.T) {
	b := &Booking{
		ID:     "bk-1",
		Status: StatusInvoiced,
		Inspection: &Inspection{
			Issues: []InspectionIssue{{Category: "Brakes", Parts: []PartUsage{{PartID: "p1", Quantity: 1}}}},
		},
		Quotation:        &Quotation{Items: []QuotationItem{{Category: "Brakes"}}},
		CustomerApproval: &CustomerApproval{Status: DecisionApproved},
		Invoice:          &Invoice{Items: []InvoiceItem{{Kind: "quotation"}}},
		WorkProgressLog:  []WorkProgressEntry{{Actor: "staff"}},
	}

	c := b.Clone()
	c.Inspection.Issues[0].Parts[0].Quantity = 99
	c.Quotation.Items[0].Category = "Engine"
	c.Invoice.Items[0].Kind = "misc"
	c.WorkProgressLog[0].Actor = "intruder"

	assert.Equal(t, 1, b.Inspection.Issues[0].Parts[0].Quantity)
	assert.Equal(t, "Brakes", b.Quotation.Items[0].Category)
	assert.Equal(t, "quotation", b.Invoice.Items[0].Kind)
	assert.Equal(t, "staff", b.WorkProgressLog[0].Actor)

	var nilBooking *Booking
	assert.Nil(t, nilBooking.Clone())
}
