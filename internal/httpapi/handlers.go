package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"garageflow/internal/api"
	"garageflow/internal/booking"
	"garageflow/internal/mechanic"
	"garageflow/internal/portal"
	"garageflow/internal/workflow"
	"garageflow/pkg/config"
)

// Directory is the mechanic directory as the HTTP surface needs it: the
// engine's lookup plus listing and availability management.
type Directory interface {
	workflow.MechanicDirectory
	List(ctx context.Context) ([]mechanic.Mechanic, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

type Handlers struct {
	Bookings  *workflow.Service
	Mechanics Directory
	Portal    config.PortalConfig
}

func (h Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in workflow.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Bookings.CreateBooking(r.Context(), in)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, b)
}

// BookingSummary is the list row; detail views carry the full aggregate.
type BookingSummary struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	VehicleModel string          `json:"vehicleModel"`
	VehiclePlate string          `json:"vehiclePlate"`
	Status       booking.Status  `json:"status"`
	StatusLabel  string          `json:"statusLabel"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func summarize(b *booking.Booking) BookingSummary {
	s := BookingSummary{
		ID:           b.ID,
		CustomerName: b.CustomerName,
		VehicleModel: b.VehicleModel,
		VehiclePlate: b.VehiclePlate,
		Status:       b.Status,
		StatusLabel:  booking.MetaFor(b.Status).Label,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	switch {
	case b.Invoice != nil:
		s.Total = b.Invoice.Total
	case b.Quotation != nil:
		s.Total = b.Quotation.Total
	}
	return s
}

func (h Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Bookings.List(r.Context())
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	items := make([]BookingSummary, 0, len(bs))
	for _, b := range bs {
		items = append(items, summarize(b))
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":     b,
		"allowedNext": booking.AllowedNext(b.Status),
	})
}

type assignRequest struct {
	MechanicID string `json:"mechanicId"`
}

func (h Handlers) AssignMechanic(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Bookings.AssignMechanic(r.Context(), chi.URLParam(r, "id"), req.MechanicID)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type actorRequest struct {
	Actor string `json:"actor"`
}

func (h Handlers) StartInspection(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Actor == "" {
		req.Actor = "mechanic"
	}
	b, err := h.Bookings.StartInspection(r.Context(), chi.URLParam(r, "id"), req.Actor)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type inspectionRequest struct {
	Issues        []workflow.IssueInput `json:"issues"`
	Notes         string                `json:"notes"`
	EstimatedDays int                   `json:"estimatedDays"`
}

func (h Handlers) SubmitInspection(w http.ResponseWriter, r *http.Request) {
	var req inspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Bookings.SubmitInspection(r.Context(), chi.URLParam(r, "id"), req.Issues, req.Notes, req.EstimatedDays)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) GenerateQuotation(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.GenerateQuotation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type approvalRequest struct {
	Decision booking.ApprovalDecision `json:"decision"`
	Reason   string                   `json:"reason"`
}

// RecordApproval is the staff-side entry for decisions taken over the
// counter or by phone; customers use the portal endpoints.
func (h Handlers) RecordApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Bookings.RecordCustomerApproval(r.Context(), chi.URLParam(r, "id"), req.Decision, req.Reason)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type progressRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
	Actor  string `json:"actor"`
}

func (h Handlers) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	st, err := booking.ParseStatus(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid status")
		return
	}
	b, err := h.Bookings.UpdateWorkProgress(r.Context(), chi.URLParam(r, "id"), st, req.Note, req.Actor)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type expenseRequest struct {
	Type        booking.ExpenseType `json:"type"`
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	Quantity    int                 `json:"quantity"`
	Actor       string              `json:"actor"`
}

func (h Handlers) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Bookings.AddAdditionalExpense(r.Context(), chi.URLParam(r, "id"), req.Type, req.Description, req.Amount, req.Quantity, req.Actor)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.GenerateInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.RecordPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type cancelRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

func (h Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	if req.Actor == "" {
		req.Actor = "staff"
	}
	b, err := h.Bookings.CancelBooking(r.Context(), chi.URLParam(r, "id"), req.Reason, req.Actor)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

type notifyRequest struct {
	Channel booking.NotificationChannel `json:"channel"`
	Message string                      `json:"message"`
}

func (h Handlers) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	b, err := h.Bookings.SendCustomNotification(r.Context(), chi.URLParam(r, "id"), req.Channel, req.Message)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusAccepted, map[string]any{"bookingId": b.ID, "channel": req.Channel})
}

// CreatePortalLink mints a signed approval link for the booking's customer.
func (h Handlers) CreatePortalLink(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	ttl := time.Duration(h.Portal.TokenTTLHours) * time.Hour
	token, err := portal.MintLinkToken(b.ID, h.Portal.Secret, ttl, time.Now())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to mint portal link")
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"token":     token,
		"url":       h.Portal.BaseURL + "/portal/" + token,
		"expiresAt": time.Now().Add(ttl),
	})
}

func (h Handlers) ListMechanics(w http.ResponseWriter, r *http.Request) {
	ms, err := h.Mechanics.List(r.Context())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": ms})
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h Handlers) SetMechanicAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "invalid json")
		return
	}
	if err := h.Mechanics.SetAvailability(r.Context(), chi.URLParam(r, "id"), req.Available); err != nil {
		api.WriteError(w, http.StatusNotFound, workflow.CodeNotFound, "mechanic not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStatuses exposes the registry table and display metadata so the
// presentation layer renders from one source of truth.
func (h Handlers) ListStatuses(w http.ResponseWriter, r *http.Request) {
	type row struct {
		Status      booking.Status     `json:"status"`
		Meta        booking.StatusMeta `json:"meta"`
		AllowedNext []booking.Status   `json:"allowedNext"`
		Terminal    bool               `json:"terminal"`
	}
	var rows []row
	for _, s := range booking.AllStatuses() {
		rows = append(rows, row{
			Status:      s,
			Meta:        booking.MetaFor(s),
			AllowedNext: booking.AllowedNext(s),
			Terminal:    booking.IsTerminal(s),
		})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": rows})
}
