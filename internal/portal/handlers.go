package portal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"garageflow/internal/api"
	"garageflow/internal/booking"
	"garageflow/internal/workflow"
	"garageflow/pkg/config"
)

// Handlers serves the public, token-scoped customer portal: the quotation
// view plus the approve and reject actions. There is no session; the link
// token in the URL is the whole identity.
type Handlers struct {
	Bookings *workflow.Service
	Cfg      config.PortalConfig
}

func (h Handlers) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := chi.URLParam(r, "token")
	if token == "" {
		api.WriteError(w, http.StatusBadRequest, workflow.CodeValidationFailed, "missing token")
		return "", false
	}
	bookingID, err := VerifyLinkToken(token, h.Cfg.Secret, time.Now())
	if err != nil {
		api.WriteError(w, http.StatusNotFound, workflow.CodeNotFound, "portal link not found or expired")
		return "", false
	}
	return bookingID, true
}

// View returns the customer's slice of the booking: vehicle, status, the
// quotation, and any decision already made. Internal records (work log,
// expenses, notification log) stay behind the counter.
func (h Handlers) View(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	b, err := h.Bookings.Get(r.Context(), bookingID)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"bookingId":    b.ID,
		"customerName": b.CustomerName,
		"vehicleModel": b.VehicleModel,
		"vehiclePlate": b.VehiclePlate,
		"status":       b.Status,
		"statusLabel":  booking.MetaFor(b.Status).Label,
		"quotation":    b.Quotation,
		"approval":     b.CustomerApproval,
		"invoice":      b.Invoice,
	})
}

type decisionRequest struct {
	Reason string `json:"reason"`
}

func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, booking.DecisionApproved)
}

func (h Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, booking.DecisionRejected)
}

func (h Handlers) decide(w http.ResponseWriter, r *http.Request, decision booking.ApprovalDecision) {
	bookingID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req decisionRequest
	if r.Body != nil {
		// An empty body is fine for approvals.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	b, err := h.Bookings.RecordCustomerApproval(r.Context(), bookingID, decision, req.Reason)
	if err != nil {
		api.WriteDomainError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   b.Status,
		"approval": b.CustomerApproval,
	})
}
