package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is the aggregate root for one service job, from intake to payment.
// Customer and vehicle details are snapshots captured at booking time, not
// live references. The append-only collections (work progress, additional
// expenses, notification log) only ever grow.
type Booking struct {
	ID            string `json:"id"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	VehicleModel  string `json:"vehicleModel"`
	VehiclePlate  string `json:"vehiclePlate"`

	Status             Status `json:"status"`
	AssignedMechanicID string `json:"assignedMechanicId,omitempty"`

	Inspection         *Inspection         `json:"inspection,omitempty"`
	Quotation          *Quotation          `json:"quotation,omitempty"`
	CustomerApproval   *CustomerApproval   `json:"customerApproval,omitempty"`
	WorkProgressLog    []WorkProgressEntry `json:"workProgressLog,omitempty"`
	AdditionalExpenses []AdditionalExpense `json:"additionalExpenses,omitempty"`
	Invoice            *Invoice            `json:"invoice,omitempty"`
	NotificationLog    []Notification      `json:"notificationLog,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// IssueCategories is the fixed category set an inspection issue must use.
var IssueCategories = []string{
	"Engine",
	"Transmission",
	"Brakes",
	"Suspension",
	"Electrical",
	"AC System",
	"Exhaust",
	"Body Work",
	"General Service",
}

func ValidIssueCategory(c string) bool {
	for _, v := range IssueCategories {
		if v == c {
			return true
		}
	}
	return false
}

// PartUsage is a part line inside an inspection issue. Cost and name are
// snapshotted from the parts catalog when the inspection is submitted.
type PartUsage struct {
	PartID   string          `json:"partId"`
	Name     string          `json:"name"`
	Cost     decimal.Decimal `json:"cost"`
	Quantity int             `json:"quantity"`
}

type InspectionIssue struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Severity    Severity        `json:"severity"`
	Parts       []PartUsage     `json:"parts,omitempty"`
	LaborHours  decimal.Decimal `json:"laborHours"`
	LaborRate   decimal.Decimal `json:"laborRate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Inspection struct {
	ID                 string            `json:"id"`
	MechanicID         string            `json:"mechanicId"`
	Date               time.Time         `json:"date"`
	Issues             []InspectionIssue `json:"issues"`
	Notes              string            `json:"notes,omitempty"`
	EstimatedDays      int               `json:"estimatedDays"`
	TotalEstimatedCost decimal.Decimal   `json:"totalEstimatedCost"`
}

type QuotationItem struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Quotation struct {
	ID            string          `json:"id"`
	BookingID     string          `json:"bookingId"`
	Date          time.Time       `json:"date"`
	Items         []QuotationItem `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	EstimatedDays int             `json:"estimatedDays"`
	ValidUntil    time.Time       `json:"validUntil"`
}

type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// CustomerApproval carries either the approved line items (frozen from the
// quotation) or a rejection reason, never both.
type CustomerApproval struct {
	Status        ApprovalDecision `json:"status"`
	Date          time.Time        `json:"date"`
	ApprovedItems []QuotationItem  `json:"approvedItems,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

type WorkProgressEntry struct {
	Date   time.Time `json:"date"`
	Status Status    `json:"status"`
	Note   string    `json:"note,omitempty"`
	Actor  string    `json:"actor"`
}

type ExpenseType string

const (
	ExpensePart    ExpenseType = "part"
	ExpenseLabor   ExpenseType = "labor"
	ExpenseService ExpenseType = "service"
	ExpenseMisc    ExpenseType = "misc"
)

func ValidExpenseType(t ExpenseType) bool {
	switch t {
	case ExpensePart, ExpenseLabor, ExpenseService, ExpenseMisc:
		return true
	}
	return false
}

type AdditionalExpense struct {
	ID          string          `json:"id"`
	Type        ExpenseType     `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    int             `json:"quantity"`
	Date        time.Time       `json:"date"`
	Actor       string          `json:"actor"`
}

// Contribution is the expense's total share of the invoice.
func (e AdditionalExpense) Contribution() decimal.Decimal {
	return e.Amount.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

type InvoiceItem struct {
	Kind        string          `json:"kind"` // "quotation" or an expense type
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type Invoice struct {
	ID                      string          `json:"id"`
	BookingID               string          `json:"bookingId"`
	Date                    time.Time       `json:"date"`
	QuotationAmount         decimal.Decimal `json:"quotationAmount"`
	AdditionalExpensesTotal decimal.Decimal `json:"additionalExpensesTotal"`
	Subtotal                decimal.Decimal `json:"subtotal"`
	Tax                     decimal.Decimal `json:"tax"`
	Total                   decimal.Decimal `json:"total"`
	Items                   []InvoiceItem   `json:"items"`
}

type NotificationChannel string

const (
	ChannelEmail     NotificationChannel = "email"
	ChannelMessaging NotificationChannel = "messaging"
)

func ValidNotificationChannel(c NotificationChannel) bool {
	return c == ChannelEmail || c == ChannelMessaging
}

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

type Notification struct {
	ID             string              `json:"id"`
	Channel        NotificationChannel `json:"channel"`
	Message        string              `json:"message"`
	SentAt         time.Time           `json:"sentAt"`
	DeliveryStatus DeliveryStatus      `json:"deliveryStatus"`
}

// Clone returns a deep copy. Workflow operations mutate a clone and hand it
// back only on success, so a failed operation can never leave a partially
// mutated booking behind.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	out := *b

	if b.Inspection != nil {
		insp := *b.Inspection
		insp.Issues = make([]InspectionIssue, len(b.Inspection.Issues))
		for i, iss := range b.Inspection.Issues {
			cp := iss
			cp.Parts = append([]PartUsage(nil), iss.Parts...)
			insp.Issues[i] = cp
		}
		out.Inspection = &insp
	}
	if b.Quotation != nil {
		q := *b.Quotation
		q.Items = append([]QuotationItem(nil), b.Quotation.Items...)
		out.Quotation = &q
	}
	if b.CustomerApproval != nil {
		a := *b.CustomerApproval
		a.ApprovedItems = append([]QuotationItem(nil), b.CustomerApproval.ApprovedItems...)
		out.CustomerApproval = &a
	}
	if b.Invoice != nil {
		inv := *b.Invoice
		inv.Items = append([]InvoiceItem(nil), b.Invoice.Items...)
		out.Invoice = &inv
	}
	out.WorkProgressLog = append([]WorkProgressEntry(nil), b.WorkProgressLog...)
	out.AdditionalExpenses = append([]AdditionalExpense(nil), b.AdditionalExpenses...)
	out.NotificationLog = append([]Notification(nil), b.NotificationLog...)
	return &out
}
