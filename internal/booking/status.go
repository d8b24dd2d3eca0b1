package booking

import "fmt"

type Status string

const (
	StatusPendingAssignment    Status = "pending_assignment"
	StatusAssigned             Status = "assigned"
	StatusInspectionInProgress Status = "inspection_in_progress"
	StatusInspectionCompleted  Status = "inspection_completed"
	StatusQuotationSent        Status = "quotation_sent"
	StatusApproved             Status = "approved"
	StatusRejected             Status = "rejected"
	StatusWorkInProgress       Status = "work_in_progress"
	StatusWaitingForParts      Status = "waiting_for_parts"
	StatusWorkCompleted        Status = "work_completed"
	StatusInvoiced             Status = "invoiced"
	StatusPaymentCompleted     Status = "payment_completed"
	StatusCancelled            Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	if _, ok := registry[Status(s)]; !ok {
		return "", fmt.Errorf("unknown status: %s", s)
	}
	return Status(s), nil
}

// allowedTransitions is the source-of-truth transition table. Every status
// change in the workflow engine is checked against it; there is no override
// path around it.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPendingAssignment:    {StatusAssigned: true, StatusCancelled: true},
	StatusAssigned:             {StatusInspectionInProgress: true, StatusCancelled: true},
	StatusInspectionInProgress: {StatusInspectionCompleted: true},
	StatusInspectionCompleted:  {StatusQuotationSent: true},
	StatusQuotationSent:        {StatusApproved: true, StatusRejected: true},
	StatusApproved:             {StatusWorkInProgress: true},
	StatusRejected:             {},
	StatusWorkInProgress:       {StatusWaitingForParts: true, StatusWorkCompleted: true},
	StatusWaitingForParts:      {StatusWorkInProgress: true},
	StatusWorkCompleted:        {StatusInvoiced: true},
	StatusInvoiced:             {StatusPaymentCompleted: true},
	StatusPaymentCompleted:     {},
	StatusCancelled:            {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

func AllowedNext(from Status) []Status {
	var out []Status
	for _, s := range statusOrder {
		if allowedTransitions[from][s] {
			out = append(out, s)
		}
	}
	return out
}

func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// statusOrder keeps listing output stable (normal forward order).
var statusOrder = []Status{
	StatusPendingAssignment,
	StatusAssigned,
	StatusInspectionInProgress,
	StatusInspectionCompleted,
	StatusQuotationSent,
	StatusApproved,
	StatusRejected,
	StatusWorkInProgress,
	StatusWaitingForParts,
	StatusWorkCompleted,
	StatusInvoiced,
	StatusPaymentCompleted,
	StatusCancelled,
}

// StatusMeta is presentation and capability metadata attached to a status.
// Label and Color are informational only; the flags are consumed by the
// work-progress path (description requirements, auto-notification).
type StatusMeta struct {
	Label               string `json:"label"`
	Color               string `json:"color"`
	AllowsImageUpload   bool   `json:"allowsImageUpload"`
	RequiresDescription bool   `json:"requiresDescription"`
	AutoNotify          bool   `json:"autoNotify"`
}

var registry = map[Status]StatusMeta{
	StatusPendingAssignment:    {Label: "Pending Assignment", Color: "gray"},
	StatusAssigned:             {Label: "Mechanic Assigned", Color: "blue"},
	StatusInspectionInProgress: {Label: "Inspection In Progress", Color: "blue", AllowsImageUpload: true},
	StatusInspectionCompleted:  {Label: "Inspection Completed", Color: "teal", AllowsImageUpload: true},
	StatusQuotationSent:        {Label: "Quotation Sent", Color: "amber"},
	StatusApproved:             {Label: "Quotation Approved", Color: "green"},
	StatusRejected:             {Label: "Quotation Rejected", Color: "red", RequiresDescription: true},
	StatusWorkInProgress:       {Label: "Work In Progress", Color: "blue", AllowsImageUpload: true, RequiresDescription: true, AutoNotify: true},
	StatusWaitingForParts:      {Label: "Waiting For Parts", Color: "amber", RequiresDescription: true},
	StatusWorkCompleted:        {Label: "Work Completed", Color: "green", AllowsImageUpload: true, AutoNotify: true},
	StatusInvoiced:             {Label: "Invoiced", Color: "purple", AutoNotify: true},
	StatusPaymentCompleted:     {Label: "Payment Completed", Color: "green"},
	StatusCancelled:            {Label: "Cancelled", Color: "red", RequiresDescription: true},
}

func MetaFor(s Status) StatusMeta {
	return registry[s]
}

func AllStatuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}
