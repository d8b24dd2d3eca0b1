package notify

import (
	"fmt"

	"garageflow/internal/workflow"
)

// Compose renders the customer-facing message for a semantic event. An
// empty string means the event carries no customer notification.
func Compose(ev workflow.Event) string {
	d := ev.Data
	switch ev.Type {
	case workflow.EventMechanicAssigned:
		return fmt.Sprintf(
			"Hi %s, %s has been assigned to your %s. They will begin the inspection shortly.",
			d["customerName"], d["mechanicName"], d["vehicleModel"],
		)
	case workflow.EventInspectionCompleted:
		return fmt.Sprintf(
			"Hi %s, the inspection of your %s is complete (%s issue(s) found). A quotation will follow.",
			d["customerName"], d["vehicleModel"], d["issueCount"],
		)
	case workflow.EventQuotationSent:
		return fmt.Sprintf(
			"Hi %s, your quotation for the %s is ready: Rs. %s (estimated %s day(s), valid until %s).",
			d["customerName"], d["vehicleModel"], d["total"], d["estimatedDays"], d["validUntil"],
		)
	case workflow.EventWorkApproved:
		return fmt.Sprintf(
			"Thank you %s! Your approval is recorded and work on your %s has been scheduled.",
			d["customerName"], d["vehicleModel"],
		)
	case workflow.EventWorkInProgress:
		msg := fmt.Sprintf("Hi %s, work on your %s is underway.", d["customerName"], d["vehicleModel"])
		if d["note"] != "" {
			msg += " Update: " + d["note"]
		}
		return msg
	case workflow.EventWorkCompleted:
		return fmt.Sprintf(
			"Good news %s, work on your %s is complete. Your invoice is being prepared.",
			d["customerName"], d["vehicleModel"],
		)
	case workflow.EventInvoiceGenerated:
		return fmt.Sprintf(
			"Hi %s, your invoice for the %s is ready. Amount due: Rs. %s.",
			d["customerName"], d["vehicleModel"], d["total"],
		)
	case workflow.EventPaymentReceived:
		return fmt.Sprintf(
			"Hi %s, we have received your payment of Rs. %s. Thank you for choosing us!",
			d["customerName"], d["total"],
		)
	case workflow.EventCustomMessage:
		return d["message"]
	}
	return ""
}
