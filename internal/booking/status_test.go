package booking

import (
	"reflect"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	want := map[Status][]Status{
		StatusPendingAssignment:    {StatusAssigned, StatusCancelled},
		StatusAssigned:             {StatusInspectionInProgress, StatusCancelled},
		StatusInspectionInProgress: {StatusInspectionCompleted},
		StatusInspectionCompleted:  {StatusQuotationSent},
		StatusQuotationSent:        {StatusApproved, StatusRejected},
		StatusApproved:             {StatusWorkInProgress},
		StatusRejected:             nil,
		StatusWorkInProgress:       {StatusWaitingForParts, StatusWorkCompleted},
		StatusWaitingForParts:      {StatusWorkInProgress},
		StatusWorkCompleted:        {StatusInvoiced},
		StatusInvoiced:             {StatusPaymentCompleted},
		StatusPaymentCompleted:     nil,
		StatusCancelled:            nil,
	}

	for from, next := range want {
		got := AllowedNext(from)
		if !reflect.DeepEqual(got, next) {
			t.Errorf("AllowedNext(%s) = %v, want %v", from, got, next)
		}
	}

	// Everything not listed is forbidden.
	for _, from := range AllStatuses() {
		allowed := map[Status]bool{}
		for _, s := range want[from] {
			allowed[s] = true
		}
		for _, to := range AllStatuses() {
			if CanTransition(from, to) != allowed[to] {
				t.Errorf("CanTransition(%s, %s) = %v", from, to, !allowed[to])
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[Status]bool{
		StatusRejected:         true,
		StatusPaymentCompleted: true,
		StatusCancelled:        true,
	}
	for _, s := range AllStatuses() {
		if IsTerminal(s) != terminal[s] {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, IsTerminal(s), terminal[s])
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("work_in_progress")
	if err != nil || s != StatusWorkInProgress {
		t.Fatalf("ParseStatus(work_in_progress) = %v, %v", s, err)
	}
	if _, err := ParseStatus("WORK_IN_PROGRESS"); err == nil {
		t.Fatalf("expected error for wrong case")
	}
	if _, err := ParseStatus("repainting"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestStatusMetaFlags(t *testing.T) {
	autoNotify := map[Status]bool{
		StatusWorkInProgress: true,
		StatusWorkCompleted:  true,
		StatusInvoiced:       true,
	}
	for _, s := range AllStatuses() {
		if MetaFor(s).AutoNotify != autoNotify[s] {
			t.Errorf("AutoNotify(%s) = %v, want %v", s, MetaFor(s).AutoNotify, autoNotify[s])
		}
		if MetaFor(s).Label == "" {
			t.Errorf("status %s has no label", s)
		}
	}
	if !MetaFor(StatusWorkInProgress).RequiresDescription {
		t.Errorf("work_in_progress should require a description")
	}
	if MetaFor(StatusWorkCompleted).RequiresDescription {
		t.Errorf("work_completed should not require a description")
	}
	if !MetaFor(StatusInspectionInProgress).AllowsImageUpload {
		t.Errorf("inspection_in_progress should allow image upload")
	}
}
