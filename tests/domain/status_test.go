package domain_test

import (
	"testing"

	"github.com/adicipta/procure-api/internal/domain"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name   string
		from   domain.PurchaseOrderStatus
		action domain.TransitionAction
		want   domain.PurchaseOrderStatus
		ok     bool
	}{
		{"submitted approve_spv", domain.StatusSubmitted, domain.ActionApproveSpv, domain.StatusApprovedSpv, true},
		{"submitted reject", domain.StatusSubmitted, domain.ActionReject, domain.StatusRejected, true},
		{"submitted approve_finance skips supervisor", domain.StatusSubmitted, domain.ActionApproveFinance, "", false},
		{"submitted pay", domain.StatusSubmitted, domain.ActionPay, "", false},
		{"approved_spv approve_finance", domain.StatusApprovedSpv, domain.ActionApproveFinance, domain.StatusApprovedFinance, true},
		{"approved_spv reject", domain.StatusApprovedSpv, domain.ActionReject, domain.StatusRejected, true},
		{"approved_spv approve_spv again", domain.StatusApprovedSpv, domain.ActionApproveSpv, "", false},
		{"approved_spv pay", domain.StatusApprovedSpv, domain.ActionPay, "", false},
		{"approved_finance pay", domain.StatusApprovedFinance, domain.ActionPay, domain.StatusPaid, true},
		{"approved_finance reject after approval", domain.StatusApprovedFinance, domain.ActionReject, "", false},
		{"approved_finance approve_spv", domain.StatusApprovedFinance, domain.ActionApproveSpv, "", false},
		{"paid approve_spv", domain.StatusPaid, domain.ActionApproveSpv, "", false},
		{"paid reject", domain.StatusPaid, domain.ActionReject, "", false},
		{"paid pay again", domain.StatusPaid, domain.ActionPay, "", false},
		{"rejected approve_spv", domain.StatusRejected, domain.ActionApproveSpv, "", false},
		{"rejected pay", domain.StatusRejected, domain.ActionPay, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.NextStatus(tt.from, tt.action)
			if ok != tt.ok {
				t.Errorf("NextStatus(%s, %s) ok = %v, want %v", tt.from, tt.action, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("NextStatus(%s, %s) = %s, want %s", tt.from, tt.action, got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	if !domain.StatusSubmitted.CanTransition(domain.ActionApproveSpv) {
		t.Error("submitted should allow approve_spv")
	}
	if domain.StatusRejected.CanTransition(domain.ActionApproveSpv) {
		t.Error("rejected should not allow approve_spv")
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   domain.PurchaseOrderStatus
		terminal bool
	}{
		{domain.StatusSubmitted, false},
		{domain.StatusApprovedSpv, false},
		{domain.StatusApprovedFinance, false},
		{domain.StatusPaid, true},
		{domain.StatusRejected, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestPurchaseOrderStatusIsValid(t *testing.T) {
	valid := []domain.PurchaseOrderStatus{
		domain.StatusSubmitted, domain.StatusApprovedSpv,
		domain.StatusApprovedFinance, domain.StatusPaid, domain.StatusRejected,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if domain.PurchaseOrderStatus("draft").IsValid() {
		t.Error("draft should not be a valid status")
	}
	if domain.PurchaseOrderStatus("").IsValid() {
		t.Error("empty string should not be a valid status")
	}
}

func TestTransitionActionIsValid(t *testing.T) {
	valid := []domain.TransitionAction{
		domain.ActionApproveSpv, domain.ActionApproveFinance,
		domain.ActionReject, domain.ActionPay,
	}
	for _, a := range valid {
		if !a.IsValid() {
			t.Errorf("%s should be valid", a)
		}
	}
	if domain.TransitionAction("approve").IsValid() {
		t.Error("approve should not be a valid action")
	}
}
