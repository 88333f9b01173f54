package domain

// PurchaseOrderStatus represents where a purchase order is in its lifecycle
type PurchaseOrderStatus string

const (
	StatusSubmitted       PurchaseOrderStatus = "submitted"
	StatusApprovedSpv     PurchaseOrderStatus = "approved_spv"
	StatusApprovedFinance PurchaseOrderStatus = "approved_finance"
	StatusPaid            PurchaseOrderStatus = "paid"
	StatusRejected        PurchaseOrderStatus = "rejected"
)

// IsValid checks if the PurchaseOrderStatus is a valid enum value
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusApprovedSpv, StatusApprovedFinance, StatusPaid, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions exist from the status
func (s PurchaseOrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// TransitionAction is a named action that moves a purchase order between statuses
type TransitionAction string

const (
	ActionApproveSpv     TransitionAction = "approve_spv"
	ActionApproveFinance TransitionAction = "approve_finance"
	ActionReject         TransitionAction = "reject"
	ActionPay            TransitionAction = "pay"
)

// IsValid checks if the TransitionAction is a valid enum value
func (a TransitionAction) IsValid() bool {
	switch a {
	case ActionApproveSpv, ActionApproveFinance, ActionReject, ActionPay:
		return true
	}
	return false
}

// transitions is the closed transition table. Any (status, action) pair
// not present here is an invalid transition.
var transitions = map[PurchaseOrderStatus]map[TransitionAction]PurchaseOrderStatus{
	StatusSubmitted: {
		ActionApproveSpv: StatusApprovedSpv,
		ActionReject:     StatusRejected,
	},
	StatusApprovedSpv: {
		ActionApproveFinance: StatusApprovedFinance,
		ActionReject:         StatusRejected,
	},
	StatusApprovedFinance: {
		ActionPay: StatusPaid,
	},
}

// NextStatus resolves the status an action leads to from the current one.
// The second return value is false when the transition is not allowed.
func NextStatus(from PurchaseOrderStatus, action TransitionAction) (PurchaseOrderStatus, bool) {
	to, ok := transitions[from][action]
	return to, ok
}

// CanTransition reports whether the action is allowed from the status
func (s PurchaseOrderStatus) CanTransition(action TransitionAction) bool {
	_, ok := transitions[s][action]
	return ok
}
