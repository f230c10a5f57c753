package orders

import (
	"fmt"

	"github.com/minhtrandev/shopora-backend/pkg/enums"
	pkgerrors "github.com/minhtrandev/shopora-backend/pkg/errors"
)

// transitions is the single source of truth for the order state machine.
// Forward path: placed -> confirmed -> delivering -> delivered -> completed.
// Cancel branches off any pre-delivery state; a return may be requested once
// the order was delivered or completed.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPlaced:     {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusDelivering, enums.OrderStatusCancelled},
	enums.OrderStatusDelivering: {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:  {enums.OrderStatusCompleted, enums.OrderStatusReturnRequested},
	enums.OrderStatusCompleted:  {enums.OrderStatusReturnRequested},
}

// CanTransition reports whether the state machine allows moving from one
// status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transitionError builds the rejection for a disallowed move. Cancelling a
// completed order gets its own message because the order reached a terminal
// success state rather than merely skipping a step.
func transitionError(from, to enums.OrderStatus) error {
	if to == enums.OrderStatusCancelled && from == enums.OrderStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already completed and can no longer be cancelled")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("order cannot move from %s to %s", from, to)).
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}
