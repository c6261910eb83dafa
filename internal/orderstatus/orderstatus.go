package orderstatus

import (
	"fmt"
	"sort"
	"strings"

	"greenmarket/internal/model"
)

// Order status names. Stored lowercase; all checks normalise case.
const (
	Pending    = "pending"
	Processing = "processing"
	Confirmed  = "confirmed"
	Packed     = "packed"
	Shipping   = "shipping"
	Delivered  = "delivered"
	Cancelled  = "cancelled"
	Returned   = "returned"
	Refunded   = "refunded"
)

// validTransitions is the directed edge set of the order lifecycle.
// Cancelled and refunded are terminal.
var validTransitions = map[string]map[string]bool{
	Pending:    {Processing: true, Confirmed: true, Cancelled: true},
	Processing: {Confirmed: true, Packed: true, Cancelled: true},
	Confirmed:  {Packed: true, Cancelled: true},
	Packed:     {Shipping: true, Cancelled: true},
	Shipping:   {Delivered: true, Returned: true, Cancelled: true},
	Delivered:  {Returned: true, Refunded: true},
	Returned:   {Refunded: true},
	Cancelled:  {},
	Refunded:   {},
}

// Normalize lowercases and trims a status name.
func Normalize(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsKnown reports whether status is a recognised order status.
func IsKnown(status string) bool {
	_, ok := validTransitions[Normalize(status)]
	return ok
}

// ValidateTransition checks whether an order may move from current to
// requested. A same-state request is always valid (idempotent no-op).
// Unknown names yield UNKNOWN_STATUS, disallowed edges INVALID_TRANSITION
// with the allowed set named in the message.
func ValidateTransition(current, requested string) error {
	current = Normalize(current)
	requested = Normalize(requested)

	if current == "" {
		return model.NewDomainError(model.ErrCodeUnknownStatus, "current status cannot be empty")
	}
	if requested == "" {
		return model.NewDomainError(model.ErrCodeUnknownStatus, "requested status cannot be empty")
	}

	allowed, ok := validTransitions[current]
	if !ok {
		return model.NewDomainError(model.ErrCodeUnknownStatus,
			fmt.Sprintf("unknown current status: %s", current))
	}
	if !IsKnown(requested) {
		return model.NewDomainError(model.ErrCodeUnknownStatus,
			fmt.Sprintf("unknown requested status: %s", requested))
	}

	if current == requested {
		return nil
	}

	if !allowed[requested] {
		names := make([]string, 0, len(allowed))
		for s := range allowed {
			names = append(names, s)
		}
		sort.Strings(names)
		allowedList := strings.Join(names, ", ")
		if allowedList == "" {
			allowedList = "none (final state)"
		}
		return model.NewDomainError(model.ErrCodeInvalidTransition,
			fmt.Sprintf("cannot transition from '%s' to '%s', allowed transitions: %s",
				current, requested, allowedList))
	}

	return nil
}

// CanCancel reports whether an order in the given status may still be
// cancelled.
func CanCancel(status string) bool {
	allowed, ok := validTransitions[Normalize(status)]
	return ok && allowed[Cancelled]
}

// IsFinalState reports whether the given status admits no further
// transitions.
func IsFinalState(status string) bool {
	allowed, ok := validTransitions[Normalize(status)]
	return ok && len(allowed) == 0
}

// All returns every recognised status name.
func All() []string {
	names := make([]string, 0, len(validTransitions))
	for s := range validTransitions {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}
