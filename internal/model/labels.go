package model

// Backend enum codes for orders and users.
const (
	OrderInbound  = "inbound"
	OrderOutbound = "outbound"

	OrderPass    = "pass"
	OrderWaiting = "waiting"
	OrderReject  = "reject"

	UserEnabled  = 1
	UserDisabled = 0
)

var orderTypeLabels = map[string]string{
	OrderInbound:  "Inbound",
	OrderOutbound: "Outbound",
}

var orderStatusLabels = map[string]string{
	OrderPass:    "Completed",
	OrderWaiting: "Waiting",
	OrderReject:  "Cancelled",
}

// OrderTypeLabel returns the display label for an order type code.
func OrderTypeLabel(code string) string {
	return labelOrCode(orderTypeLabels, code)
}

// OrderStatusLabel returns the display label for an order status code.
func OrderStatusLabel(code string) string {
	return labelOrCode(orderStatusLabels, code)
}

// OrderTypeCodes lists the order type codes in display order.
func OrderTypeCodes() []string {
	return []string{OrderOutbound, OrderInbound}
}

// OrderStatusCodes lists the order status codes in display order.
func OrderStatusCodes() []string {
	return []string{OrderWaiting, OrderPass, OrderReject}
}

// OrderLocked reports whether an order in the given status is read-only.
// Approved and cancelled orders can no longer be edited.
func OrderLocked(status string) bool {
	return status == OrderPass || status == OrderReject
}

// UserStatusLabel returns the display label for the numeric user status.
func UserStatusLabel(r Record) string {
	if n, ok := r.Int("status"); ok && n == UserEnabled {
		return "Enabled"
	}
	return "Disabled"
}

func labelOrCode(labels map[string]string, code string) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return code
}
