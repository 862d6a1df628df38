package enums

// PaymentStatus is the two-state lifecycle of a payment record. Records are
// always created pending; only the admin accept transition writes paid.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (p PaymentStatus) String() string {
	return string(p)
}

// IsTerminal reports whether no further transition is allowed.
func (p PaymentStatus) IsTerminal() bool {
	return p == PaymentStatusPaid
}

// Normalize folds every non-paid value, including legacy free-form strings,
// into pending.
func (p PaymentStatus) Normalize() PaymentStatus {
	if p.IsTerminal() {
		return PaymentStatusPaid
	}
	return PaymentStatusPending
}
