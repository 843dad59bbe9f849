package model

import "time"

// PayoutMethod is the closed set of supported payout destinations.
// Raw strings are validated once at the request boundary.
type PayoutMethod string

const (
	PayoutBankTransfer PayoutMethod = "bank_transfer"
	PayoutPayPal       PayoutMethod = "paypal"
)

// ParsePayoutMethod validates a raw method string.
func ParsePayoutMethod(s string) (PayoutMethod, bool) {
	switch PayoutMethod(s) {
	case PayoutBankTransfer, PayoutPayPal:
		return PayoutMethod(s), true
	}
	return "", false
}

// PayoutStatus tracks a payout request through its admin review.
// Requested and paid payouts count against the artist's available
// balance; rejected ones release the amount back.
type PayoutStatus string

const (
	PayoutRequested PayoutStatus = "requested"
	PayoutPaid      PayoutStatus = "paid"
	PayoutRejected  PayoutStatus = "rejected"
)

// ParsePayoutStatus validates a raw status string.
func ParsePayoutStatus(s string) (PayoutStatus, bool) {
	switch PayoutStatus(s) {
	case PayoutRequested, PayoutPaid, PayoutRejected:
		return PayoutStatus(s), true
	}
	return "", false
}

// Payout is an artist's request to withdraw attributed earnings.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – artist requesting the payout.
//  Reference – external reference (UUID) quoted in notifications
//              and bank statements.
//  Amount    – requested amount in account currency.
//  Method    – destination kind.
//  Detail    – method-specific destination (IBAN, PayPal email).
//  Status    – requested, paid or rejected.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Payout struct {
	ID        uint64       // payouts.id
	UserID    uint64       // payouts.user_id
	Reference string       // payouts.reference
	Amount    float64      // payouts.amount (DECIMAL(12,2))
	Method    PayoutMethod // payouts.method
	Detail    string       // payouts.detail
	Status    PayoutStatus // payouts.status
	CreatedAt time.Time    // payouts.created_at
	UpdatedAt time.Time    // payouts.updated_at
}
