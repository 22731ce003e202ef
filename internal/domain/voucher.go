package domain

import "time"

// Voucher status constants.
const (
	VoucherStatusActive   = "active"
	VoucherStatusInactive = "inactive"
)

// Voucher is a percentage discount code. Value is a whole percentage (1-100).
// MaxDiscountAmount of 0 means uncapped; MinOrderValue of 0 means no floor.
// Remain is the number of redemption slots left; it decrements by exactly one
// per successful redemption and never goes below zero.
type Voucher struct {
	ID                string    `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Value             int       `json:"value"`
	MaxDiscountAmount int64     `json:"max_discount_amount,omitempty"`
	MinOrderValue     int64     `json:"min_order_value,omitempty"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Remain            int       `json:"remain"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// VoucherAssignment is a grant of a voucher to a specific user. Used is
// monotonic false-to-true; UsedAt is set exactly once, at redemption.
type VoucherAssignment struct {
	ID        string     `json:"id"`
	VoucherID string     `json:"voucher_id"`
	UserID    string     `json:"user_id"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsActive reports whether the voucher status allows redemption.
func (v *Voucher) IsActive() bool {
	return v.Status == VoucherStatusActive
}

// WithinWindow reports whether now falls inside the validity window
// (inclusive on both ends).
func (v *Voucher) WithinWindow(now time.Time) bool {
	return !now.Before(v.StartDate) && !now.After(v.EndDate)
}

// MeetsMinimum reports whether the order subtotal reaches the voucher's
// minimum order value.
func (v *Voucher) MeetsMinimum(subtotal int64) bool {
	return subtotal >= v.MinOrderValue
}

// DiscountFor computes the discount amount for the given subtotal: the
// percentage value of the subtotal, capped at MaxDiscountAmount when set.
func (v *Voucher) DiscountFor(subtotal int64) int64 {
	discount := subtotal * int64(v.Value) / 100
	if v.MaxDiscountAmount > 0 && discount > v.MaxDiscountAmount {
		discount = v.MaxDiscountAmount
	}
	return discount
}
