// Package pricing computes order subtotals, coupon discounts and totals.
package pricing

import (
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/models"
)

const DefaultTaxRate = 0.05

var (
	ErrInvalidCoupon       = errors.New("Invalid coupon code")
	ErrCouponExpired       = errors.New("Coupon has expired")
	ErrCouponLimitExceeded = errors.New("Coupon usage limit exceeded")
	ErrBelowMinimum        = errors.New("order below coupon minimum")
	ErrCouponNotApplicable = errors.New("Coupon is not applicable to these courses")
)

// MinimumOrderError carries the coupon's minimum order amount.
type MinimumOrderError struct {
	Amount float64
}

func (e *MinimumOrderError) Error() string {
	return "Minimum order amount is ৳" + strconv.FormatFloat(e.Amount, 'f', -1, 64)
}

func (e *MinimumOrderError) Is(target error) bool {
	return target == ErrBelowMinimum
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func Subtotal(items []models.OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// CalculateDiscount returns the discount coupon grants on items, never
// negative and never more than the subtotal.
func CalculateDiscount(items []models.OrderItem, coupon *models.Coupon) float64 {
	if coupon == nil {
		return 0
	}
	subtotal := Subtotal(items)

	var discount float64
	switch coupon.Type {
	case models.CouponPercentage:
		discount = subtotal * coupon.Value / 100
	case models.CouponFixed:
		discount = coupon.Value
	}

	if coupon.MaxDiscountAmount > 0 && discount > coupon.MaxDiscountAmount {
		discount = coupon.MaxDiscountAmount
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// ValidateCoupon checks coupon against items at now. A nil or inactive
// coupon is invalid.
func ValidateCoupon(coupon *models.Coupon, items []models.OrderItem, now time.Time) error {
	if coupon == nil || !coupon.IsActive {
		return ErrInvalidCoupon
	}
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return ErrCouponExpired
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return ErrCouponLimitExceeded
	}
	if coupon.MinOrderAmount > 0 && Subtotal(items) < coupon.MinOrderAmount {
		return &MinimumOrderError{Amount: coupon.MinOrderAmount}
	}
	if len(coupon.ApplicableCourses) > 0 && !anyApplicable(coupon.ApplicableCourses, items) {
		return ErrCouponNotApplicable
	}
	return nil
}

func anyApplicable(courseIDs []string, items []models.OrderItem) bool {
	for _, it := range items {
		for _, id := range courseIDs {
			if it.CourseID == id {
				return true
			}
		}
	}
	return false
}

// Quote prices items with an optional, already validated coupon. Tax is
// charged on the discounted amount.
func Quote(items []models.OrderItem, coupon *models.Coupon, taxRate float64) Totals {
	subtotal := Subtotal(items)
	discount := CalculateDiscount(items, coupon)
	tax := (subtotal - discount) * taxRate

	return Totals{
		Subtotal: Round(subtotal),
		Discount: Round(discount),
		Tax:      Round(tax),
		Total:    Round(subtotal - discount + tax),
	}
}

// Round rounds a money amount to two decimals.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
