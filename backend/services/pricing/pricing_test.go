package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"rdcshop/backend/models"
)

func items(prices ...float64) []models.OrderItem {
	out := make([]models.OrderItem, len(prices))
	for i, p := range prices {
		out[i] = models.OrderItem{CourseID: "c" + string(rune('1'+i)), Price: p, Quantity: 1}
	}
	return out
}

func TestSubtotal(t *testing.T) {
	assert.Equal(t, 0.0, Subtotal(nil))
	assert.Equal(t, 2500.0, Subtotal([]models.OrderItem{
		{Price: 1000, Quantity: 2},
		{Price: 500, Quantity: 1},
	}))
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name   string
		items  []models.OrderItem
		coupon *models.Coupon
		want   float64
	}{
		{"no coupon", items(1000), nil, 0},
		{"percentage", items(1000), &models.Coupon{Type: models.CouponPercentage, Value: 30}, 300},
		{"percentage under cap", items(1000), &models.Coupon{Type: models.CouponPercentage, Value: 50, MaxDiscountAmount: 2000}, 500},
		{"percentage capped", items(5000), &models.Coupon{Type: models.CouponPercentage, Value: 50, MaxDiscountAmount: 2000}, 2000},
		{"fixed", items(1000), &models.Coupon{Type: models.CouponFixed, Value: 200}, 200},
		{"fixed above subtotal", items(100), &models.Coupon{Type: models.CouponFixed, Value: 500}, 100},
		{"negative value", items(100), &models.Coupon{Type: models.CouponFixed, Value: -50}, 0},
		{"over 100 percent", items(100), &models.Coupon{Type: models.CouponPercentage, Value: 150}, 100},
		{"unknown type", items(100), &models.Coupon{Type: "bogus", Value: 50}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDiscount(tt.items, tt.coupon)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, Subtotal(tt.items))
		})
	}
}

func TestValidateCoupon(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	valid := func() *models.Coupon {
		return &models.Coupon{
			Code:       "NEWUSER50",
			Type:       models.CouponPercentage,
			Value:      50,
			IsActive:   true,
			ValidFrom:  now.Add(-24 * time.Hour),
			ValidUntil: now.Add(24 * time.Hour),
		}
	}

	assert.NoError(t, ValidateCoupon(valid(), items(1000), now))
	assert.ErrorIs(t, ValidateCoupon(nil, items(1000), now), ErrInvalidCoupon)

	c := valid()
	c.IsActive = false
	assert.ErrorIs(t, ValidateCoupon(c, items(1000), now), ErrInvalidCoupon)

	c = valid()
	c.ValidUntil = now.Add(-time.Minute)
	assert.ErrorIs(t, ValidateCoupon(c, items(1000), now), ErrCouponExpired)

	c = valid()
	c.ValidFrom = now.Add(time.Minute)
	assert.ErrorIs(t, ValidateCoupon(c, items(1000), now), ErrCouponExpired)

	c = valid()
	c.UsageLimit, c.UsedCount = 10, 10
	assert.ErrorIs(t, ValidateCoupon(c, items(1000), now), ErrCouponLimitExceeded)

	c = valid()
	c.MinOrderAmount = 1000
	err := ValidateCoupon(c, items(999), now)
	assert.ErrorIs(t, err, ErrBelowMinimum)
	assert.EqualError(t, err, "Minimum order amount is ৳1000")
	assert.NoError(t, ValidateCoupon(c, items(1000), now))

	c = valid()
	c.ApplicableCourses = datatypes.JSONSlice[string]{"other"}
	assert.ErrorIs(t, ValidateCoupon(c, items(1000), now), ErrCouponNotApplicable)
	c.ApplicableCourses = append(c.ApplicableCourses, "c1")
	assert.NoError(t, ValidateCoupon(c, items(1000), now))
}

func TestQuote(t *testing.T) {
	coupon := &models.Coupon{Type: models.CouponPercentage, Value: 50, MaxDiscountAmount: 2000}

	got := Quote(items(1000), coupon, DefaultTaxRate)
	assert.Equal(t, Totals{Subtotal: 1000, Discount: 500, Tax: 25, Total: 525}, got)

	got = Quote(items(100), &models.Coupon{Type: models.CouponFixed, Value: 500}, DefaultTaxRate)
	assert.Equal(t, 100.0, got.Discount)
	assert.Equal(t, 0.0, got.Total)

	got = Quote(items(333.33), nil, DefaultTaxRate)
	assert.Equal(t, 16.67, got.Tax)
	assert.Equal(t, 350.0, got.Total)
}
