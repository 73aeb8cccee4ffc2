package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"

	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCancelled = "cancelled"
)

const (
	CouponPercentage = "percentage"
	CouponFixed      = "fixed"
)

// ValidPaymentMethod reports whether m is a supported payment channel.
func ValidPaymentMethod(m string) bool {
	switch m {
	case "bkash", "nagad", "rocket", "card", "bank":
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type OrderItem struct {
	CourseID   string  `json:"courseId" validate:"required"`
	CourseName string  `json:"courseName"`
	Price      float64 `json:"price" validate:"gte=0"`
	Quantity   int     `json:"quantity" validate:"omitempty,gte=1"`
}

type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Order struct {
	ID             string      `gorm:"primaryKey;size:64" json:"id"`
	UserID         string      `gorm:"index;size:64" json:"userId"`
	Items          []OrderItem `gorm:"serializer:json" json:"items"`
	Subtotal       float64     `json:"subtotal"`
	Discount       float64     `json:"discount"`
	Tax            float64     `json:"tax"`
	Total          float64     `json:"total"`
	Currency       string      `gorm:"default:BDT" json:"currency"`
	CouponCode     string      `json:"couponCode,omitempty"`
	PaymentMethod  string      `json:"paymentMethod,omitempty"`
	PaymentStatus  string      `gorm:"index;default:pending" json:"paymentStatus"`
	OrderStatus    string      `gorm:"default:pending" json:"orderStatus"`
	BillingAddress Address     `gorm:"serializer:json" json:"billingAddress"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type Coupon struct {
	ID                   string                      `gorm:"primaryKey;size:64" json:"id"`
	Code                 string                      `gorm:"uniqueIndex;not null" json:"code"`
	Title                string                      `json:"title"`
	Description          string                      `json:"description"`
	Type                 string                      `json:"type"` // percentage, fixed
	Value                float64                     `json:"value"`
	MinOrderAmount       float64                     `json:"minOrderAmount,omitempty"`
	MaxDiscountAmount    float64                     `json:"maxDiscountAmount,omitempty"`
	UsageLimit           int                         `json:"usageLimit,omitempty"`
	UsedCount            int                         `json:"usedCount"`
	ValidFrom            time.Time                   `json:"validFrom"`
	ValidUntil           time.Time                   `json:"validUntil"`
	ApplicableCourses    datatypes.JSONSlice[string] `json:"applicableCourses,omitempty"`
	ApplicableCategories datatypes.JSONSlice[string] `json:"applicableCategories,omitempty"`
	IsActive             bool                        `gorm:"index" json:"isActive"`
	CreatedAt            time.Time                   `json:"createdAt"`
}
