package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/models"
	"rdcshop/backend/services/pricing"
	"rdcshop/backend/store"
)

var (
	ErrEmptyOrder           = errors.New("Order must contain at least one course")
	ErrInvalidPaymentStatus = errors.New("Invalid payment status")
	ErrInvalidPaymentMethod = errors.New("Invalid payment method")
)

type OrderService struct {
	store   store.Store
	courses *CourseService
	content *ContentService
	taxRate float64
	now     func() time.Time
	logger  *log.Logger
}

// NormalizeCouponCode is how codes are compared and stored.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponCheck is the outcome of validating a coupon against a cart.
type CouponCheck struct {
	Valid    bool           `json:"isValid"`
	Coupon   *models.Coupon `json:"coupon,omitempty"`
	Discount float64        `json:"discount"`
	Message  string         `json:"message"`
}

// ValidateCoupon looks up the active coupon with code and checks it
// against items. Validation failures are reported in the result, not as an
// error; err is only set when the store fails.
func (s *OrderService) ValidateCoupon(ctx context.Context, code string, items []models.OrderItem) (*CouponCheck, error) {
	coupon, err := s.store.GetActiveCoupon(ctx, NormalizeCouponCode(code))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(err, "load coupon")
	}
	if err != nil {
		coupon = nil
	}

	if verr := pricing.ValidateCoupon(coupon, items, s.now()); verr != nil {
		return &CouponCheck{Message: verr.Error()}, nil
	}
	return &CouponCheck{
		Valid:    true,
		Coupon:   coupon,
		Discount: pricing.Round(pricing.CalculateDiscount(items, coupon)),
		Message:  "Coupon is valid",
	}, nil
}

type OrderInput struct {
	Items          []models.OrderItem `json:"items" validate:"required,min=1,dive"`
	CouponCode     string             `json:"couponCode"`
	PaymentMethod  string             `json:"paymentMethod" validate:"omitempty,payment_method"`
	BillingAddress models.Address     `json:"billingAddress"`
}

// resolveItems prices each line from the catalogue when the course is
// known, so a client cannot set its own price.
func (s *OrderService) resolveItems(ctx context.Context, items []models.OrderItem) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		c, err := s.store.GetCourse(ctx, it.CourseID)
		switch {
		case err == nil:
			it.Price = c.Price
			it.CourseName = c.Title
		case errors.Is(err, store.ErrNotFound):
		default:
			return nil, errors.Wrap(err, "load course")
		}
		out = append(out, it)
	}
	return out, nil
}

// CreateOrder prices and stores a pending order. An unusable coupon does
// not fail the order; it is left off and couponMsg says why.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in OrderInput) (order *models.Order, couponMsg string, err error) {
	if len(in.Items) == 0 {
		return nil, "", ErrEmptyOrder
	}
	if in.PaymentMethod != "" && !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, "", ErrInvalidPaymentMethod
	}

	items, err := s.resolveItems(ctx, in.Items)
	if err != nil {
		return nil, "", err
	}

	var coupon *models.Coupon
	if strings.TrimSpace(in.CouponCode) != "" {
		check, err := s.ValidateCoupon(ctx, in.CouponCode, items)
		if err != nil {
			return nil, "", err
		}
		if check.Valid {
			coupon = check.Coupon
		}
		couponMsg = check.Message
	}

	totals := pricing.Quote(items, coupon, s.taxRate)
	order = &models.Order{
		UserID:         userID,
		Items:          items,
		Subtotal:       totals.Subtotal,
		Discount:       totals.Discount,
		Tax:            totals.Tax,
		Total:          totals.Total,
		Currency:       "BDT",
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  models.PaymentPending,
		OrderStatus:    models.OrderPending,
		BillingAddress: in.BillingAddress,
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, "", errors.Wrap(err, "create order")
	}
	return order, couponMsg, nil
}

// GetOrder returns the order when userID owns it or the caller is an admin.
func (s *OrderService) GetOrder(ctx context.Context, userID, role, orderID string) (*models.Order, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID && role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return o, nil
}

// UpdatePaymentStatus records a payment outcome reported to an admin. The
// first transition to completed confirms the order, counts the coupon use,
// enrolls the buyer in every course on the order and notifies them.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, userID, role, orderID, status, method string) (*models.Order, error) {
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if !models.ValidPaymentStatus(status) {
		return nil, ErrInvalidPaymentStatus
	}
	if method != "" && !models.ValidPaymentMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}

	o, err := s.GetOrder(ctx, userID, role, orderID)
	if err != nil {
		return nil, err
	}

	firstCompletion := status == models.PaymentCompleted && o.PaymentStatus != models.PaymentCompleted
	o.PaymentStatus = status
	if method != "" {
		o.PaymentMethod = method
	}
	if status == models.PaymentCompleted {
		o.OrderStatus = models.OrderConfirmed
	}

	if err := s.store.UpdateOrder(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	if firstCompletion {
		if err := s.fulfil(ctx, o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (s *OrderService) fulfil(ctx context.Context, o *models.Order) error {
	if o.CouponCode != "" {
		c, err := s.store.FindCouponByCode(ctx, o.CouponCode)
		switch {
		case err == nil:
			if err := s.store.IncrementCouponUsage(ctx, c.ID); err != nil {
				return errors.Wrap(err, "count coupon use")
			}
		case errors.Is(err, store.ErrNotFound):
			s.logger.Printf("order %s: coupon %s no longer exists", o.ID, o.CouponCode)
		default:
			return errors.Wrap(err, "load coupon")
		}
	}

	for _, it := range o.Items {
		_, _, err := s.courses.enroll(ctx, o.UserID, it.CourseID, true)
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Printf("order %s: course %s not found, skipping enrollment", o.ID, it.CourseID)
			continue
		}
		if err != nil {
			return err
		}
	}

	return s.content.Notify(ctx, &models.Notification{
		UserID:    o.UserID,
		Title:     "Payment successful",
		TitleBn:   "পেমেন্ট সফল হয়েছে",
		Message:   fmt.Sprintf("Your payment of ৳%.2f was received. You are now enrolled.", o.Total),
		MessageBn: fmt.Sprintf("আপনার ৳%.2f পেমেন্ট গ্রহণ করা হয়েছে।", o.Total),
		Type:      models.NotificationSuccess,
		Category:  "payment",
		ActionURL: "/dashboard",
	})
}

type CouponInput struct {
	Code                 string    `json:"code" validate:"required,max=40"`
	Title                string    `json:"title" validate:"required"`
	Description          string    `json:"description"`
	Type                 string    `json:"type" validate:"required,oneof=percentage fixed"`
	Value                float64   `json:"value" validate:"gt=0"`
	MinOrderAmount       float64   `json:"minOrderAmount" validate:"gte=0"`
	MaxDiscountAmount    float64   `json:"maxDiscountAmount" validate:"gte=0"`
	UsageLimit           int       `json:"usageLimit" validate:"gte=0"`
	ValidFrom            time.Time `json:"validFrom" validate:"required"`
	ValidUntil           time.Time `json:"validUntil" validate:"required,gtfield=ValidFrom"`
	ApplicableCourses    []string  `json:"applicableCourses"`
	ApplicableCategories []string  `json:"applicableCategories"`
}

func (s *OrderService) CreateCoupon(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	c := &models.Coupon{
		Code:                 NormalizeCouponCode(in.Code),
		Title:                in.Title,
		Description:          in.Description,
		Type:                 in.Type,
		Value:                in.Value,
		MinOrderAmount:       in.MinOrderAmount,
		MaxDiscountAmount:    in.MaxDiscountAmount,
		UsageLimit:           in.UsageLimit,
		ValidFrom:            in.ValidFrom,
		ValidUntil:           in.ValidUntil,
		ApplicableCourses:    in.ApplicableCourses,
		ApplicableCategories: in.ApplicableCategories,
		IsActive:             true,
		CreatedAt:            s.now(),
	}
	if err := s.store.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeactivateExpiredCoupons switches off coupons whose validity ended.
func (s *OrderService) DeactivateExpiredCoupons(ctx context.Context) (int64, error) {
	n, err := s.store.DeactivateExpiredCoupons(ctx, s.now())
	return n, errors.Wrap(err, "deactivate expired coupons")
}
