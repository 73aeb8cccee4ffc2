package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/middleware"
	"rdcshop/backend/models"
	"rdcshop/backend/services"
	"rdcshop/backend/utils"
)

type OrdersController struct {
	Orders *services.OrderService
	Logger *log.Logger
}

func NewOrdersController(orders *services.OrderService, logger *log.Logger) *OrdersController {
	return &OrdersController{Orders: orders, Logger: logger}
}

type ValidateCouponRequest struct {
	Code  string             `json:"code" validate:"required"`
	Items []models.OrderItem `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderResponse struct {
	Order         *models.Order `json:"order"`
	CouponMessage string        `json:"couponMessage,omitempty"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required,payment_status"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,payment_method"`
}

// [+] ValidateCoupon godoc
// @Summary Check a coupon against a cart
// @Description Invalid coupons are reported in the body with isValid false
// @Tags coupons
// @Accept json
// @Produce json
// @Param input body ValidateCouponRequest true "Coupon and cart"
// @Success 200 {object} services.CouponCheck
// @Failure 422 {object} utils.ErrorResponse
// @Router /coupons/validate [post]
func (oc *OrdersController) ValidateCoupon(c *fiber.Ctx) error {
	var input ValidateCouponRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	check, err := oc.Orders.ValidateCoupon(c.UserContext(), input.Code, input.Items)
	if err != nil {
		return respondError(c, oc.Logger, err, "Coupon")
	}
	return utils.Success(c, fiber.StatusOK, check)
}

func (oc *OrdersController) CreateCoupon(c *fiber.Ctx) error {
	var input services.CouponInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	if input.Type == models.CouponPercentage && input.Value > 100 {
		return utils.ValidationError(c, map[string]string{"value": "value must be 100 or less"})
	}

	coupon, err := oc.Orders.CreateCoupon(c.UserContext(), input)
	if err != nil {
		return respondError(c, oc.Logger, err, "Coupon")
	}
	return utils.Created(c, coupon)
}

// [+] CreateOrder godoc
// @Summary Place an order
// @Description Prices the cart from the catalogue. An unusable coupon is dropped and explained in couponMessage.
// @Tags orders
// @Accept json
// @Produce json
// @Param input body services.OrderInput true "Order"
// @Success 201 {object} CreateOrderResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /orders [post]
func (oc *OrdersController) CreateOrder(c *fiber.Ctx) error {
	var input services.OrderInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	order, msg, err := oc.Orders.CreateOrder(c.UserContext(), middleware.UserID(c), input)
	if err != nil {
		return respondError(c, oc.Logger, err, "Order")
	}
	return utils.Created(c, CreateOrderResponse{Order: order, CouponMessage: msg})
}

func (oc *OrdersController) GetOrder(c *fiber.Ctx) error {
	order, err := oc.Orders.GetOrder(c.UserContext(), middleware.UserID(c), middleware.Role(c), c.Params("id"))
	if err != nil {
		return respondError(c, oc.Logger, err, "Order")
	}
	return utils.Success(c, fiber.StatusOK, order)
}

// [+] UpdatePaymentStatus godoc
// @Summary Record a payment outcome
// @Description Admin only. completed confirms the order and enrolls the buyer
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param input body PaymentStatusRequest true "Payment status"
// @Success 200 {object} models.Order
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /orders/{id}/payment [put]
func (oc *OrdersController) UpdatePaymentStatus(c *fiber.Ctx) error {
	var input PaymentStatusRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	order, err := oc.Orders.UpdatePaymentStatus(c.UserContext(), middleware.UserID(c), middleware.Role(c),
		c.Params("id"), input.PaymentStatus, input.PaymentMethod)
	if err != nil {
		return respondError(c, oc.Logger, err, "Order")
	}
	return utils.Success(c, fiber.StatusOK, order)
}
