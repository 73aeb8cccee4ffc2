package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"rdcshop/backend/auth"
	"rdcshop/backend/services"
	"rdcshop/backend/store"
	"rdcshop/backend/utils"
)

// respondError maps a service error to the response envelope. what names
// the missing resource in 404 messages. Unexpected errors are logged and
// answered with 500.
func respondError(c *fiber.Ctx, logger *log.Logger, err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return utils.NotFound(c, what+" not found")
	case errors.Is(err, services.ErrDuplicateTeacher), errors.Is(err, services.ErrTeacherProfileExists):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		return utils.Conflict(c, what+" already exists")
	case errors.Is(err, services.ErrPaymentRequired):
		return utils.PaymentRequired(c, err.Error())
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrNotEnrolled):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidPaymentStatus),
		errors.Is(err, services.ErrInvalidPaymentMethod):
		return utils.BadRequest(c, err.Error())
	case auth.IsUserError(err):
		return utils.Unauthorized(c, auth.Message(err))
	case errors.Is(err, auth.ErrUnavailable):
		return utils.ServiceUnavailable(c, auth.Message(err))
	}

	if logger != nil {
		logger.Printf("%s %s: %+v", c.Method(), c.Path(), err)
	}
	return utils.InternalServerError(c, "Internal server error")
}
