package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/auth"
	"rdcshop/backend/middleware"
	"rdcshop/backend/services"
	"rdcshop/backend/utils"
)

type DashboardController struct {
	Dashboard *services.DashboardService
	Provider  auth.Provider
	Logger    *log.Logger
}

func NewDashboardController(dashboard *services.DashboardService, provider auth.Provider, logger *log.Logger) *DashboardController {
	return &DashboardController{Dashboard: dashboard, Provider: provider, Logger: logger}
}

// GetDashboard godoc
// @Summary Role dashboard
// @Description Summary for the signed-in user's role: enrollments for students, courses and shop for teachers, platform totals for admins, earnings for affiliates
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.Dashboard
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := dc.Provider.CurrentUser(ctx, middleware.UserID(c))
	if err != nil {
		return respondError(c, dc.Logger, err, "User")
	}

	d, err := dc.Dashboard.For(ctx, user)
	if err != nil {
		return respondError(c, dc.Logger, err, "Dashboard")
	}
	return utils.Success(c, fiber.StatusOK, d)
}
