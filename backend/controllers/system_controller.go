package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/config"
	"rdcshop/backend/database"
	"rdcshop/backend/services"
	"rdcshop/backend/utils"
)

// StatusFunc reports the state of the backend connection.
type StatusFunc func() database.Status

type SystemController struct {
	Seeder *services.Seeder
	Status StatusFunc
	Cfg    *config.Config
	Logger *log.Logger
}

func NewSystemController(seeder *services.Seeder, status StatusFunc, cfg *config.Config, logger *log.Logger) *SystemController {
	return &SystemController{Seeder: seeder, Status: status, Cfg: cfg, Logger: logger}
}

// Health godoc
// @Summary Service health
// @Description Backend mode and database readiness. Answers 503 while the database is unavailable.
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (sc *SystemController) Health(c *fiber.Ctx) error {
	status := database.Status{Initialized: true}
	if sc.Status != nil {
		status = sc.Status()
	}

	code, text := fiber.StatusOK, "ok"
	if !status.Initialized {
		code, text = fiber.StatusServiceUnavailable, "unavailable"
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   text,
		"mode":     sc.Cfg.BackendMode,
		"database": status,
	})
}

// Seed godoc
// @Summary Load sample data
// @Description Adds the sample courses, coupons, admin user and demo teachers. Existing records are kept.
// @Tags system
// @Produce json
// @Success 200 {object} services.SeedResult
// @Security ApiKeyAuth
// @Router /seed [post]
func (sc *SystemController) Seed(c *fiber.Ctx) error {
	res, err := sc.Seeder.Run(c.UserContext())
	if err != nil {
		return respondError(c, sc.Logger, err, "Seed data")
	}
	return utils.SuccessMessage(c, fiber.StatusOK, "Database seeded successfully", res)
}
