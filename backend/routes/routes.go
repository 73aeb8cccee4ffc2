package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"rdcshop/backend/auth"
	"rdcshop/backend/config"
	"rdcshop/backend/controllers"
	"rdcshop/backend/middleware"
	"rdcshop/backend/models"
	"rdcshop/backend/services"
	"rdcshop/backend/store"
	"rdcshop/backend/utils"
)

const (
	LoginMaxFailures = 5
	LoginWindow      = 15 * time.Minute
)

// Deps is everything the handlers are built from.
type Deps struct {
	Cfg         *config.Config
	Logger      *log.Logger
	Services    *services.Services
	Provider    auth.Provider
	Google      *auth.GoogleProvider
	Revocations *auth.Revocations
	Users       store.Users
	Status      controllers.StatusFunc
}

// loginLimiter counts failed sign-ins per client IP.
func loginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:                    LoginMaxFailures,
		Expiration:             LoginWindow,
		SkipSuccessfulRequests: true,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.TooManyRequests(c, auth.ErrTooManyAttempts.Error())
		},
	})
}

func SetupRoutes(app *fiber.App, d *Deps) {
	api := app.Group("/api")

	authMiddleware := middleware.AuthMiddleware(d.Cfg, d.Revocations)
	optionalAuth := middleware.OptionalAuth(d.Cfg, d.Revocations)
	staff := middleware.RequireRole(models.RoleTeacher, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)

	// System routes
	systemController := controllers.NewSystemController(d.Services.Seeder, d.Status, d.Cfg, d.Logger)
	api.Get("/health", systemController.Health)
	api.Post("/seed", authMiddleware, admin, systemController.Seed)

	// Auth routes
	authController := controllers.NewAuthController(d.Provider, d.Google, d.Revocations, d.Cfg, d.Logger)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authController.Register)
	authGroup.Post("/login", loginLimiter(), authController.Login)
	authGroup.Post("/logout", authMiddleware, authController.Logout)
	authGroup.Get("/google/login", authController.GoogleLogin)
	authGroup.Get("/google/callback", authController.GoogleCallback)
	authGroup.Get("/demo/credentials", authController.DemoCredentials)

	// User routes
	userController := controllers.NewUserController(d.Provider, d.Users, d.Logger)
	api.Get("/user/profile", authMiddleware, userController.GetProfile)
	api.Put("/user/profile", authMiddleware, userController.UpdateProfile)

	// Courses routes
	coursesController := controllers.NewCoursesController(d.Services.Courses, d.Logger)
	courses := api.Group("/courses")
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Get("/:id/reviews", coursesController.GetReviews)
	courses.Post("/:id/enroll", authMiddleware, coursesController.Enroll)
	courses.Post("/:id/progress", authMiddleware, coursesController.UpdateProgress)
	courses.Post("/:id/reviews", authMiddleware, coursesController.AddReview)

	// Orders and coupons
	ordersController := controllers.NewOrdersController(d.Services.Orders, d.Logger)
	api.Post("/coupons/validate", ordersController.ValidateCoupon)
	orders := api.Group("/orders", authMiddleware)
	orders.Post("/", ordersController.CreateOrder)
	orders.Get("/:id", ordersController.GetOrder)
	orders.Put("/:id/payment", admin, ordersController.UpdatePaymentStatus)

	// Admin routes
	adminGroup := api.Group("/admin", authMiddleware)
	adminGroup.Post("/courses", staff, coursesController.CreateCourse)
	adminGroup.Post("/coupons", admin, ordersController.CreateCoupon)

	// Teachers and shops
	teachersController := controllers.NewTeachersController(d.Services.Teachers, d.Logger)
	api.Get("/teachers", teachersController.ListTeachers)
	api.Post("/teachers", optionalAuth, teachersController.CreateTeacher)
	api.Get("/teachers/:id/products", teachersController.GetProducts)
	api.Post("/teachers/:id/products", authMiddleware, staff, teachersController.AddProduct)
	api.Get("/shop/:slug", teachersController.GetShop)

	// Dashboard
	dashboardController := controllers.NewDashboardController(d.Services.Dashboard, d.Provider, d.Logger)
	api.Get("/dashboard", authMiddleware, dashboardController.GetDashboard)

	// Content
	contentController := controllers.NewContentController(d.Services.Content, d.Logger)
	api.Get("/live-classes", contentController.GetLiveClasses)
	api.Post("/live-classes", authMiddleware, staff, contentController.CreateLiveClass)
	api.Get("/blogs", contentController.GetBlogs)
	api.Get("/blogs/:slug", contentController.GetBlog)
	api.Post("/blogs", authMiddleware, staff, contentController.CreateBlog)
	api.Get("/events", contentController.GetEvents)
	api.Get("/notifications", authMiddleware, contentController.GetNotifications)
	api.Put("/notifications/:id/read", authMiddleware, contentController.MarkNotificationRead)
}
