package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/middleware"
	"rdcshop/backend/models"
	"rdcshop/backend/services"
	"rdcshop/backend/utils"
)

type ContentController struct {
	Content *services.ContentService
	Logger  *log.Logger
}

func NewContentController(content *services.ContentService, logger *log.Logger) *ContentController {
	return &ContentController{Content: content, Logger: logger}
}

func (cc *ContentController) GetLiveClasses(c *fiber.Ctx) error {
	classes, err := cc.Content.UpcomingLiveClasses(c.UserContext())
	if err != nil {
		return respondError(c, cc.Logger, err, "Live classes")
	}
	return utils.Success(c, fiber.StatusOK, classes)
}

func (cc *ContentController) CreateLiveClass(c *fiber.Ctx) error {
	var class models.LiveClass
	if err := c.BodyParser(&class); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if class.Title == "" {
		return utils.ValidationError(c, map[string]string{"title": "title is required"})
	}
	class.ID = ""
	if class.Instructor.ID == "" {
		class.Instructor.ID = middleware.UserID(c)
	}

	if err := cc.Content.ScheduleLiveClass(c.UserContext(), &class); err != nil {
		return respondError(c, cc.Logger, err, "Live class")
	}
	return utils.Created(c, class)
}

func (cc *ContentController) GetBlogs(c *fiber.Ctx) error {
	blogs, err := cc.Content.Blogs(c.UserContext())
	if err != nil {
		return respondError(c, cc.Logger, err, "Blogs")
	}
	return utils.Success(c, fiber.StatusOK, blogs)
}

func (cc *ContentController) GetBlog(c *fiber.Ctx) error {
	blog, err := cc.Content.Blog(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, cc.Logger, err, "Blog")
	}
	return utils.Success(c, fiber.StatusOK, blog)
}

// CreateBlog stores a post; the slug is derived from the title when absent.
func (cc *ContentController) CreateBlog(c *fiber.Ctx) error {
	var blog models.Blog
	if err := c.BodyParser(&blog); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	blog.ID = ""
	if blog.Author.ID == "" {
		blog.Author.ID = middleware.UserID(c)
	}

	if err := cc.Content.PublishBlog(c.UserContext(), &blog); err != nil {
		return respondError(c, cc.Logger, err, "Blog")
	}
	return utils.Created(c, blog)
}

func (cc *ContentController) GetEvents(c *fiber.Ctx) error {
	events, err := cc.Content.UpcomingEvents(c.UserContext())
	if err != nil {
		return respondError(c, cc.Logger, err, "Events")
	}
	return utils.Success(c, fiber.StatusOK, events)
}

func (cc *ContentController) GetNotifications(c *fiber.Ctx) error {
	items, err := cc.Content.Notifications(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, cc.Logger, err, "Notifications")
	}
	return utils.Success(c, fiber.StatusOK, items)
}

func (cc *ContentController) MarkNotificationRead(c *fiber.Ctx) error {
	if err := cc.Content.MarkRead(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, cc.Logger, err, "Notification")
	}
	return utils.NoContent(c)
}
