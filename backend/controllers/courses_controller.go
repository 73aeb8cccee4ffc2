package controllers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/middleware"
	"rdcshop/backend/models"
	"rdcshop/backend/services"
	"rdcshop/backend/store"
	"rdcshop/backend/utils"
)

const maxPageSize = 100

type CoursesController struct {
	Courses *services.CourseService
	Logger  *log.Logger
}

func NewCoursesController(courses *services.CourseService, logger *log.Logger) *CoursesController {
	return &CoursesController{Courses: courses, Logger: logger}
}

// pageParams reads ?page= and ?limit=, 1-based.
func pageParams(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", store.DefaultPageSize)
	if limit < 1 {
		limit = store.DefaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// [+] GetCourses godoc
// @Summary List courses
// @Description Published courses, most popular first
// @Tags courses
// @Produce json
// @Param category query string false "Category"
// @Param subcategory query string false "Subcategory"
// @Param level query string false "beginner, intermediate or advanced"
// @Param free query bool false "Only free or only paid courses"
// @Param instructor query string false "Instructor ID"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	f := store.CourseFilter{
		Category:     c.Query("category"),
		Subcategory:  c.Query("subcategory"),
		Level:        c.Query("level"),
		InstructorID: c.Query("instructor"),
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}
	if raw := c.Query("free"); raw != "" {
		free, err := strconv.ParseBool(raw)
		if err != nil {
			return utils.BadRequest(c, "free must be true or false")
		}
		f.IsFree = &free
	}

	courses, total, err := cc.Courses.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, cc.Logger, err, "Courses")
	}
	return utils.Paginate(c, courses, total, page, limit)
}

// [+] GetCourse godoc
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	course, err := cc.Courses.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, cc.Logger, err, "Course")
	}
	return utils.Success(c, fiber.StatusOK, course)
}

// CreateCourse stores a course. Teachers always create courses under their
// own instructor ID.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if course.Title == "" {
		return utils.ValidationError(c, map[string]string{"title": "title is required"})
	}
	if course.Price < 0 || course.OriginalPrice < 0 {
		return utils.ValidationError(c, map[string]string{"price": "price must be 0 or greater"})
	}
	course.ID = ""
	if middleware.Role(c) == models.RoleTeacher {
		course.Instructor.ID = middleware.UserID(c)
	}
	course.Features.IsFree = course.Price == 0

	if err := cc.Courses.Create(c.UserContext(), &course); err != nil {
		return respondError(c, cc.Logger, err, "Course")
	}
	return utils.Created(c, course)
}

// [+] Enroll godoc
// @Summary Enroll in a course
// @Description Free courses only. Paid courses are enrolled in when their order is paid. Enrolling twice returns the existing enrollment
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.Enrollment
// @Success 201 {object} models.Enrollment
// @Failure 402 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	e, created, err := cc.Courses.Enroll(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, cc.Logger, err, "Course")
	}
	if created {
		return utils.Created(c, e)
	}
	return utils.SuccessMessage(c, fiber.StatusOK, "Already enrolled", e)
}

// [+] UpdateProgress godoc
// @Summary Mark course items as done
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param input body services.ProgressUpdate true "Finished items"
// @Success 200 {object} models.Enrollment
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/progress [post]
func (cc *CoursesController) UpdateProgress(c *fiber.Ctx) error {
	var input services.ProgressUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	e, err := cc.Courses.UpdateProgress(c.UserContext(), middleware.UserID(c), c.Params("id"), input)
	if err != nil {
		return respondError(c, cc.Logger, err, "Course")
	}
	return utils.Success(c, fiber.StatusOK, e)
}

func (cc *CoursesController) GetReviews(c *fiber.Ctx) error {
	reviews, err := cc.Courses.Reviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, cc.Logger, err, "Course")
	}
	return utils.Success(c, fiber.StatusOK, reviews)
}

// AddReview godoc
// @Summary Review a course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param input body services.ReviewInput true "Review"
// @Success 201 {object} models.Review
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews [post]
func (cc *CoursesController) AddReview(c *fiber.Ctx) error {
	var input services.ReviewInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	review, err := cc.Courses.AddReview(c.UserContext(), middleware.UserID(c), c.Params("id"), input)
	if err != nil {
		return respondError(c, cc.Logger, err, "Course")
	}
	return utils.Created(c, review)
}
