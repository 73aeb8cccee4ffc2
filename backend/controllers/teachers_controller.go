package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rdcshop/backend/middleware"
	"rdcshop/backend/models"
	"rdcshop/backend/services"
	"rdcshop/backend/utils"
)

type TeachersController struct {
	Teachers *services.TeacherService
	Logger   *log.Logger
}

func NewTeachersController(teachers *services.TeacherService, logger *log.Logger) *TeachersController {
	return &TeachersController{Teachers: teachers, Logger: logger}
}

type CreateTeacherResponse struct {
	TeacherID string `json:"teacherId"`
	Slug      string `json:"slug"`
	ShopURL   string `json:"shopUrl"`
}

func (tc *TeachersController) ListTeachers(c *fiber.Ctx) error {
	teachers, err := tc.Teachers.ListActive(c.UserContext())
	if err != nil {
		return respondError(c, tc.Logger, err, "Teachers")
	}
	return utils.Success(c, fiber.StatusOK, teachers)
}

// [+] CreateTeacher godoc
// @Summary Register a teacher
// @Description Creates the teacher profile and the metadata of the teacher's shop page. A signed-in caller's profile is linked to their account.
// @Tags teachers
// @Accept json
// @Produce json
// @Param input body services.TeacherInput true "Teacher"
// @Success 201 {object} CreateTeacherResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /teachers [post]
func (tc *TeachersController) CreateTeacher(c *fiber.Ctx) error {
	var input services.TeacherInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	if id := middleware.UserID(c); id != "" && middleware.Role(c) != models.RoleAdmin {
		input.UserID = id
	}

	teacher, err := tc.Teachers.CreateProfile(c.UserContext(), input)
	if err != nil {
		return respondError(c, tc.Logger, err, "Teacher")
	}
	tc.Logger.Printf("teacher profile created: %s (%s)", teacher.Name, teacher.TeacherData.Slug)
	return utils.Created(c, CreateTeacherResponse{
		TeacherID: teacher.ID,
		Slug:      teacher.TeacherData.Slug,
		ShopURL:   teacher.TeacherData.ShopURL,
	})
}

// [+] GetShop godoc
// @Summary Teacher shop page
// @Description Teacher, page metadata, published courses and affiliate products
// @Tags teachers
// @Produce json
// @Param slug path string true "Teacher slug"
// @Success 200 {object} services.Shop
// @Failure 404 {object} utils.ErrorResponse
// @Router /shop/{slug} [get]
func (tc *TeachersController) GetShop(c *fiber.Ctx) error {
	shop, err := tc.Teachers.Shop(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, tc.Logger, err, "Teacher")
	}
	return utils.Success(c, fiber.StatusOK, shop)
}

func (tc *TeachersController) GetProducts(c *fiber.Ctx) error {
	products, err := tc.Teachers.Products(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, tc.Logger, err, "Teacher")
	}
	return utils.Success(c, fiber.StatusOK, products)
}

// AddProduct adds an Amazon product to a shop. Teachers may only add to
// their own shop.
func (tc *TeachersController) AddProduct(c *fiber.Ctx) error {
	teacherID := c.Params("id")
	if middleware.Role(c) == models.RoleTeacher && middleware.UserID(c) != teacherID {
		return utils.Forbidden(c, services.ErrForbidden.Error())
	}

	var input services.ProductInput
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	product, err := tc.Teachers.AddAmazonProduct(c.UserContext(), teacherID, input)
	if err != nil {
		return respondError(c, tc.Logger, err, "Teacher")
	}
	return utils.Created(c, product)
}
