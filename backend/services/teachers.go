package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"rdcshop/backend/models"
	"rdcshop/backend/store"
	"rdcshop/backend/utils"
)

var (
	ErrDuplicateTeacher     = errors.New("A teacher with similar name already exists. Please use a different name.")
	ErrTeacherProfileExists = errors.New("This account already has a teacher profile")
)

const (
	teacherAvatar = "/placeholder.svg?height=150&width=150"
	pageOGImage   = "/placeholder.svg?height=630&width=1200"
	productImage  = "/placeholder.svg?height=300&width=300"
)

type TeacherService struct {
	store store.Store
	demo  bool
	now   func() time.Time
}

type TeacherInput struct {
	Name              string   `json:"name" validate:"required,min=2,max=120"`
	Email             string   `json:"email" validate:"required,email"`
	Phone             string   `json:"phone"`
	Bio               string   `json:"bio"`
	BioBn             string   `json:"bioBn"`
	Specialization    []string `json:"specialization"`
	Experience        int      `json:"experience" validate:"gte=0,lte=80"`
	Education         string   `json:"education"`
	AmazonAffiliateID string   `json:"amazonAffiliateId"`

	// UserID links the profile to a signed-in account. The profile then
	// takes the account's ID so courses and products created by that
	// account land in the shop.
	UserID string `json:"-"`
}

// TeacherSlug derives the shop slug from a teacher's name. Names with no
// usable characters get a random teacher-xxxxxxxx slug.
func TeacherSlug(name string) string {
	if slug := utils.GenerateSlug(name); slug != "" {
		return slug
	}
	return "teacher-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ShopURL is the public path of a teacher's shop.
func ShopURL(slug string) string {
	return "/shop/" + slug
}

// CreateProfile stores a teacher and the metadata of their shop page.
func (s *TeacherService) CreateProfile(ctx context.Context, in TeacherInput) (*models.Teacher, error) {
	if in.UserID != "" {
		_, err := s.store.GetTeacher(ctx, in.UserID)
		if err == nil {
			return nil, ErrTeacherProfileExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrap(err, "look up teacher")
		}
	}

	now := s.now()
	slug := TeacherSlug(in.Name)
	specialties := in.Specialization
	if specialties == nil {
		specialties = []string{}
	}

	t := &models.Teacher{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       in.Phone,
		Role:        models.RoleTeacher,
		Avatar:      teacherAvatar,
		Preferences: models.DefaultPreferences(),
		Profile: models.Profile{
			Education: in.Education,
			Interests: specialties,
			Location:  "Bangladesh",
		},
		TeacherData: models.TeacherData{
			Slug:              slug,
			ShopURL:           ShopURL(slug),
			Bio:               in.Bio,
			BioBn:             in.BioBn,
			Specialization:    specialties,
			Experience:        in.Experience,
			Education:         in.Education,
			Achievements:      []string{},
			AmazonAffiliateID: in.AmazonAffiliateID,
			IsActive:          true,
			JoinedAt:          now,
			CommissionRate:    models.DefaultCommissionRate,
		},
	}

	if s.demo {
		t.ID = fmt.Sprintf("teacher_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
		t.TeacherData.IsVerified = true
		t.TeacherData.Achievements = []string{
			"Verified Teacher",
			fmt.Sprintf("%d+ Years Experience", in.Experience),
			"Professional Educator",
		}
		t.TeacherData.TotalEarnings = float64(10000 + rand.Intn(50000))
	}

	if in.UserID != "" {
		t.ID = in.UserID
	}

	if err := s.store.CreateTeacher(ctx, t); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateTeacher
		}
		return nil, errors.Wrap(err, "create teacher")
	}

	page := &models.TeacherPage{
		Slug:          slug,
		TeacherID:     t.ID,
		Title:         fmt.Sprintf("%s - EduLMS Teacher", t.Name),
		TitleBn:       fmt.Sprintf("%s - EduLMS শিক্ষক", t.Name),
		Description:   in.Bio,
		DescriptionBn: in.BioBn,
		Keywords:      strings.Join(specialties, ", "),
		OGImage:       pageOGImage,
		IsPublished:   true,
	}
	if err := s.store.SaveTeacherPage(ctx, page); err != nil {
		return nil, errors.Wrap(err, "save teacher page")
	}
	if in.UserID != "" {
		if err := s.promote(ctx, in.UserID); err != nil {
			return nil, err
		}
	}

	if s.demo && in.AmazonAffiliateID != "" {
		for _, p := range sampleProducts(t.ID, in.AmazonAffiliateID, now) {
			p := p
			if err := s.store.AddAmazonProduct(ctx, &p); err != nil {
				return nil, errors.Wrap(err, "add sample product")
			}
		}
	}
	return t, nil
}

// promote gives a student account the teacher role. The new role shows in
// tokens issued from the next sign-in.
func (s *TeacherService) promote(ctx context.Context, userID string) error {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load user")
	}
	if u.Role != models.RoleStudent {
		return nil
	}
	u.Role = models.RoleTeacher
	return errors.Wrap(s.store.UpdateUser(ctx, u), "update user")
}

func affiliateURL(asin, affiliateID string) string {
	return fmt.Sprintf("https://amazon.com/dp/%s?tag=%s", asin, affiliateID)
}

func sampleProducts(teacherID, affiliateID string, now time.Time) []models.AmazonProduct {
	return []models.AmazonProduct{
		{
			ID:            fmt.Sprintf("amazon-%s-1", teacherID),
			TeacherID:     teacherID,
			ASIN:          "B08N5WRWNW",
			Title:         "Physics Textbook - HSC Level",
			TitleBn:       "পদার্থবিজ্ঞান পাঠ্যবই - এইচএসসি স্তর",
			Description:   "Comprehensive physics textbook for HSC students",
			DescriptionBn: "এইচএসসি শিক্ষার্থীদের জন্য সম্পূর্ণ পদার্থবিজ্ঞান পাঠ্যবই",
			Price:         850,
			OriginalPrice: 1200,
			Currency:      "BDT",
			Images:        []string{productImage},
			Category:      "Books",
			Subcategory:   "Textbooks",
			Rating:        4.5,
			TotalReviews:  127,
			Availability:  models.AvailabilityInStock,
			AffiliateURL:  affiliateURL("B08N5WRWNW", affiliateID),
			Commission:    8.5,
			Tags:          []string{"physics", "hsc", "textbook", "education"},
			IsRecommended: true,
			AddedAt:       now,
		},
		{
			ID:            fmt.Sprintf("amazon-%s-2", teacherID),
			TeacherID:     teacherID,
			ASIN:          "B07XJ8C8F7",
			Title:         "Scientific Calculator",
			TitleBn:       "বৈজ্ঞানিক ক্যালকুলেটর",
			Description:   "Advanced scientific calculator for students",
			DescriptionBn: "শিক্ষার্থীদের জন্য উন্নত বৈজ্ঞানিক ক্যালকুলেটর",
			Price:         2500,
			OriginalPrice: 3200,
			Currency:      "BDT",
			Images:        []string{productImage},
			Category:      "Electronics",
			Subcategory:   "Calculators",
			Rating:        4.8,
			TotalReviews:  89,
			Availability:  models.AvailabilityInStock,
			AffiliateURL:  affiliateURL("B07XJ8C8F7", affiliateID),
			Commission:    12,
			Tags:          []string{"calculator", "scientific", "math", "education"},
			AddedAt:       now,
		},
	}
}

func (s *TeacherService) GetBySlug(ctx context.Context, slug string) (*models.Teacher, error) {
	return s.store.GetTeacherBySlug(ctx, slug)
}

func (s *TeacherService) ListActive(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.store.ListActiveTeachers(ctx)
	return teachers, errors.Wrap(err, "list teachers")
}

// Courses returns the published courses taught by teacherID.
func (s *TeacherService) Courses(ctx context.Context, teacherID string) ([]models.Course, error) {
	courses, _, err := s.store.ListCourses(ctx, store.CourseFilter{
		InstructorID: teacherID,
		Status:       models.CourseStatusPublished,
		Limit:        1000,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list teacher courses")
	}
	for i := range courses {
		courses[i].ApplyDefaults()
	}
	return courses, nil
}

type ProductInput struct {
	ASIN          string   `json:"asin" validate:"required,alphanum,len=10"`
	Title         string   `json:"title" validate:"required"`
	TitleBn       string   `json:"titleBn"`
	Description   string   `json:"description"`
	DescriptionBn string   `json:"descriptionBn"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice float64  `json:"originalPrice" validate:"gte=0"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	Images        []string `json:"images"`
	AffiliateURL  string   `json:"affiliateUrl" validate:"omitempty,url"`
	Commission    float64  `json:"commission" validate:"gte=0,lte=100"`
	Tags          []string `json:"tags"`
}

// AddAmazonProduct adds an affiliate product to a teacher's shop. Without an
// explicit affiliate URL one is built from the ASIN and the teacher's
// affiliate ID.
func (s *TeacherService) AddAmazonProduct(ctx context.Context, teacherID string, in ProductInput) (*models.AmazonProduct, error) {
	t, err := s.store.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	link := in.AffiliateURL
	if link == "" {
		link = affiliateURL(in.ASIN, t.TeacherData.AmazonAffiliateID)
	}
	p := &models.AmazonProduct{
		ID:            "amazon-" + in.ASIN + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6],
		TeacherID:     t.ID,
		ASIN:          in.ASIN,
		Title:         in.Title,
		TitleBn:       in.TitleBn,
		Description:   in.Description,
		DescriptionBn: in.DescriptionBn,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Currency:      "BDT",
		Images:        in.Images,
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		Availability:  models.AvailabilityInStock,
		AffiliateURL:  link,
		Commission:    in.Commission,
		Tags:          in.Tags,
		AddedAt:       s.now(),
	}
	if err := s.store.AddAmazonProduct(ctx, p); err != nil {
		return nil, errors.Wrap(err, "add product")
	}
	return p, nil
}

func (s *TeacherService) Products(ctx context.Context, teacherID string) ([]models.AmazonProduct, error) {
	products, err := s.store.ListAmazonProducts(ctx, teacherID)
	return products, errors.Wrap(err, "list products")
}

// Shop is everything a teacher's public page shows.
type Shop struct {
	Teacher  *models.Teacher        `json:"teacher"`
	Page     *models.TeacherPage    `json:"page,omitempty"`
	Courses  []models.Course        `json:"courses"`
	Products []models.AmazonProduct `json:"products"`
}

func (s *TeacherService) Shop(ctx context.Context, slug string) (*Shop, error) {
	t, err := s.store.GetTeacherBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	page, err := s.store.GetTeacherPage(ctx, slug)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(err, "load teacher page")
	}
	courses, err := s.Courses(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	products, err := s.Products(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &Shop{Teacher: t, Page: page, Courses: courses, Products: products}, nil
}
