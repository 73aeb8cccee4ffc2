// Package store is the data-access boundary of the marketplace. The hosted
// backend lives in gormstore, demo mode in demostore.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

const DefaultPageSize = 20

// CourseFilter narrows a course listing. Only published courses are listed
// unless Status says otherwise.
type CourseFilter struct {
	Category     string
	Subcategory  string
	Level        string
	IsFree       *bool
	InstructorID string
	Status       string
	Limit        int
	Offset       int
}

// Normalize fills the defaults of an unset filter.
func (f CourseFilter) Normalize() CourseFilter {
	if f.Status == "" {
		f.Status = models.CourseStatusPublished
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Matches reports whether c passes every set field of the filter.
func (f CourseFilter) Matches(c *models.Course) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Subcategory != "" && c.Subcategory != f.Subcategory {
		return false
	}
	if f.Level != "" && c.Level != f.Level {
		return false
	}
	if f.IsFree != nil && c.Features.IsFree != *f.IsFree {
		return false
	}
	if f.InstructorID != "" && c.Instructor.ID != f.InstructorID {
		return false
	}
	return true
}

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type Courses interface {
	ListCourses(ctx context.Context, f CourseFilter) ([]models.Course, int64, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	CreateCourse(ctx context.Context, c *models.Course) error
	FindCourseByTitle(ctx context.Context, title string) (*models.Course, error)
}

type Enrollments interface {
	CreateEnrollment(ctx context.Context, e *models.Enrollment) error
	GetEnrollment(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error)
	UpdateEnrollment(ctx context.Context, e *models.Enrollment) error
}

type Orders interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
}

type Coupons interface {
	CreateCoupon(ctx context.Context, c *models.Coupon) error
	// GetActiveCoupon returns the active coupon with the given code.
	GetActiveCoupon(ctx context.Context, code string) (*models.Coupon, error)
	FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementCouponUsage(ctx context.Context, id string) error
	// DeactivateExpiredCoupons switches off every active coupon whose
	// validity window ended before now and returns how many changed.
	DeactivateExpiredCoupons(ctx context.Context, now time.Time) (int64, error)
}

type Reviews interface {
	// ListReviews returns a course's reviews, newest first.
	ListReviews(ctx context.Context, courseID string) ([]models.Review, error)
	CreateReview(ctx context.Context, r *models.Review) error
}

type Teachers interface {
	CreateTeacher(ctx context.Context, t *models.Teacher) error
	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)
	GetTeacherBySlug(ctx context.Context, slug string) (*models.Teacher, error)
	// ListActiveTeachers returns active teachers, most recently joined first.
	ListActiveTeachers(ctx context.Context) ([]models.Teacher, error)
	SaveTeacherPage(ctx context.Context, p *models.TeacherPage) error
	GetTeacherPage(ctx context.Context, slug string) (*models.TeacherPage, error)
	AddAmazonProduct(ctx context.Context, p *models.AmazonProduct) error
	ListAmazonProducts(ctx context.Context, teacherID string) ([]models.AmazonProduct, error)
}

type Content interface {
	ListLiveClasses(ctx context.Context, from time.Time) ([]models.LiveClass, error)
	CreateLiveClass(ctx context.Context, l *models.LiveClass) error
	ListBlogs(ctx context.Context) ([]models.Blog, error)
	GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error)
	CreateBlog(ctx context.Context, b *models.Blog) error
	ListEvents(ctx context.Context, from time.Time) ([]models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
	MarkNotificationRead(ctx context.Context, userID, id string) error
}

// Store is every collection the marketplace reads and writes.
type Store interface {
	Users
	Courses
	Enrollments
	Orders
	Coupons
	Reviews
	Teachers
	Content
	Stats(ctx context.Context) (*models.Stats, error)
}
