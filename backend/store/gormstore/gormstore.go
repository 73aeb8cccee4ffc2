// Package gormstore is the hosted store.Store backed by PostgreSQL through GORM.
package gormstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"rdcshop/backend/models"
	"rdcshop/backend/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AllModels lists every table the store owns, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Order{},
		&models.Coupon{},
		&models.Review{},
		&models.Teacher{},
		&models.TeacherPage{},
		&models.AmazonProduct{},
		&models.LiveClass{},
		&models.Blog{},
		&models.Event{},
		&models.Notification{},
	}
}

// Migrate creates or updates every table.
func (s *Store) Migrate() error {
	return errors.Wrap(s.db.AutoMigrate(AllModels()...), "auto migrate")
}

// translate maps GORM errors onto the store sentinels. The DB handle is
// expected to be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return errors.Wrap(err, op)
}

func first[T any](ctx context.Context, db *gorm.DB, op string, query string, args ...interface{}) (*T, error) {
	var v T
	if err := db.WithContext(ctx).Where(query, args...).First(&v).Error; err != nil {
		return nil, translate(err, op)
	}
	return &v, nil
}

// updated checks that a write touched a row.
func updated(res *gorm.DB, op string) error {
	if res.Error != nil {
		return translate(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	models.EnsureID(&u.ID)
	return translate(s.db.WithContext(ctx).Create(u).Error, "create user")
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](ctx, s.db, "get user", "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, s.db, "get user by email", "LOWER(email) = LOWER(?)", email)
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Select("*").Omit("created_at").Updates(u)
	return updated(res, "update user")
}

// Courses

func (s *Store) ListCourses(ctx context.Context, f store.CourseFilter) ([]models.Course, int64, error) {
	f = f.Normalize()

	q := s.db.WithContext(ctx).Model(&models.Course{}).Where("status = ?", f.Status)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory = ?", f.Subcategory)
	}
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	if f.IsFree != nil {
		q = q.Where("feature_is_free = ?", *f.IsFree)
	}
	if f.InstructorID != "" {
		q = q.Where("instructor_id = ?", f.InstructorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count courses")
	}

	var courses []models.Course
	err := q.Order("stats_total_students DESC").Limit(f.Limit).Offset(f.Offset).Find(&courses).Error
	if err != nil {
		return nil, 0, translate(err, "list courses")
	}
	return courses, total, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return first[models.Course](ctx, s.db, "get course", "id = ?", id)
}

func (s *Store) FindCourseByTitle(ctx context.Context, title string) (*models.Course, error) {
	return first[models.Course](ctx, s.db, "find course", "title = ?", title)
}

func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	models.EnsureID(&c.ID)
	return translate(s.db.WithContext(ctx).Create(c).Error, "create course")
}

// Enrollments

func (s *Store) CreateEnrollment(ctx context.Context, e *models.Enrollment) error {
	models.EnsureID(&e.ID)
	return translate(s.db.WithContext(ctx).Create(e).Error, "create enrollment")
}

func (s *Store) GetEnrollment(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	return first[models.Enrollment](ctx, s.db, "get enrollment", "user_id = ? AND course_id = ?", userID, courseID)
}

func (s *Store) ListEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var items []models.Enrollment
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("enrolled_at DESC").Find(&items).Error
	return items, translate(err, "list enrollments")
}

func (s *Store) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	res := s.db.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", e.ID).Select("*").Updates(e)
	return updated(res, "update enrollment")
}

// Orders

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	models.EnsureID(&o.ID)
	return translate(s.db.WithContext(ctx).Create(o).Error, "create order")
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return first[models.Order](ctx, s.db, "get order", "id = ?", id)
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", o.ID).Select("*").Omit("created_at").Updates(o)
	return updated(res, "update order")
}

// Coupons

func (s *Store) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	models.EnsureID(&c.ID)
	return translate(s.db.WithContext(ctx).Create(c).Error, "create coupon")
}

func (s *Store) GetActiveCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	return first[models.Coupon](ctx, s.db, "get coupon", "code = ? AND is_active = ?", code, true)
}

func (s *Store) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return first[models.Coupon](ctx, s.db, "find coupon", "code = ?", code)
}

func (s *Store) IncrementCouponUsage(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Coupon{}).Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	return updated(res, "increment coupon usage")
}

func (s *Store) DeactivateExpiredCoupons(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("is_active = ? AND valid_until < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, translate(res.Error, "deactivate coupons")
}

// Reviews

func (s *Store) ListReviews(ctx context.Context, courseID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Order("created_at DESC").Find(&reviews).Error
	return reviews, translate(err, "list reviews")
}

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	models.EnsureID(&r.ID)
	return translate(s.db.WithContext(ctx).Create(r).Error, "create review")
}

// Teachers

func (s *Store) CreateTeacher(ctx context.Context, t *models.Teacher) error {
	models.EnsureID(&t.ID)
	return translate(s.db.WithContext(ctx).Create(t).Error, "create teacher")
}

func (s *Store) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	return first[models.Teacher](ctx, s.db, "get teacher", "id = ?", id)
}

func (s *Store) GetTeacherBySlug(ctx context.Context, slug string) (*models.Teacher, error) {
	return first[models.Teacher](ctx, s.db, "get teacher by slug", "teacher_slug = ?", slug)
}

func (s *Store) ListActiveTeachers(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := s.db.WithContext(ctx).Where("teacher_is_active = ?", true).Order("teacher_joined_at DESC").Find(&teachers).Error
	return teachers, translate(err, "list teachers")
}

func (s *Store) SaveTeacherPage(ctx context.Context, p *models.TeacherPage) error {
	return translate(s.db.WithContext(ctx).Save(p).Error, "save teacher page")
}

func (s *Store) GetTeacherPage(ctx context.Context, slug string) (*models.TeacherPage, error) {
	return first[models.TeacherPage](ctx, s.db, "get teacher page", "slug = ?", slug)
}

func (s *Store) AddAmazonProduct(ctx context.Context, p *models.AmazonProduct) error {
	models.EnsureID(&p.ID)
	if p.AddedAt.IsZero() {
		p.AddedAt = time.Now()
	}
	return translate(s.db.WithContext(ctx).Create(p).Error, "add amazon product")
}

func (s *Store) ListAmazonProducts(ctx context.Context, teacherID string) ([]models.AmazonProduct, error) {
	var products []models.AmazonProduct
	err := s.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("added_at").Find(&products).Error
	return products, translate(err, "list amazon products")
}

// Content

func (s *Store) ListLiveClasses(ctx context.Context, from time.Time) ([]models.LiveClass, error) {
	var classes []models.LiveClass
	err := s.db.WithContext(ctx).Where("scheduled_at >= ?", from).Order("scheduled_at").Find(&classes).Error
	return classes, translate(err, "list live classes")
}

func (s *Store) CreateLiveClass(ctx context.Context, l *models.LiveClass) error {
	models.EnsureID(&l.ID)
	return translate(s.db.WithContext(ctx).Create(l).Error, "create live class")
}

func (s *Store) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	var blogs []models.Blog
	err := s.db.WithContext(ctx).Where("is_published = ?", true).Order("created_at DESC").Find(&blogs).Error
	return blogs, translate(err, "list blogs")
}

func (s *Store) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return first[models.Blog](ctx, s.db, "get blog", "slug = ?", slug)
}

func (s *Store) CreateBlog(ctx context.Context, b *models.Blog) error {
	models.EnsureID(&b.ID)
	return translate(s.db.WithContext(ctx).Create(b).Error, "create blog")
}

func (s *Store) ListEvents(ctx context.Context, from time.Time) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).Where("end_date >= ?", from).Order("start_date").Find(&events).Error
	return events, translate(err, "list events")
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	models.EnsureID(&e.ID)
	return translate(s.db.WithContext(ctx).Create(e).Error, "create event")
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	var items []models.Notification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	return items, translate(err, "list notifications")
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	models.EnsureID(&n.ID)
	return translate(s.db.WithContext(ctx).Create(n).Error, "create notification")
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return updated(res, "mark notification read")
}

func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	db := s.db.WithContext(ctx)
	var stats models.Stats

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &stats.Users},
		{&models.Course{}, &stats.Courses},
		{&models.Teacher{}, &stats.Teachers},
		{&models.Order{}, &stats.Orders},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, translate(err, "stats")
		}
	}

	err := db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentCompleted).
		Select("COUNT(*) AS completed_orders, COALESCE(SUM(total), 0) AS revenue").
		Row().Scan(&stats.CompletedOrders, &stats.Revenue)
	if err != nil {
		return nil, translate(err, "stats")
	}
	return &stats, nil
}
