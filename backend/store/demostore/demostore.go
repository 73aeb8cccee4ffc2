// Package demostore keeps every collection as one JSON array under a fixed
// key of a kv.Store, the way demo mode kept its data in browser storage.
// A whole collection is read and rewritten on every change, so concurrent
// writers in different processes resolve as last-write-wins.
package demostore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/kv"
	"rdcshop/backend/models"
	"rdcshop/backend/store"
)

const (
	KeyUsers          = "edulms_demo_users"
	KeyCourses        = "edulms_demo_courses"
	KeyEnrollments    = "edulms_demo_enrollments"
	KeyOrders         = "edulms_demo_orders"
	KeyCoupons        = "edulms_demo_coupons"
	KeyReviews        = "edulms_demo_reviews"
	KeyTeachers       = "edulms_demo_teachers"
	KeyTeacherPages   = "edulms_demo_teacher_pages"
	KeyAmazonProducts = "edulms_demo_amazon_products"
	KeyLiveClasses    = "edulms_demo_live_classes"
	KeyBlogs          = "edulms_demo_blogs"
	KeyEvents         = "edulms_demo_events"
	KeyNotifications  = "edulms_demo_notifications"
)

type Store struct {
	kv  kv.Store
	mu  sync.Mutex
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(s kv.Store) *Store {
	return &Store{kv: s, now: time.Now}
}

func load[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	var items []T
	err := kv.GetJSON(ctx, s.kv, key, &items)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// mutate runs fn over the collection under key and writes the result back.
// Within one process the read-modify-write is serialized.
func mutate[T any](ctx context.Context, s *Store, key string, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := load[T](ctx, s, key)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return kv.SetJSON(ctx, s.kv, key, items, 0)
}

func findOne[T any](ctx context.Context, s *Store, key string, match func(*T) bool) (*T, error) {
	items, err := load[T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(&items[i]) {
			return &items[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func filter[T any](ctx context.Context, s *Store, key string, match func(*T) bool) ([]T, error) {
	items, err := load[T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i := range items {
		if match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// replace swaps the element matching match with v.
func replace[T any](ctx context.Context, s *Store, key string, v T, match func(*T) bool) error {
	return mutate(ctx, s, key, func(items []T) ([]T, error) {
		for i := range items {
			if match(&items[i]) {
				items[i] = v
				return items, nil
			}
		}
		return nil, store.ErrNotFound
	})
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	models.EnsureID(&u.ID)
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return mutate(ctx, s, KeyUsers, func(users []models.User) ([]models.User, error) {
		for _, existing := range users {
			if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
				return nil, store.ErrDuplicate
			}
		}
		return append(users, *u), nil
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findOne(ctx, s, KeyUsers, func(u *models.User) bool { return u.ID == id })
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne(ctx, s, KeyUsers, func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = s.now()
	return replace(ctx, s, KeyUsers, *u, func(x *models.User) bool { return x.ID == u.ID })
}

// Courses

func (s *Store) ListCourses(ctx context.Context, f store.CourseFilter) ([]models.Course, int64, error) {
	f = f.Normalize()
	courses, err := filter(ctx, s, KeyCourses, f.Matches)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].Stats.TotalStudents > courses[j].Stats.TotalStudents
	})

	total := int64(len(courses))
	if f.Offset >= len(courses) {
		return []models.Course{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(courses) {
		end = len(courses)
	}
	return courses[f.Offset:end], total, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return findOne(ctx, s, KeyCourses, func(c *models.Course) bool { return c.ID == id })
}

func (s *Store) FindCourseByTitle(ctx context.Context, title string) (*models.Course, error) {
	return findOne(ctx, s, KeyCourses, func(c *models.Course) bool { return c.Title == title })
}

func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	models.EnsureID(&c.ID)
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	return mutate(ctx, s, KeyCourses, func(courses []models.Course) ([]models.Course, error) {
		return append(courses, *c), nil
	})
}

// Enrollments

func (s *Store) CreateEnrollment(ctx context.Context, e *models.Enrollment) error {
	models.EnsureID(&e.ID)
	e.UpdatedAt = s.now()
	return mutate(ctx, s, KeyEnrollments, func(items []models.Enrollment) ([]models.Enrollment, error) {
		for _, existing := range items {
			if existing.UserID == e.UserID && existing.CourseID == e.CourseID {
				return nil, store.ErrDuplicate
			}
		}
		return append(items, *e), nil
	})
}

func (s *Store) GetEnrollment(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	return findOne(ctx, s, KeyEnrollments, func(e *models.Enrollment) bool {
		return e.UserID == userID && e.CourseID == courseID
	})
}

func (s *Store) ListEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	items, err := filter(ctx, s, KeyEnrollments, func(e *models.Enrollment) bool { return e.UserID == userID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].EnrolledAt.After(items[j].EnrolledAt) })
	return items, nil
}

func (s *Store) UpdateEnrollment(ctx context.Context, e *models.Enrollment) error {
	e.UpdatedAt = s.now()
	return replace(ctx, s, KeyEnrollments, *e, func(x *models.Enrollment) bool { return x.ID == e.ID })
}

// Orders

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	models.EnsureID(&o.ID)
	now := s.now()
	o.CreatedAt, o.UpdatedAt = now, now
	return mutate(ctx, s, KeyOrders, func(orders []models.Order) ([]models.Order, error) {
		return append(orders, *o), nil
	})
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return findOne(ctx, s, KeyOrders, func(o *models.Order) bool { return o.ID == id })
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	o.UpdatedAt = s.now()
	return replace(ctx, s, KeyOrders, *o, func(x *models.Order) bool { return x.ID == o.ID })
}

// Coupons

func (s *Store) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	models.EnsureID(&c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	return mutate(ctx, s, KeyCoupons, func(coupons []models.Coupon) ([]models.Coupon, error) {
		for _, existing := range coupons {
			if existing.Code == c.Code {
				return nil, store.ErrDuplicate
			}
		}
		return append(coupons, *c), nil
	})
}

func (s *Store) GetActiveCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	return findOne(ctx, s, KeyCoupons, func(c *models.Coupon) bool { return c.Code == code && c.IsActive })
}

func (s *Store) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return findOne(ctx, s, KeyCoupons, func(c *models.Coupon) bool { return c.Code == code })
}

func (s *Store) IncrementCouponUsage(ctx context.Context, id string) error {
	return mutate(ctx, s, KeyCoupons, func(coupons []models.Coupon) ([]models.Coupon, error) {
		for i := range coupons {
			if coupons[i].ID == id {
				coupons[i].UsedCount++
				return coupons, nil
			}
		}
		return nil, store.ErrNotFound
	})
}

func (s *Store) DeactivateExpiredCoupons(ctx context.Context, now time.Time) (int64, error) {
	var changed int64
	err := mutate(ctx, s, KeyCoupons, func(coupons []models.Coupon) ([]models.Coupon, error) {
		for i := range coupons {
			if coupons[i].IsActive && coupons[i].ValidUntil.Before(now) {
				coupons[i].IsActive = false
				changed++
			}
		}
		return coupons, nil
	})
	return changed, err
}

// Reviews

func (s *Store) ListReviews(ctx context.Context, courseID string) ([]models.Review, error) {
	reviews, err := filter(ctx, s, KeyReviews, func(r *models.Review) bool { return r.CourseID == courseID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	models.EnsureID(&r.ID)
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	return mutate(ctx, s, KeyReviews, func(reviews []models.Review) ([]models.Review, error) {
		return append(reviews, *r), nil
	})
}

// Teachers

func (s *Store) CreateTeacher(ctx context.Context, t *models.Teacher) error {
	models.EnsureID(&t.ID)
	now := s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	return mutate(ctx, s, KeyTeachers, func(teachers []models.Teacher) ([]models.Teacher, error) {
		for _, existing := range teachers {
			if existing.TeacherData.Slug == t.TeacherData.Slug {
				return nil, store.ErrDuplicate
			}
		}
		return append(teachers, *t), nil
	})
}

func (s *Store) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	return findOne(ctx, s, KeyTeachers, func(t *models.Teacher) bool { return t.ID == id })
}

func (s *Store) GetTeacherBySlug(ctx context.Context, slug string) (*models.Teacher, error) {
	return findOne(ctx, s, KeyTeachers, func(t *models.Teacher) bool { return t.TeacherData.Slug == slug })
}

func (s *Store) ListActiveTeachers(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := filter(ctx, s, KeyTeachers, func(t *models.Teacher) bool { return t.TeacherData.IsActive })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(teachers, func(i, j int) bool {
		return teachers[i].TeacherData.JoinedAt.After(teachers[j].TeacherData.JoinedAt)
	})
	return teachers, nil
}

func (s *Store) SaveTeacherPage(ctx context.Context, p *models.TeacherPage) error {
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return mutate(ctx, s, KeyTeacherPages, func(pages []models.TeacherPage) ([]models.TeacherPage, error) {
		for i := range pages {
			if pages[i].Slug == p.Slug {
				pages[i] = *p
				return pages, nil
			}
		}
		return append(pages, *p), nil
	})
}

func (s *Store) GetTeacherPage(ctx context.Context, slug string) (*models.TeacherPage, error) {
	return findOne(ctx, s, KeyTeacherPages, func(p *models.TeacherPage) bool { return p.Slug == slug })
}

func (s *Store) AddAmazonProduct(ctx context.Context, p *models.AmazonProduct) error {
	models.EnsureID(&p.ID)
	if p.AddedAt.IsZero() {
		p.AddedAt = s.now()
	}
	return mutate(ctx, s, KeyAmazonProducts, func(products []models.AmazonProduct) ([]models.AmazonProduct, error) {
		return append(products, *p), nil
	})
}

func (s *Store) ListAmazonProducts(ctx context.Context, teacherID string) ([]models.AmazonProduct, error) {
	return filter(ctx, s, KeyAmazonProducts, func(p *models.AmazonProduct) bool { return p.TeacherID == teacherID })
}

// Content

func (s *Store) ListLiveClasses(ctx context.Context, from time.Time) ([]models.LiveClass, error) {
	classes, err := filter(ctx, s, KeyLiveClasses, func(l *models.LiveClass) bool { return !l.ScheduledAt.Before(from) })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].ScheduledAt.Before(classes[j].ScheduledAt) })
	return classes, nil
}

func (s *Store) CreateLiveClass(ctx context.Context, l *models.LiveClass) error {
	models.EnsureID(&l.ID)
	l.CreatedAt = s.now()
	return mutate(ctx, s, KeyLiveClasses, func(items []models.LiveClass) ([]models.LiveClass, error) {
		return append(items, *l), nil
	})
}

func (s *Store) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	blogs, err := filter(ctx, s, KeyBlogs, func(b *models.Blog) bool { return b.IsPublished })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(blogs, func(i, j int) bool { return blogs[i].CreatedAt.After(blogs[j].CreatedAt) })
	return blogs, nil
}

func (s *Store) GetBlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return findOne(ctx, s, KeyBlogs, func(b *models.Blog) bool { return b.Slug == slug })
}

func (s *Store) CreateBlog(ctx context.Context, b *models.Blog) error {
	models.EnsureID(&b.ID)
	now := s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	return mutate(ctx, s, KeyBlogs, func(blogs []models.Blog) ([]models.Blog, error) {
		for _, existing := range blogs {
			if existing.Slug == b.Slug {
				return nil, store.ErrDuplicate
			}
		}
		return append(blogs, *b), nil
	})
}

func (s *Store) ListEvents(ctx context.Context, from time.Time) ([]models.Event, error) {
	events, err := filter(ctx, s, KeyEvents, func(e *models.Event) bool { return !e.EndDate.Before(from) })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].StartDate.Before(events[j].StartDate) })
	return events, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	models.EnsureID(&e.ID)
	e.CreatedAt = s.now()
	return mutate(ctx, s, KeyEvents, func(events []models.Event) ([]models.Event, error) {
		return append(events, *e), nil
	})
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	items, err := filter(ctx, s, KeyNotifications, func(n *models.Notification) bool { return n.UserID == userID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	models.EnsureID(&n.ID)
	n.CreatedAt = s.now()
	return mutate(ctx, s, KeyNotifications, func(items []models.Notification) ([]models.Notification, error) {
		return append(items, *n), nil
	})
}

func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return mutate(ctx, s, KeyNotifications, func(items []models.Notification) ([]models.Notification, error) {
		for i := range items {
			if items[i].ID == id && items[i].UserID == userID {
				items[i].IsRead = true
				return items, nil
			}
		}
		return nil, store.ErrNotFound
	})
}

func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	users, err := load[models.User](ctx, s, KeyUsers)
	if err != nil {
		return nil, err
	}
	courses, err := load[models.Course](ctx, s, KeyCourses)
	if err != nil {
		return nil, err
	}
	teachers, err := load[models.Teacher](ctx, s, KeyTeachers)
	if err != nil {
		return nil, err
	}
	orders, err := load[models.Order](ctx, s, KeyOrders)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{
		Users:    int64(len(users)),
		Courses:  int64(len(courses)),
		Teachers: int64(len(teachers)),
		Orders:   int64(len(orders)),
	}
	for _, o := range orders {
		if o.PaymentStatus == models.PaymentCompleted {
			stats.CompletedOrders++
			stats.Revenue += o.Total
		}
	}
	return stats, nil
}
