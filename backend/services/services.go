// Package services holds the marketplace operations the HTTP handlers call:
// catalogue and enrollment, orders and coupons, teacher shops, dashboards,
// content and seeding. Every operation goes through store.Store, so the
// same code serves the hosted and the demo backend.
package services

import (
	"io"
	"log"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/store"
)

var (
	ErrForbidden    = errors.New("You do not have access to this resource")
	ErrNotEnrolled  = errors.New("You are not enrolled in this course")
	ErrInvalidInput = errors.New("Invalid input")
	// ErrPaymentRequired is returned when enrolling in a paid course
	// directly instead of through an order.
	ErrPaymentRequired = errors.New("This course must be purchased before enrolling")
)

type Options struct {
	// TaxRate is charged on the discounted subtotal. Zero turns tax off.
	TaxRate float64
	// AdminPassword, when set, is the sign-in password of the seeded admin
	// account.
	AdminPassword string
	// Demo turns on the demo-mode conveniences: auto-verified teachers with
	// sample achievements, earnings and products.
	Demo   bool
	Logger *log.Logger
	Now    func() time.Time
}

type Services struct {
	Courses   *CourseService
	Orders    *OrderService
	Teachers  *TeacherService
	Dashboard *DashboardService
	Content   *ContentService
	Seeder    *Seeder
}

func New(st store.Store, opts Options) *Services {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	courses := &CourseService{store: st, now: opts.Now}
	content := &ContentService{store: st, now: opts.Now}
	orders := &OrderService{
		store:   st,
		courses: courses,
		content: content,
		taxRate: opts.TaxRate,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	teachers := &TeacherService{store: st, demo: opts.Demo, now: opts.Now}

	return &Services{
		Courses:   courses,
		Orders:    orders,
		Teachers:  teachers,
		Dashboard: &DashboardService{store: st, teachers: teachers},
		Content:   content,
		Seeder: &Seeder{
			store:         st,
			teachers:      teachers,
			adminPassword: opts.AdminPassword,
			now:           opts.Now,
			logger:        opts.Logger,
		},
	}
}
