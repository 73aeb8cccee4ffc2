package services

import (
	"context"

	"github.com/pkg/errors"

	"rdcshop/backend/models"
	"rdcshop/backend/store"
	"rdcshop/backend/utils"
)

type DashboardService struct {
	store    store.Store
	teachers *TeacherService
}

type EnrolledCourse struct {
	Enrollment models.Enrollment `json:"enrollment"`
	Course     *models.Course    `json:"course,omitempty"`
}

type StudentDashboard struct {
	Enrolled       []EnrolledCourse `json:"enrolled"`
	CompletedCount int              `json:"completedCount"`
	Certificates   int              `json:"certificates"`
}

type TeacherDashboard struct {
	Courses       []models.Course `json:"courses"`
	TotalStudents int             `json:"totalStudents"`
	Shop          *Shop           `json:"shop,omitempty"`
}

type AffiliateDashboard struct {
	ReferralCode   string  `json:"referralCode"`
	CommissionRate float64 `json:"commissionRate"`
	TotalEarnings  float64 `json:"totalEarnings"`
}

// Dashboard is the role summary of one user. Exactly one of the role
// sections is set.
type Dashboard struct {
	Role      string              `json:"role"`
	User      *models.User        `json:"user"`
	Student   *StudentDashboard   `json:"student,omitempty"`
	Teacher   *TeacherDashboard   `json:"teacher,omitempty"`
	Admin     *models.Stats       `json:"admin,omitempty"`
	Affiliate *AffiliateDashboard `json:"affiliate,omitempty"`
}

func (s *DashboardService) For(ctx context.Context, u *models.User) (*Dashboard, error) {
	d := &Dashboard{Role: u.Role, User: u}
	var err error
	switch u.Role {
	case models.RoleTeacher:
		d.Teacher, err = s.teacher(ctx, u)
	case models.RoleAdmin:
		d.Admin, err = s.store.Stats(ctx)
		err = errors.Wrap(err, "load stats")
	case models.RoleAffiliate:
		d.Affiliate = &AffiliateDashboard{
			ReferralCode:   u.Profile.ReferralCode,
			CommissionRate: u.Profile.CommissionRate,
			TotalEarnings:  u.Profile.TotalEarnings,
		}
	default:
		d.Student, err = s.student(ctx, u)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) student(ctx context.Context, u *models.User) (*StudentDashboard, error) {
	enrollments, err := s.store.ListEnrollments(ctx, u.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}

	out := &StudentDashboard{Enrolled: make([]EnrolledCourse, 0, len(enrollments))}
	for _, e := range enrollments {
		item := EnrolledCourse{Enrollment: e}
		c, err := s.store.GetCourse(ctx, e.CourseID)
		switch {
		case err == nil:
			c.ApplyDefaults()
			item.Course = c
		case !errors.Is(err, store.ErrNotFound):
			return nil, errors.Wrap(err, "load course")
		}
		if e.Status == models.EnrollmentCompleted {
			out.CompletedCount++
		}
		if e.Certificate != nil {
			out.Certificates++
		}
		out.Enrolled = append(out.Enrolled, item)
	}
	return out, nil
}

// teacher summarises a teacher's courses. The shop is the profile linked to
// the account, falling back to the slug of the account name, and is left out
// when the teacher has none.
func (s *DashboardService) teacher(ctx context.Context, u *models.User) (*TeacherDashboard, error) {
	courses, err := s.teachers.Courses(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	out := &TeacherDashboard{Courses: courses}
	for _, c := range courses {
		out.TotalStudents += c.Stats.TotalStudents
	}

	slug := utils.GenerateSlug(u.Name)
	if t, err := s.store.GetTeacher(ctx, u.ID); err == nil {
		slug = t.TeacherData.Slug
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(err, "look up teacher")
	}
	if slug == "" {
		return out, nil
	}
	shop, err := s.teachers.Shop(ctx, slug)
	switch {
	case err == nil:
		out.Shop = shop
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	return out, nil
}
