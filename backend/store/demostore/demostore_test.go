package demostore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdcshop/backend/kv"
	"rdcshop/backend/models"
	"rdcshop/backend/store"
)

func newTestStore() (*Store, *kv.Memory) {
	mem := kv.NewMemory()
	return New(mem), mem
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	u := &models.User{Name: "Rahim", Email: "rahim@example.com", Role: models.RoleStudent}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotEmpty(t, u.ID)

	got, err := s.GetUserByEmail(ctx, "RAHIM@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	err = s.CreateUser(ctx, &models.User{Name: "Other", Email: "rahim@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got.Phone = "01700000000"
	require.NoError(t, s.UpdateUser(ctx, got))
	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "01700000000", again.Phone)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateUser(ctx, &models.User{ID: "missing"}), store.ErrNotFound)
}

func TestCollectionsLiveUnderFixedKeys(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()

	require.NoError(t, s.CreateCoupon(ctx, &models.Coupon{Code: "NEWUSER50", IsActive: true}))

	var coupons []models.Coupon
	require.NoError(t, kv.GetJSON(ctx, mem, KeyCoupons, &coupons))
	require.Len(t, coupons, 1)
	assert.Equal(t, "NEWUSER50", coupons[0].Code)
}

func TestCorruptCollectionIsAnError(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore()

	require.NoError(t, mem.Set(ctx, KeyCourses, "{not json", 0))
	_, _, err := s.ListCourses(ctx, store.CourseFilter{})
	assert.Error(t, err)
}

func TestListCoursesFiltersSortsAndPages(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	free := true
	seed := []models.Course{
		{Title: "A", Category: "academic", Status: models.CourseStatusPublished, Stats: models.CourseStats{TotalStudents: 10}},
		{Title: "B", Category: "academic", Status: models.CourseStatusPublished, Stats: models.CourseStats{TotalStudents: 30}, Features: models.CourseFeatures{IsFree: true}},
		{Title: "C", Category: "skills", Status: models.CourseStatusPublished, Stats: models.CourseStats{TotalStudents: 20}},
		{Title: "D", Category: "academic", Status: models.CourseStatusDraft, Stats: models.CourseStats{TotalStudents: 99}},
	}
	for i := range seed {
		require.NoError(t, s.CreateCourse(ctx, &seed[i]))
	}

	courses, total, err := s.ListCourses(ctx, store.CourseFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, courses, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{courses[0].Title, courses[1].Title, courses[2].Title})

	courses, total, err = s.ListCourses(ctx, store.CourseFilter{Category: "academic"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "B", courses[0].Title)

	courses, _, err = s.ListCourses(ctx, store.CourseFilter{IsFree: &free})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "B", courses[0].Title)

	courses, total, err = s.ListCourses(ctx, store.CourseFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, courses, 1)
	assert.Equal(t, "C", courses[0].Title)

	courses, _, err = s.ListCourses(ctx, store.CourseFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, courses)

	courses, _, err = s.ListCourses(ctx, store.CourseFilter{Status: models.CourseStatusDraft})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "D", courses[0].Title)
}

func TestCouponLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	live := &models.Coupon{Code: "LIVE", IsActive: true, ValidUntil: now.Add(time.Hour)}
	stale := &models.Coupon{Code: "STALE", IsActive: true, ValidUntil: now.Add(-time.Hour)}
	off := &models.Coupon{Code: "OFF", IsActive: false, ValidUntil: now.Add(-time.Hour)}
	for _, c := range []*models.Coupon{live, stale, off} {
		require.NoError(t, s.CreateCoupon(ctx, c))
	}
	assert.ErrorIs(t, s.CreateCoupon(ctx, &models.Coupon{Code: "LIVE"}), store.ErrDuplicate)

	_, err := s.GetActiveCoupon(ctx, "OFF")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.IncrementCouponUsage(ctx, live.ID))
	require.NoError(t, s.IncrementCouponUsage(ctx, live.ID))
	got, err := s.GetActiveCoupon(ctx, "LIVE")
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsedCount)

	n, err := s.DeactivateExpiredCoupons(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.GetActiveCoupon(ctx, "STALE")
	assert.ErrorIs(t, err, store.ErrNotFound)
	c, err := s.FindCouponByCode(ctx, "STALE")
	require.NoError(t, err)
	assert.False(t, c.IsActive)
}

func TestEnrollmentsAndNotifications(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	e := models.NewEnrollment("u1", "c1", now)
	require.NoError(t, s.CreateEnrollment(ctx, e))
	require.NoError(t, s.CreateEnrollment(ctx, models.NewEnrollment("u1", "c2", now.Add(time.Hour))))
	require.NoError(t, s.CreateEnrollment(ctx, models.NewEnrollment("u2", "c1", now)))
	assert.ErrorIs(t, s.CreateEnrollment(ctx, models.NewEnrollment("u1", "c1", now)), store.ErrDuplicate)

	list, err := s.ListEnrollments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].CourseID)

	got, err := s.GetEnrollment(ctx, "u1", "c1")
	require.NoError(t, err)
	got.Progress.CompletedLessons = append(got.Progress.CompletedLessons, "l1")
	require.NoError(t, s.UpdateEnrollment(ctx, got))
	got, _ = s.GetEnrollment(ctx, "u1", "c1")
	assert.Equal(t, []string{"l1"}, got.Progress.CompletedLessons)

	n := &models.Notification{UserID: "u1", Title: "hi"}
	require.NoError(t, s.CreateNotification(ctx, n))
	assert.ErrorIs(t, s.MarkNotificationRead(ctx, "u2", n.ID), store.ErrNotFound)
	require.NoError(t, s.MarkNotificationRead(ctx, "u1", n.ID))
	notes, err := s.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.True(t, notes[0].IsRead)
}

func TestTeachersAndPages(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Teacher{Name: "Old", TeacherData: models.TeacherData{Slug: "old", IsActive: true, JoinedAt: now.Add(-time.Hour)}}
	newer := &models.Teacher{Name: "New", TeacherData: models.TeacherData{Slug: "new", IsActive: true, JoinedAt: now}}
	hidden := &models.Teacher{Name: "Hidden", TeacherData: models.TeacherData{Slug: "hidden", JoinedAt: now}}
	for _, tc := range []*models.Teacher{older, newer, hidden} {
		require.NoError(t, s.CreateTeacher(ctx, tc))
	}
	assert.ErrorIs(t, s.CreateTeacher(ctx, &models.Teacher{TeacherData: models.TeacherData{Slug: "old"}}), store.ErrDuplicate)

	active, err := s.ListActiveTeachers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "New", active[0].Name)

	require.NoError(t, s.SaveTeacherPage(ctx, &models.TeacherPage{Slug: "old", TeacherID: older.ID, Title: "v1"}))
	require.NoError(t, s.SaveTeacherPage(ctx, &models.TeacherPage{Slug: "old", TeacherID: older.ID, Title: "v2"}))
	page, err := s.GetTeacherPage(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "v2", page.Title)

	require.NoError(t, s.AddAmazonProduct(ctx, &models.AmazonProduct{TeacherID: older.ID, ASIN: "B08N5WRWNW"}))
	products, err := s.ListAmazonProducts(ctx, older.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	products, err = s.ListAmazonProducts(ctx, newer.ID)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "a@x.com"}))
	require.NoError(t, s.CreateOrder(ctx, &models.Order{Total: 525, PaymentStatus: models.PaymentCompleted}))
	require.NoError(t, s.CreateOrder(ctx, &models.Order{Total: 100, PaymentStatus: models.PaymentPending}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Users)
	assert.EqualValues(t, 2, stats.Orders)
	assert.EqualValues(t, 1, stats.CompletedOrders)
	assert.Equal(t, 525.0, stats.Revenue)
}

func TestConcurrentWritesInProcessAreNotLost(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: "u1"}))
		}()
	}
	wg.Wait()

	notes, err := s.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, notes, 20)
}
