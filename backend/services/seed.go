package services

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"

	"rdcshop/backend/auth"
	"rdcshop/backend/models"
	"rdcshop/backend/store"
)

const (
	AdminID    = "admin"
	AdminEmail = "admin@edulms.com"
)

// Seeder loads the sample catalogue. Records that already exist are left
// alone, so seeding twice is harmless.
type Seeder struct {
	store         store.Store
	teachers      *TeacherService
	adminPassword string
	now           func() time.Time
	logger        *log.Logger
}

// SeedResult counts what a run actually inserted.
type SeedResult struct {
	Courses  int  `json:"courses"`
	Coupons  int  `json:"coupons"`
	Teachers int  `json:"teachers"`
	Admin    bool `json:"admin"`
}

func (s *Seeder) Run(ctx context.Context) (*SeedResult, error) {
	res := &SeedResult{}
	now := s.now()

	for _, c := range sampleCourses() {
		c := c
		_, err := s.store.FindCourseByTitle(ctx, c.Title)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrap(err, "look up course")
		}
		if err := s.store.CreateCourse(ctx, &c); err != nil {
			return nil, errors.Wrapf(err, "seed course %q", c.Title)
		}
		res.Courses++
	}
	s.logger.Printf("seed: %d courses added", res.Courses)

	for _, c := range sampleCoupons(now) {
		c := c
		err := s.store.CreateCoupon(ctx, &c)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "seed coupon %s", c.Code)
		}
		res.Coupons++
	}
	s.logger.Printf("seed: %d coupons added", res.Coupons)

	admin, err := s.EnsureAdmin(ctx)
	if err != nil {
		return nil, err
	}
	res.Admin = admin

	for _, in := range demoTeachers() {
		_, err := s.store.GetTeacherBySlug(ctx, TeacherSlug(in.Name))
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, errors.Wrap(err, "look up teacher")
		}
		if _, err := s.teachers.CreateProfile(ctx, in); err != nil {
			return nil, err
		}
		res.Teachers++
	}
	s.logger.Printf("seed: %d teachers added", res.Teachers)

	return res, nil
}

// EnsureAdmin creates the admin account unless a user with its ID or
// email is already there. With an admin password configured, an existing
// admin that has no password yet is given one. It reports whether the
// account was created.
func (s *Seeder) EnsureAdmin(ctx context.Context) (bool, error) {
	existing, err := s.store.GetUser(ctx, AdminID)
	if errors.Is(err, store.ErrNotFound) {
		existing, err = s.store.GetUserByEmail(ctx, AdminEmail)
	}
	switch {
	case err == nil:
		return false, s.setAdminPassword(ctx, existing)
	case !errors.Is(err, store.ErrNotFound):
		return false, errors.Wrap(err, "look up admin")
	}

	u := &models.User{
		ID:               AdminID,
		Name:             "Admin User",
		Email:            AdminEmail,
		Provider:         models.ProviderPassword,
		Role:             models.RoleAdmin,
		EnrolledCourses:  datatypes.JSONSlice[string]{},
		CompletedCourses: datatypes.JSONSlice[string]{},
		Preferences:      models.Preferences{Language: "bn", Notifications: true, Theme: "dark"},
		Profile:          models.Profile{Interests: []string{}},
	}
	if s.adminPassword != "" {
		hash, err := auth.HashPassword(s.adminPassword)
		if err != nil {
			return false, err
		}
		u.PasswordHash = hash
	} else {
		s.logger.Printf("seed: ADMIN_PASSWORD not set, the admin account cannot sign in with a password")
	}

	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "seed admin")
	}
	s.logger.Printf("seed: admin user created")
	return true, nil
}

func (s *Seeder) setAdminPassword(ctx context.Context, u *models.User) error {
	if s.adminPassword == "" || u.PasswordHash != "" || u.Role != models.RoleAdmin {
		return nil
	}
	hash, err := auth.HashPassword(s.adminPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return errors.Wrap(err, "set admin password")
	}
	s.logger.Printf("seed: admin password set")
	return nil
}

func sampleCoupons(now time.Time) []models.Coupon {
	day := 24 * time.Hour
	return []models.Coupon{
		{
			Code:              "NEWUSER50",
			Title:             "New User Discount",
			Description:       "50% off for new users",
			Type:              models.CouponPercentage,
			Value:             50,
			MinOrderAmount:    1000,
			MaxDiscountAmount: 2000,
			UsageLimit:        1000,
			ValidFrom:         now,
			ValidUntil:        now.Add(30 * day),
			IsActive:          true,
		},
		{
			Code:           "STUDENT30",
			Title:          "Student Discount",
			Description:    "30% off for students",
			Type:           models.CouponPercentage,
			Value:          30,
			MinOrderAmount: 500,
			UsageLimit:     5000,
			ValidFrom:      now,
			ValidUntil:     now.Add(60 * day),
			IsActive:       true,
		},
	}
}

func demoTeachers() []TeacherInput {
	return []TeacherInput{
		{
			Name:              "Dr. Rahman Ahmed",
			Email:             "rahman@edulms.com",
			Phone:             "+8801700000001",
			Bio:               "Experienced Physics teacher with 15+ years of teaching experience",
			BioBn:             "১৫+ বছরের শিক্ষকতার অভিজ্ঞতা সহ অভিজ্ঞ পদার্থবিজ্ঞান শিক্ষক",
			Specialization:    []string{"HSC Physics", "HSC Mathematics"},
			Experience:        15,
			Education:         "PhD in Physics, University of Dhaka",
			AmazonAffiliateID: "rahman-20",
		},
		{
			Name:              "Fatima Khan",
			Email:             "fatima@edulms.com",
			Phone:             "+8801700000002",
			Bio:               "Expert English teacher specializing in IELTS preparation",
			BioBn:             "IELTS প্রস্তুতিতে বিশেষজ্ঞ ইংরেজি শিক্ষক",
			Specialization:    []string{"IELTS", "English Language"},
			Experience:        8,
			Education:         "MA in English Literature, Dhaka University",
			AmazonAffiliateID: "fatima-20",
		},
	}
}

func allFeatures(live, free bool) models.CourseFeatures {
	return models.CourseFeatures{
		IsLive:         live,
		IsFree:         free,
		HasLiveSupport: live,
		HasCertificate: true,
		HasDownloads:   true,
		HasQuizzes:     true,
		HasAssignments: true,
	}
}

func seedInstructor(id, name, nameBn, bio, bioBn string, rating float64, students int) models.Instructor {
	return models.Instructor{
		ID:            id,
		Name:          name,
		NameBn:        nameBn,
		Avatar:        models.PlaceholderAvatar,
		Bio:           bio,
		BioBn:         bioBn,
		Rating:        rating,
		TotalStudents: students,
	}
}

func sampleCourses() []models.Course {
	media := models.CourseMedia{Thumbnail: models.PlaceholderThumbnail, Images: datatypes.JSONSlice[string]{}}
	return []models.Course{
		{
			Title:         "HSC Physics Complete Course",
			TitleBn:       "HSC পদার্থবিজ্ঞান সম্পূর্ণ কোর্স",
			Description:   "Complete HSC Physics preparation with expert guidance",
			DescriptionBn: "বিশেষজ্ঞ গাইডেন্স সহ সম্পূর্ণ HSC পদার্থবিজ্ঞান প্রস্তুতি",
			Instructor: seedInstructor("instructor1", "Dr. Rahman Ahmed", "ড. রহমান আহমেদ",
				"Physics expert with 15+ years experience", "১৫+ বছরের অভিজ্ঞতা সহ পদার্থবিজ্ঞান বিশেষজ্ঞ", 4.9, 12500),
			Category:         "academic",
			Subcategory:      "hsc",
			Level:            "intermediate",
			Price:            2500,
			OriginalPrice:    3500,
			Currency:         "BDT",
			Duration:         models.CourseDuration{Total: "120 hours", TotalBn: "১২০ ঘন্টা", Weeks: 16, HoursPerWeek: 8},
			Content:          models.CourseContent{TotalLessons: 45, TotalQuizzes: 15, TotalAssignments: 8, DownloadableResources: 25},
			Media:            media,
			Stats:            models.CourseStats{Rating: 4.9, TotalRatings: 2500, TotalStudents: 12500, CompletionRate: 85},
			Features:         allFeatures(true, false),
			Syllabus:         models.Syllabus{Modules: []models.CourseModule{}},
			Requirements:     []string{"HSC Science Background", "Basic Math Knowledge"},
			TargetAudience:   []string{"HSC Students", "University Aspirants"},
			LearningOutcomes: []string{"Master Physics Concepts", "Solve Complex Problems"},
			Tags:             []string{"HSC", "Physics", "Science", "Academic"},
			Status:           models.CourseStatusPublished,
		},
		{
			Title:         "IELTS Speaking Masterclass",
			TitleBn:       "IELTS স্পিকিং মাস্টারক্লাস",
			Description:   "Master IELTS Speaking with expert guidance",
			DescriptionBn: "বিশেষজ্ঞ গাইডেন্স সহ IELTS স্পিকিং মাস্টার করুন",
			Instructor: seedInstructor("instructor2", "Sarah Johnson", "সারাহ জনসন",
				"IELTS expert with Band 9 achievement", "ব্যান্ড ৯ অর্জনকারী IELTS বিশেষজ্ঞ", 4.8, 8900),
			Category:         "language",
			Subcategory:      "ielts",
			Level:            "intermediate",
			Currency:         "BDT",
			Duration:         models.CourseDuration{Total: "40 hours", TotalBn: "৪০ ঘন্টা", Weeks: 8, HoursPerWeek: 5},
			Content:          models.CourseContent{TotalLessons: 20, TotalQuizzes: 8, TotalAssignments: 5, DownloadableResources: 15},
			Media:            media,
			Stats:            models.CourseStats{Rating: 4.8, TotalRatings: 1800, TotalStudents: 8900, CompletionRate: 92},
			Features:         allFeatures(false, true),
			Syllabus:         models.Syllabus{Modules: []models.CourseModule{}},
			Requirements:     []string{"Basic English Knowledge"},
			TargetAudience:   []string{"IELTS Candidates", "English Learners"},
			LearningOutcomes: []string{"Improve Speaking Skills", "Achieve Target Band"},
			Tags:             []string{"IELTS", "English", "Speaking", "Language"},
			Status:           models.CourseStatusPublished,
		},
		{
			Title:         "Web Development Bootcamp",
			TitleBn:       "ওয়েব ডেভেলপমেন্ট বুটক্যাম্প",
			Description:   "Complete web development course from beginner to advanced",
			DescriptionBn: "শুরু থেকে উন্নত পর্যায় পর্যন্ত সম্পূর্ণ ওয়েব ডেভেলপমেন্ট কোর্স",
			Instructor: seedInstructor("instructor3", "Md. Karim Hassan", "মো. করিম হাসান",
				"Full-stack developer with 10+ years experience", "১০+ বছরের অভিজ্ঞতা সহ ফুল-স্ট্যাক ডেভেলপার", 4.9, 3400),
			Category:         "skills",
			Subcategory:      "programming",
			Level:            "beginner",
			Price:            3000,
			OriginalPrice:    4000,
			Currency:         "BDT",
			Duration:         models.CourseDuration{Total: "80 hours", TotalBn: "৮০ ঘন্টা", Weeks: 12, HoursPerWeek: 7},
			Content:          models.CourseContent{TotalLessons: 35, TotalQuizzes: 12, TotalAssignments: 10, DownloadableResources: 30},
			Media:            media,
			Stats:            models.CourseStats{Rating: 4.9, TotalRatings: 850, TotalStudents: 3400, CompletionRate: 78},
			Features:         allFeatures(true, false),
			Syllabus:         models.Syllabus{Modules: []models.CourseModule{}},
			Requirements:     []string{"Basic Computer Knowledge"},
			TargetAudience:   []string{"Beginners", "Career Changers"},
			LearningOutcomes: []string{"Build Web Applications", "Get Job Ready"},
			Tags:             []string{"Programming", "Web Development", "JavaScript", "React"},
			Status:           models.CourseStatusPublished,
		},
	}
}
