package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Kinds of trackable course items.
const (
	ItemLesson     = "lesson"
	ItemQuiz       = "quiz"
	ItemAssignment = "assignment"
)

const PlaceholderThumbnail = "/placeholder.svg?height=200&width=300"

type Instructor struct {
	ID            string  `gorm:"index" json:"id"`
	Name          string  `json:"name"`
	NameBn        string  `json:"nameBn"`
	Avatar        string  `json:"avatar"`
	Bio           string  `json:"bio"`
	BioBn         string  `json:"bioBn"`
	Rating        float64 `json:"rating"`
	TotalStudents int     `json:"totalStudents"`
}

type CourseDuration struct {
	Total        string `json:"total"`
	TotalBn      string `json:"totalBn"`
	Weeks        int    `json:"weeks"`
	HoursPerWeek int    `json:"hoursPerWeek"`
}

type CourseContent struct {
	TotalLessons          int `json:"totalLessons"`
	TotalQuizzes          int `json:"totalQuizzes"`
	TotalAssignments      int `json:"totalAssignments"`
	DownloadableResources int `json:"downloadableResources"`
}

type CourseMedia struct {
	Thumbnail string                      `json:"thumbnail"`
	Trailer   string                      `json:"trailer,omitempty"`
	Images    datatypes.JSONSlice[string] `json:"images"`
}

type CourseStats struct {
	Rating         float64 `json:"rating"`
	TotalRatings   int     `json:"totalRatings"`
	TotalStudents  int     `gorm:"index" json:"totalStudents"`
	CompletionRate float64 `json:"completionRate"`
}

type CourseFeatures struct {
	IsLive         bool `json:"isLive"`
	IsFree         bool `gorm:"index" json:"isFree"`
	HasLiveSupport bool `json:"hasLiveSupport"`
	HasCertificate bool `json:"hasCertificate"`
	HasDownloads   bool `json:"hasDownloads"`
	HasQuizzes     bool `json:"hasQuizzes"`
	HasAssignments bool `json:"hasAssignments"`
}

type CourseSchedule struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	ClassTime string    `json:"classTime"`
	ClassDays []string  `json:"classDays"`
}

type Resource struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"` // pdf, doc, image, link
	URL   string `json:"url"`
	Size  string `json:"size,omitempty"`
}

type Lesson struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	TitleBn       string     `json:"titleBn"`
	Description   string     `json:"description"`
	DescriptionBn string     `json:"descriptionBn"`
	Type          string     `json:"type"` // video, text, pdf, live
	Duration      string     `json:"duration"`
	VideoURL      string     `json:"videoUrl,omitempty"`
	Content       string     `json:"content,omitempty"`
	Resources     []Resource `json:"resources"`
	Order         int        `json:"order"`
	IsPreview     bool       `json:"isPreview"`
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	QuestionBn    string   `json:"questionBn"`
	Type          string   `json:"type"` // multiple-choice, true-false, fill-blank
	Options       []string `json:"options"`
	OptionsBn     []string `json:"optionsBn"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	ExplanationBn string   `json:"explanationBn,omitempty"`
	Points        int      `json:"points"`
}

type Quiz struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	TitleBn      string         `json:"titleBn"`
	Description  string         `json:"description"`
	Questions    []QuizQuestion `json:"questions"`
	TimeLimit    int            `json:"timeLimit"` // minutes
	PassingScore int            `json:"passingScore"`
	Attempts     int            `json:"attempts"`
	IsRandomized bool           `json:"isRandomized"`
}

type Assignment struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	TitleBn          string    `json:"titleBn"`
	Description      string    `json:"description"`
	DescriptionBn    string    `json:"descriptionBn"`
	Instructions     string    `json:"instructions"`
	DueDate          time.Time `json:"dueDate"`
	MaxScore         int       `json:"maxScore"`
	SubmissionType   string    `json:"submissionType"` // file, text, link
	AllowedFileTypes []string  `json:"allowedFileTypes,omitempty"`
	MaxFileSize      int       `json:"maxFileSize,omitempty"`
}

type CourseModule struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	TitleBn       string      `json:"titleBn"`
	Description   string      `json:"description"`
	DescriptionBn string      `json:"descriptionBn"`
	Order         int         `json:"order"`
	Duration      string      `json:"duration"`
	Lessons       []Lesson    `json:"lessons"`
	Quiz          *Quiz       `json:"quiz,omitempty"`
	Assignment    *Assignment `json:"assignment,omitempty"`
}

type Syllabus struct {
	Modules []CourseModule `json:"modules"`
}

// Items counts the lessons, quizzes and assignments laid out in the syllabus.
func (s Syllabus) Items() (lessons, quizzes, assignments int) {
	for _, m := range s.Modules {
		lessons += len(m.Lessons)
		if m.Quiz != nil {
			quizzes++
		}
		if m.Assignment != nil {
			assignments++
		}
	}
	return lessons, quizzes, assignments
}

type Course struct {
	ID               string                      `gorm:"primaryKey;size:64" json:"id"`
	Title            string                      `json:"title"`
	TitleBn          string                      `json:"titleBn"`
	Description      string                      `json:"description"`
	DescriptionBn    string                      `json:"descriptionBn"`
	Instructor       Instructor                  `gorm:"embedded;embeddedPrefix:instructor_" json:"instructor"`
	Category         string                      `gorm:"index" json:"category"` // academic, skills, admission, language, professional
	Subcategory      string                      `gorm:"index" json:"subcategory"`
	Level            string                      `gorm:"index" json:"level"` // beginner, intermediate, advanced
	Price            float64                     `json:"price"`
	OriginalPrice    float64                     `json:"originalPrice"`
	Currency         string                      `gorm:"default:BDT" json:"currency"`
	Duration         CourseDuration              `gorm:"embedded;embeddedPrefix:duration_" json:"duration"`
	Content          CourseContent               `gorm:"embedded;embeddedPrefix:content_" json:"content"`
	Media            CourseMedia                 `gorm:"embedded;embeddedPrefix:media_" json:"media"`
	Stats            CourseStats                 `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	Features         CourseFeatures              `gorm:"embedded;embeddedPrefix:feature_" json:"features"`
	Schedule         *CourseSchedule             `gorm:"serializer:json" json:"schedule,omitempty"`
	Syllabus         Syllabus                    `gorm:"serializer:json" json:"syllabus"`
	Requirements     datatypes.JSONSlice[string] `json:"requirements"`
	TargetAudience   datatypes.JSONSlice[string] `json:"targetAudience"`
	LearningOutcomes datatypes.JSONSlice[string] `json:"learningOutcomes"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	Status           string                      `gorm:"index;default:draft" json:"status"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

// ApplyDefaults fills in the fields a reader expects to be present when the
// stored document left them out.
func (c *Course) ApplyDefaults() {
	if c.Title == "" {
		c.Title = "Untitled Course"
	}
	if c.TitleBn == "" {
		c.TitleBn = c.Title
		if c.TitleBn == "" {
			c.TitleBn = "শিরোনামহীন কোর্স"
		}
	}
	if c.Instructor.ID == "" {
		c.Instructor = Instructor{
			ID:     "unknown",
			Name:   "Unknown Instructor",
			NameBn: "অজানা শিক্ষক",
			Avatar: PlaceholderAvatar,
		}
	}
	if c.Media.Thumbnail == "" {
		c.Media.Thumbnail = PlaceholderThumbnail
	}
	if c.Media.Images == nil {
		c.Media.Images = datatypes.JSONSlice[string]{}
	}
	if c.Duration.Total == "" {
		c.Duration.Total = "0 hours"
	}
	if c.Duration.TotalBn == "" {
		c.Duration.TotalBn = "০ ঘন্টা"
	}
	if c.Currency == "" {
		c.Currency = "BDT"
	}
}

// TotalItems is the number of trackable items a student has to finish.
// The syllabus is authoritative when it has content; otherwise the
// advertised content counts are used.
func (c *Course) TotalItems() int {
	lessons, quizzes, assignments := c.Syllabus.Items()
	if n := lessons + quizzes + assignments; n > 0 {
		return n
	}
	return c.Content.TotalLessons + c.Content.TotalQuizzes + c.Content.TotalAssignments
}

// Free reports whether students may enroll without buying the course.
func (c *Course) Free() bool {
	return c.Features.IsFree || c.Price <= 0
}

// HasItem reports whether id names an item of the given kind. Courses
// without a syllabus number their items lesson-1, quiz-1, assignment-1 and
// so on up to the advertised content counts.
func (c *Course) HasItem(kind, id string) bool {
	if id == "" {
		return false
	}
	lessons, quizzes, assignments := c.Syllabus.Items()
	if lessons+quizzes+assignments > 0 {
		return c.Syllabus.has(kind, id)
	}

	var count int
	switch kind {
	case ItemLesson:
		count = c.Content.TotalLessons
	case ItemQuiz:
		count = c.Content.TotalQuizzes
	case ItemAssignment:
		count = c.Content.TotalAssignments
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, kind+"-"))
	if err != nil || id != kind+"-"+strconv.Itoa(n) {
		return false
	}
	return n >= 1 && n <= count
}

func (s Syllabus) has(kind, id string) bool {
	for _, m := range s.Modules {
		switch kind {
		case ItemLesson:
			for _, l := range m.Lessons {
				if l.ID == id {
					return true
				}
			}
		case ItemQuiz:
			if m.Quiz != nil && m.Quiz.ID == id {
				return true
			}
		case ItemAssignment:
			if m.Assignment != nil && m.Assignment.ID == id {
				return true
			}
		}
	}
	return false
}
