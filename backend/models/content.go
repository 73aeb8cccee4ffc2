package models

import (
	"time"

	"gorm.io/datatypes"
)

type Review struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	UserID       string    `gorm:"index;size:64" json:"userId"`
	CourseID     string    `gorm:"index;size:64" json:"courseId"`
	Rating       int       `gorm:"check:rating>=1 AND rating<=5" json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	IsVerified   bool      `json:"isVerified"`
	HelpfulCount int       `json:"helpfulCount"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Person is the short author/instructor reference embedded in content.
type Person struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

const (
	LiveClassScheduled = "scheduled"
	LiveClassLive      = "live"
	LiveClassEnded     = "ended"
	LiveClassCancelled = "cancelled"
)

type LiveClass struct {
	ID                  string    `gorm:"primaryKey;size:64" json:"id"`
	CourseID            string    `gorm:"index;size:64" json:"courseId"`
	Title               string    `json:"title"`
	TitleBn             string    `json:"titleBn"`
	Description         string    `json:"description"`
	Instructor          Person    `gorm:"serializer:json" json:"instructor"`
	ScheduledAt         time.Time `gorm:"index" json:"scheduledAt"`
	Duration            int       `json:"duration"` // minutes
	MeetingURL          string    `json:"meetingUrl"`
	RecordingURL        string    `json:"recordingUrl,omitempty"`
	MaxParticipants     int       `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
	Status              string    `gorm:"default:scheduled" json:"status"`
	IsRecorded          bool      `json:"isRecorded"`
	CreatedAt           time.Time `json:"createdAt"`
}

type Blog struct {
	ID            string                      `gorm:"primaryKey;size:64" json:"id"`
	Title         string                      `json:"title"`
	TitleBn       string                      `json:"titleBn"`
	Slug          string                      `gorm:"uniqueIndex;size:200" json:"slug"`
	Excerpt       string                      `json:"excerpt"`
	ExcerptBn     string                      `json:"excerptBn"`
	Content       string                      `json:"content"`
	ContentBn     string                      `json:"contentBn"`
	Author        Person                      `gorm:"serializer:json" json:"author"`
	Category      string                      `json:"category"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	FeaturedImage string                      `json:"featuredImage"`
	ReadTime      int                         `json:"readTime"`
	Views         int                         `json:"views"`
	Likes         int                         `json:"likes"`
	IsPublished   bool                        `gorm:"index" json:"isPublished"`
	PublishedAt   *time.Time                  `json:"publishedAt,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

type EventAgenda struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Speaker     string `json:"speaker,omitempty"`
}

type Event struct {
	ID                   string        `gorm:"primaryKey;size:64" json:"id"`
	Title                string        `json:"title"`
	TitleBn              string        `json:"titleBn"`
	Description          string        `json:"description"`
	DescriptionBn        string        `json:"descriptionBn"`
	Type                 string        `json:"type"` // webinar, workshop, seminar, competition
	StartDate            time.Time     `gorm:"index" json:"startDate"`
	EndDate              time.Time     `json:"endDate"`
	Location             string        `json:"location"`
	IsOnline             bool          `json:"isOnline"`
	MeetingURL           string        `json:"meetingUrl,omitempty"`
	MaxParticipants      int           `json:"maxParticipants,omitempty"`
	CurrentParticipants  int           `json:"currentParticipants"`
	RegistrationDeadline time.Time     `json:"registrationDeadline"`
	IsFree               bool          `json:"isFree"`
	Price                float64       `json:"price,omitempty"`
	Instructor           Person        `gorm:"serializer:json" json:"instructor"`
	Agenda               []EventAgenda `gorm:"serializer:json" json:"agenda"`
	Status               string        `json:"status"` // upcoming, live, ended, cancelled
	CreatedAt            time.Time     `json:"createdAt"`
}

const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

type Notification struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	UserID    string    `gorm:"index;size:64" json:"userId"`
	Title     string    `json:"title"`
	TitleBn   string    `json:"titleBn"`
	Message   string    `json:"message"`
	MessageBn string    `json:"messageBn"`
	Type      string    `json:"type"`
	Category  string    `json:"category"` // course, payment, system, promotion
	IsRead    bool      `json:"isRead"`
	ActionURL string    `json:"actionUrl,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Stats is the platform-wide summary shown on the admin dashboard.
type Stats struct {
	Users           int64   `json:"users"`
	Courses         int64   `json:"courses"`
	Teachers        int64   `json:"teachers"`
	Orders          int64   `json:"orders"`
	CompletedOrders int64   `json:"completedOrders"`
	Revenue         float64 `json:"revenue"`
}
