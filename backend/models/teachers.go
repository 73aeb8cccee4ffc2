package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityLimited    = "limited"
)

const DefaultCommissionRate = 15

type SocialLinks struct {
	Facebook string `json:"facebook,omitempty"`
	Youtube  string `json:"youtube,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	RoutingNumber string `json:"routingNumber"`
}

type TeacherData struct {
	Slug              string                      `gorm:"uniqueIndex;size:160" json:"slug"`
	ShopURL           string                      `json:"shopUrl"`
	Bio               string                      `json:"bio"`
	BioBn             string                      `json:"bioBn"`
	Specialization    datatypes.JSONSlice[string] `json:"specialization"`
	Experience        int                         `json:"experience"`
	Education         string                      `json:"education"`
	Achievements      datatypes.JSONSlice[string] `json:"achievements"`
	SocialLinks       SocialLinks                 `gorm:"serializer:json" json:"socialLinks"`
	AmazonAffiliateID string                      `json:"amazonAffiliateId,omitempty"`
	IsVerified        bool                        `json:"isVerified"`
	IsActive          bool                        `gorm:"index" json:"isActive"`
	JoinedAt          time.Time                   `gorm:"index" json:"joinedAt"`
	TotalEarnings     float64                     `json:"totalEarnings"`
	CommissionRate    float64                     `json:"commissionRate"`
	BankDetails       *BankDetails                `gorm:"serializer:json" json:"bankDetails,omitempty"`
}

// Teacher is a teacher profile: a user record plus the storefront data that
// backs the teacher's public shop page.
type Teacher struct {
	ID          string      `gorm:"primaryKey;size:64" json:"id"`
	Name        string      `json:"name"`
	Email       string      `gorm:"index" json:"email"`
	Phone       string      `json:"phone"`
	Role        string      `gorm:"default:teacher" json:"role"`
	Avatar      string      `json:"avatar"`
	Preferences Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Profile     Profile     `gorm:"serializer:json" json:"profile"`
	TeacherData TeacherData `gorm:"embedded;embeddedPrefix:teacher_" json:"teacherData"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TeacherPage is the metadata of a teacher's public shop page, keyed by slug.
type TeacherPage struct {
	Slug          string    `gorm:"primaryKey;size:160" json:"slug"`
	TeacherID     string    `gorm:"index;size:64" json:"teacherId"`
	Title         string    `json:"title"`
	TitleBn       string    `json:"titleBn"`
	Description   string    `json:"description"`
	DescriptionBn string    `json:"descriptionBn"`
	Keywords      string    `json:"keywords"`
	OGImage       string    `json:"ogImage"`
	IsPublished   bool      `json:"isPublished"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type AmazonProduct struct {
	ID            string                      `gorm:"primaryKey;size:64" json:"id"`
	TeacherID     string                      `gorm:"index;size:64" json:"teacherId"`
	ASIN          string                      `gorm:"column:asin" json:"asin"`
	Title         string                      `json:"title"`
	TitleBn       string                      `json:"titleBn"`
	Description   string                      `json:"description"`
	DescriptionBn string                      `json:"descriptionBn"`
	Price         float64                     `json:"price"`
	OriginalPrice float64                     `json:"originalPrice"`
	Currency      string                      `json:"currency"` // BDT, USD
	Images        datatypes.JSONSlice[string] `json:"images"`
	Category      string                      `json:"category"`
	Subcategory   string                      `json:"subcategory"`
	Rating        float64                     `json:"rating"`
	TotalReviews  int                         `json:"totalReviews"`
	Availability  string                      `json:"availability"`
	AffiliateURL  string                      `json:"affiliateUrl"`
	Commission    float64                     `json:"commission"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	IsRecommended bool                        `json:"isRecommended"`
	AddedAt       time.Time                   `json:"addedAt"`
}
