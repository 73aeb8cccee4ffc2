package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"rdcshop/backend/models"
	"rdcshop/backend/store"
	"rdcshop/backend/utils"
)

// ContentService covers live classes, blogs, events and notifications.
type ContentService struct {
	store store.Store
	now   func() time.Time
}

// UpcomingLiveClasses lists classes scheduled from now on, soonest first.
func (s *ContentService) UpcomingLiveClasses(ctx context.Context) ([]models.LiveClass, error) {
	classes, err := s.store.ListLiveClasses(ctx, s.now())
	return classes, errors.Wrap(err, "list live classes")
}

func (s *ContentService) ScheduleLiveClass(ctx context.Context, l *models.LiveClass) error {
	if l.Status == "" {
		l.Status = models.LiveClassScheduled
	}
	if l.ScheduledAt.IsZero() {
		return ErrInvalidInput
	}
	return errors.Wrap(s.store.CreateLiveClass(ctx, l), "create live class")
}

func (s *ContentService) Blogs(ctx context.Context) ([]models.Blog, error) {
	blogs, err := s.store.ListBlogs(ctx)
	return blogs, errors.Wrap(err, "list blogs")
}

func (s *ContentService) Blog(ctx context.Context, slug string) (*models.Blog, error) {
	return s.store.GetBlogBySlug(ctx, slug)
}

// PublishBlog stores a post with a slug made from its title. Posts marked
// published get a publish time when they have none.
func (s *ContentService) PublishBlog(ctx context.Context, b *models.Blog) error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrInvalidInput
	}
	if b.Slug == "" {
		b.Slug = utils.GenerateSlug(b.Title)
	}
	if b.Slug == "" {
		b.Slug = "post-" + models.NewID()[:8]
	}
	if b.IsPublished && b.PublishedAt == nil {
		now := s.now()
		b.PublishedAt = &now
	}
	return s.store.CreateBlog(ctx, b)
}

// UpcomingEvents lists events that have not ended yet.
func (s *ContentService) UpcomingEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.ListEvents(ctx, s.now())
	return events, errors.Wrap(err, "list events")
}

func (s *ContentService) CreateEvent(ctx context.Context, e *models.Event) error {
	if e.StartDate.IsZero() || e.EndDate.Before(e.StartDate) {
		return ErrInvalidInput
	}
	if e.Status == "" {
		e.Status = "upcoming"
	}
	return errors.Wrap(s.store.CreateEvent(ctx, e), "create event")
}

func (s *ContentService) Notifications(ctx context.Context, userID string) ([]models.Notification, error) {
	items, err := s.store.ListNotifications(ctx, userID)
	return items, errors.Wrap(err, "list notifications")
}

func (s *ContentService) Notify(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationInfo
	}
	return errors.Wrap(s.store.CreateNotification(ctx, n), "create notification")
}

func (s *ContentService) MarkRead(ctx context.Context, userID, id string) error {
	return s.store.MarkNotificationRead(ctx, userID, id)
}
