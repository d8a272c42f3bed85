package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sparklewash/carwash-backend/utils"
)

type Service interface {
	CreateInApp(ctx context.Context, userID uint, bookingID *uint, title, message, category string) error
	ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error)
	MarkAsRead(ctx context.Context, id uint, userID uint) error
	MarkAllAsRead(ctx context.Context, userID uint) (int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateInApp stores a bell notification and pushes it onto the user's
// Redis channel so connected clients see it without polling.
func (s *service) CreateInApp(ctx context.Context, userID uint, bookingID *uint, title, message, category string) error {
	item := &InAppNotification{
		UserID:    userID,
		BookingID: bookingID,
		Title:     title,
		Message:   message,
		Category:  category,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.CreateInApp(ctx, item); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"id":         item.ID,
		"booking_id": item.BookingID,
		"title":      item.Title,
		"message":    item.Message,
		"category":   item.Category,
		"is_read":    item.IsRead,
		"created_at": item.CreatedAt,
	})
	if err != nil {
		utils.GetLogger().Warn("notification payload marshal failed", zap.Error(err))
		return nil
	}
	utils.PublishUserEvent(userID, string(payload))
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error) {
	return s.repo.ListInAppByUser(ctx, userID, unreadOnly, limit)
}

func (s *service) MarkAsRead(ctx context.Context, id uint, userID uint) error {
	return s.repo.MarkInAppAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// bookingMessage renders the customer-facing text for a lifecycle event.
func bookingMessage(eventType string, bookingID uint, date string) (title, message string) {
	switch eventType {
	case "booking.created":
		return "Booking received", fmt.Sprintf("Your wash booking #%d for %s is awaiting payment.", bookingID, date)
	case "booking.confirmed":
		return "Booking confirmed", fmt.Sprintf("Payment received. Booking #%d for %s is confirmed.", bookingID, date)
	case "booking.started":
		return "Wash in progress", fmt.Sprintf("Our van has started working on booking #%d.", bookingID)
	case "booking.completed":
		return "Wash completed", fmt.Sprintf("Booking #%d is done. Thanks for choosing us!", bookingID)
	case "booking.cancelled":
		return "Booking cancelled", fmt.Sprintf("Booking #%d for %s has been cancelled.", bookingID, date)
	default:
		return "", ""
	}
}
