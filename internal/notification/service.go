package notification

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic. The Notify* helpers are
// the dispatch surface consumed by the collection core; they write to the
// in-app inbox and the caller treats failures as fire-and-forget.
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

// ListByRecipientID retrieves notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// NotifyCollectionRequested tells a counterparty a collection awaits their approval
func (s *Service) NotifyCollectionRequested(ctx context.Context, recipientID int64, creatorName string, amount float64, currencyCode string, collectionID int64) error {
	message := fmt.Sprintf("%s recorded a debt of %.2f %s with you. Please accept or decline.", creatorName, amount, currencyCode)
	entityType := EntityCollection
	link := fmt.Sprintf("/collections/%d", collectionID)
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &collectionID, &link)
	return err
}

// NotifyCollectionAccepted tells the creator the counterparty accepted
func (s *Service) NotifyCollectionAccepted(ctx context.Context, recipientID int64, responderName string, collectionID int64) error {
	message := fmt.Sprintf("%s accepted your collection. Payments can now be recorded.", responderName)
	entityType := EntityCollection
	link := fmt.Sprintf("/collections/%d", collectionID)
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &collectionID, &link)
	return err
}

// NotifyPaymentRecorded tells the other participant a payment was
// recorded, deep-linking their pending allocation action
func (s *Service) NotifyPaymentRecorded(ctx context.Context, recipientID int64, actorName string, amount float64, currencyCode string, collectionID, paymentID int64) error {
	message := fmt.Sprintf("%s recorded a payment of %.2f %s. Apply it to one of your wallets.", actorName, amount, currencyCode)
	entityType := EntityCollectionPayment
	link := fmt.Sprintf("/collections/%d/payments/%d/allocate", collectionID, paymentID)
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &paymentID, &link)
	return err
}
