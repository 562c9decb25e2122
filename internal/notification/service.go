package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/hearthshare/hearthshare/internal/expense"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

// ListByRecipientID retrieves notifications for a user with pagination
func (s *Service) ListByRecipientID(ctx context.Context, recipientID uuid.UUID, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read, recipient only
func (s *Service) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
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
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// NotifyGroupInvite creates a notification for a group invitation
func (s *Service) NotifyGroupInvite(ctx context.Context, recipientID uuid.UUID, groupName string, groupID uuid.UUID) (*Notification, error) {
	message := "You have been invited to join group: " + groupName
	entityType := "GROUP"
	return s.repo.Create(ctx, recipientID, message, &entityType, &groupID)
}

// ExpenseAdded records an in-app notification for a user who owes a share
// of a new expense. Write failures are logged and swallowed so a lost
// notification never fails the expense itself.
func (s *Service) ExpenseAdded(ctx context.Context, recipientID uuid.UUID, exp *expense.Expense) {
	message := fmt.Sprintf("New expense: %s (%.2f %s)", exp.Description, exp.Amount, exp.Currency)
	entityType := "EXPENSE"
	entityID := exp.ID
	if _, err := s.repo.Create(ctx, recipientID, message, &entityType, &entityID); err != nil {
		log.Printf("failed to notify user %s of expense %s: %v", recipientID, exp.ID, err)
	}
}

// DebtSettled records an in-app notification for the creditor of a
// recorded payment. Write failures are logged and swallowed.
func (s *Service) DebtSettled(ctx context.Context, recipientID uuid.UUID, payment *expense.Payment) {
	message := fmt.Sprintf("A debt of %.2f %s owed to you was settled", payment.Amount, payment.Currency)
	entityType := "PAYMENT"
	entityID := payment.ID
	if _, err := s.repo.Create(ctx, recipientID, message, &entityType, &entityID); err != nil {
		log.Printf("failed to notify user %s of payment %s: %v", recipientID, payment.ID, err)
	}
}
