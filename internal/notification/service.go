package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// Create creates a new notification
func (s *Service) Create(ctx context.Context, recipientID uuid.UUID, message string, entityType *string, entityID *uuid.UUID) (*Notification, error) {
	return s.repo.Create(ctx, recipientID, message, entityType, entityID)
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

// ListByRecipientID retrieves all notifications for a user
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

// MarkAsRead marks a notification as read
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

// Helper methods for creating specific notification types. They return only
// an error so callers can depend on a narrow interface.

// NotifyGroupInvite creates a notification for a group invitation
func (s *Service) NotifyGroupInvite(ctx context.Context, recipientID uuid.UUID, groupName string, groupID uuid.UUID) error {
	message := "You have been invited to join group: " + groupName
	entityType := EntityTypeGroup
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &groupID)
	return err
}

// NotifyDebtAssigned creates a notification when an expense assigns a debt
func (s *Service) NotifyDebtAssigned(ctx context.Context, recipientID uuid.UUID, description string, amount decimal.Decimal, currency string, expenseID uuid.UUID) error {
	message := fmt.Sprintf("You owe %s %s for %q", amount.StringFixed(2), currency, description)
	entityType := EntityTypeExpense
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &expenseID)
	return err
}

// NotifyDebtPaid creates a notification when a debtor marks a debt as paid
func (s *Service) NotifyDebtPaid(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, debtID uuid.UUID) error {
	message := fmt.Sprintf("A payment of %s %s is waiting for your confirmation", amount.StringFixed(2), currency)
	entityType := EntityTypeDebt
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &debtID)
	return err
}

// NotifySettlementRequested creates a notification for a new settlement
func (s *Service) NotifySettlementRequested(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, settlementID uuid.UUID) error {
	message := fmt.Sprintf("Someone wants to settle up %s %s with you", amount.StringFixed(2), currency)
	entityType := EntityTypeSettlement
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &settlementID)
	return err
}

// NotifySettlementConfirmed creates a notification when a settlement is confirmed
func (s *Service) NotifySettlementConfirmed(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, settlementID uuid.UUID) error {
	message := fmt.Sprintf("Your settlement of %s %s was confirmed", amount.StringFixed(2), currency)
	entityType := EntityTypeSettlement
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &settlementID)
	return err
}

// NotifySettlementRejected creates a notification when a settlement is rejected
func (s *Service) NotifySettlementRejected(ctx context.Context, recipientID uuid.UUID, amount decimal.Decimal, currency string, settlementID uuid.UUID) error {
	message := fmt.Sprintf("Your settlement of %s %s was rejected", amount.StringFixed(2), currency)
	entityType := EntityTypeSettlement
	_, err := s.repo.Create(ctx, recipientID, message, &entityType, &settlementID)
	return err
}
