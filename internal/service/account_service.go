package service

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// AccountService handles account administration
type AccountService struct {
	store          store.Repository
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(store store.Repository, eventPublisher EventPublisher) *AccountService {
	return &AccountService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// DeleteUser removes targetID on behalf of actor. Users cannot delete
// themselves. The target's cart lines and orders are not removed.
func (s *AccountService) DeleteUser(ctx context.Context, actor *models.User, targetID int64) error {
	ctx, span := util.StartSpan(ctx, "AccountService.DeleteUser")
	defer span.End()

	err := s.store.WithTx(ctx, func(tx store.Repository) error {
		_, err := tx.GetUserByID(ctx, targetID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if targetID == actor.ID {
			return ErrSelfDeletion
		}
		return tx.DeleteUser(ctx, targetID)
	})
	if err != nil {
		if errors.Is(err, ErrSelfDeletion) {
			s.logger.Warn("Self deletion rejected", zap.Int64("user_id", actor.ID))
		}
		return err
	}

	util.UsersDeletedTotal.Inc()
	s.logger.Info("User deleted",
		zap.Int64("user_id", targetID),
		zap.Int64("deleted_by", actor.ID))

	event := &models.UserDeletedEvent{
		BaseEvent: newBaseEvent(models.EventTypeUserDeleted),
		UserID:    targetID,
		DeletedBy: actor.ID,
	}
	if err := s.eventPublisher.PublishUserDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish UserDeleted event", zap.Error(err))
	}
	return nil
}
