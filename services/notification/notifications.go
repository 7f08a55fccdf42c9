// Package notification is the fire-and-forget sink for user and admin
// messages. It is always invoked after the financial unit commits; a slow or
// failing delivery is logged and never rolls anything back.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MineVault/MineVault-Backend/db/store"
	"github.com/MineVault/MineVault-Backend/services/monitoring/logging"
)

type Service struct {
	store  store.Store
	push   *PushService
	logger *logging.Logger
}

func NewNotificationService(store store.Store, push *PushService, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		push:   push,
		logger: logger,
	}
}

// NotifyUser records a notification for one user and attempts a push when the
// user has a registered device. Errors are logged only.
func (s *Service) NotifyUser(ctx context.Context, userID int64, kind, title, message string, data map[string]interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Error(fmt.Sprintf("notification payload for user %d not serializable: %v", userID, err))
		payload = nil
	}

	if _, err := s.store.CreateNotification(ctx, store.CreateNotificationParams{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
		Data:    payload,
	}); err != nil {
		s.logger.Error(fmt.Sprintf("store notification for user %d: %v", userID, err))
		return
	}

	if s.push == nil {
		return
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil || !u.ExpoPushToken.Valid {
		return
	}
	if err := s.push.Send(u.ExpoPushToken.String, title, message); err != nil {
		s.logger.Warn(fmt.Sprintf("push to user %d: %v", userID, err))
	}
}

// NotifyAllAdmins fans a notification out to every admin account. This
// replaces the old "admin" pseudo-user convention.
func (s *Service) NotifyAllAdmins(ctx context.Context, kind, title, message string, data map[string]interface{}) {
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		s.logger.Error(fmt.Sprintf("list admins for notification: %v", err))
		return
	}
	for _, admin := range admins {
		s.NotifyUser(ctx, admin.ID, kind, title, message, data)
	}
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64, limit, offset int32) ([]store.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListNotificationsByUser(ctx, store.ListNotificationsByUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
}
