package services

import (
	"context"
	"fmt"
	"time"

	"taskflow/backend/models"
)

// NotificationStore persists notifications. Backed by Cassandra in
// production (repositories.NotificationRepository).
type NotificationStore interface {
	Create(notification *models.Notification) error
	FindByUser(userID string) ([]models.Notification, error)
	MarkAsRead(userID, notificationID string, createdAt time.Time) error
}

// NotificationService builds and stores user-facing notifications.
type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// NotifyTaskAssigned records an assignment notification for the task's
// assignee. No-op for unassigned tasks.
func (s *NotificationService) NotifyTaskAssigned(_ context.Context, task *models.Task) error {
	if task.AssigneeID == nil {
		return nil
	}

	notification := &models.Notification{
		UserID:    task.AssigneeID.Hex(),
		TaskID:    task.ID.Hex(),
		Message:   fmt.Sprintf("You have been assigned the task: %s", task.Title),
		CreatedAt: time.Now(),
		IsRead:    false,
	}
	return s.store.Create(notification)
}

// GetNotifications returns the user's notifications, newest first.
func (s *NotificationService) GetNotifications(userID string) ([]models.Notification, error) {
	return s.store.FindByUser(userID)
}

// MarkAsRead marks a single notification as read.
func (s *NotificationService) MarkAsRead(userID, notificationID string, createdAt time.Time) error {
	return s.store.MarkAsRead(userID, notificationID, createdAt)
}
