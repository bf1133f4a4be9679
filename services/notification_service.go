package services

import (
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// NotificationService persists notification rows and clears stale ones. It
// is the delivery boundary of the assignment engine: the engine hands it
// intents, it owns storage.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db}
}

// Notify records one notification for one user. An identical unread
// notification (same user, type and target) is not duplicated, so repeated
// finalization passes do not pile up copies.
func (s *NotificationService) Notify(userID int, notificationType models.NotificationType, contextID int, assocType models.AssocType, assocID int, level models.NotificationLevel) error {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND assoc_type = ? AND assoc_id = ? AND date_read IS NULL",
			userID, notificationType, assocType, assocID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	notification := models.Notification{
		UserID:      userID,
		ContextID:   contextID,
		Type:        notificationType,
		Level:       level,
		AssocType:   assocType,
		AssocID:     assocID,
		DateCreated: time.Now(),
	}
	return s.db.Create(&notification).Error
}

// Clear removes every pending notification of the given types attached to
// one target. Clearing when nothing matches is a no-op.
func (s *NotificationService) Clear(types []models.NotificationType, assocType models.AssocType, assocID int) error {
	if len(types) == 0 {
		return nil
	}
	return s.db.
		Where("type IN ? AND assoc_type = ? AND assoc_id = ?", types, assocType, assocID).
		Delete(&models.Notification{}).Error
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID int, limit, offset int) ([]models.Notification, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	if err := q.Order("date_created DESC, notification_id DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// UnreadCount returns how many notifications the user has not read yet.
func (s *NotificationService) UnreadCount(userID int) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND date_read IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead stamps one of the user's notifications as read. Marking an
// already-read notification again is harmless.
func (s *NotificationService) MarkRead(notificationID, userID int) error {
	now := time.Now()
	return s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ? AND date_read IS NULL", notificationID, userID).
		Update("date_read", now).Error
}
