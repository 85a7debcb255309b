package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/config"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/models"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/internal/repositories"
	"github.com/blitzy-public-samples/founditure-furniture-marketplace-wvdy7r-sub003/pkg/pushgateway"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier receives achievement-unlock and level-up events from the
// points core. Delivery is fire-and-forget.
type Notifier interface {
	AchievementsUnlocked(user *models.User, unlocked []config.AchievementDefinition)
	LevelUp(user *models.User, newLevel int)
}

// Compile-time check to ensure NotificationService implements Notifier
var _ Notifier = (*NotificationService)(nil)

// NotificationService persists notification records and pushes them
// through the primary gateway, falling back to the secondary on failure.
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	primaryGateway   pushgateway.Gateway
	fallbackGateway  pushgateway.Gateway
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	primaryGateway pushgateway.Gateway,
	fallbackGateway pushgateway.Gateway,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		primaryGateway:   primaryGateway,
		fallbackGateway:  fallbackGateway,
	}
}

// AchievementsUnlocked dispatches one push per newly unlocked achievement
func (s *NotificationService) AchievementsUnlocked(user *models.User, unlocked []config.AchievementDefinition) {
	for _, def := range unlocked {
		notification := &models.Notification{
			UserID:        user.ID,
			CorrelationID: uuid.NewString(),
			Type:          models.NotificationAchievementUnlocked,
			Title:         "Achievement unlocked!",
			Body:          def.DisplayMessage,
			Status:        models.NotificationStatusPending,
		}
		go s.dispatch(user, notification)
	}
}

// LevelUp dispatches a level-up push
func (s *NotificationService) LevelUp(user *models.User, newLevel int) {
	notification := &models.Notification{
		UserID:        user.ID,
		CorrelationID: uuid.NewString(),
		Type:          models.NotificationLevelUp,
		Title:         "Level up!",
		Body:          fmt.Sprintf("You reached level %d. Keep rescuing furniture!", newLevel),
		Status:        models.NotificationStatusPending,
	}
	go s.dispatch(user, notification)
}

// GetNotificationsByUserID retrieves notification records for a user
func (s *NotificationService) GetNotificationsByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Notification, error) {
	return s.notificationRepo.FindByUserID(ctx, userID, page, limit)
}

func (s *NotificationService) dispatch(user *models.User, notification *models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("failed to record notification for user %s: %v", user.ID.Hex(), err)
		return
	}

	gateway := s.primaryGateway
	_, err := gateway.SendPush(ctx, user.DeviceToken, notification.Title, notification.Body)
	if err != nil && s.fallbackGateway != nil {
		gateway = s.fallbackGateway
		_, err = gateway.SendPush(ctx, user.DeviceToken, notification.Title, notification.Body)
	}

	notification.Gateway = gateway.Name()
	if err != nil {
		notification.Status = models.NotificationStatusFailed
		log.Printf("push delivery failed for user %s: %v", user.ID.Hex(), err)
	} else {
		notification.Status = models.NotificationStatusSent
		notification.SentAt = time.Now()
	}
	if err := s.notificationRepo.Update(ctx, notification); err != nil {
		log.Printf("failed to update notification %s: %v", notification.ID.Hex(), err)
	}
}
