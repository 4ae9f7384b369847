package service

import (
	"encoding/json"

	"giftpay/internal/domain"
	"giftpay/internal/models"
	"giftpay/internal/repository"
	"giftpay/pkg/money"

	"github.com/sirupsen/logrus"
)

// EventService records domain events for the notification dispatcher.
// Delivery is the dispatcher's problem; emission failures are logged and
// never fail the financial operation that produced them.
type EventService struct {
	notifications *repository.NotificationRepository
	log           *logrus.Logger
}

func NewEventService(notifications *repository.NotificationRepository, log *logrus.Logger) *EventService {
	return &EventService{notifications: notifications, log: log}
}

func (s *EventService) emit(userID uint, event, title, body string, amountKobo int64, relatedID string) {
	data, _ := json.Marshal(map[string]interface{}{
		"user_id":     userID,
		"amount_kobo": amountKobo,
		"related_id":  relatedID,
	})
	err := s.notifications.Create(&models.Notification{
		UserID: userID,
		Type:   event,
		Title:  title,
		Body:   body,
		Data:   string(data),
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"event": event, "user_id": userID, "related_id": relatedID}).
			WithError(err).Warn("failed to record domain event")
	}
}

func (s *EventService) TransactionCompleted(userID uint, amountKobo int64, reference string) {
	s.emit(userID, domain.EventTransactionCompleted, "Transaction completed",
		"Your transaction of "+money.FormatNaira(amountKobo)+" is complete.", amountKobo, reference)
}

func (s *EventService) TransactionRejected(userID uint, amountKobo int64, reference, reason string) {
	body := "Your transaction of " + money.FormatNaira(amountKobo) + " was rejected."
	if reason != "" {
		body += " Reason: " + reason
	}
	s.emit(userID, domain.EventTransactionRejected, "Transaction rejected", body, amountKobo, reference)
}

func (s *EventService) WalletFunded(userID uint, amountKobo int64, reference string) {
	s.emit(userID, domain.EventWalletFunded, "Wallet funded",
		money.FormatNaira(amountKobo)+" has been added to your wallet.", amountKobo, reference)
}
