package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"gopkg.in/gomail.v2"

	"github.com/schoolup-zm/payment-service/config"
	"github.com/schoolup-zm/payment-service/internal/dto"
	"github.com/schoolup-zm/payment-service/internal/repository"
	"github.com/schoolup-zm/payment-service/pkg/utils"
)

// EmailSender is satisfied by gomail's Dialer; faked in tests.
type EmailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// NotificationRelay consumes settlement events and delivers the receipt
// to the parent over external channels. The portal inbox message is
// written by settlement itself; the relay only handles best-effort
// delivery beyond the portal.
type NotificationRelay struct {
	kafkaReader *kafka.Reader
	repository  repository.PaymentRepository
	sender      EmailSender
	config      *config.Config
}

func CreateNotificationRelay(kafkaReader *kafka.Reader, repository repository.PaymentRepository, sender EmailSender, config *config.Config) *NotificationRelay {
	return &NotificationRelay{
		kafkaReader: kafkaReader,
		repository:  repository,
		sender:      sender,
		config:      config,
	}
}

// Start blocks reading settlement events until ctx is cancelled.
func (r *NotificationRelay) Start(ctx context.Context) {
	for {
		msg, err := r.kafkaReader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("component", "NotificationRelay").Msg("")
			continue
		}

		var receivedMsg dto.KafkaMessage
		if err := json.Unmarshal(msg.Value, &receivedMsg); err != nil {
			log.Error().Err(err).Str("component", "NotificationRelay").Msg("")
			continue
		}

		if receivedMsg.EventType != "payment_settled" {
			continue
		}

		var event dto.PaymentEvent
		dataBytes, err := json.Marshal(receivedMsg.Data)
		if err != nil {
			log.Error().Err(err).Str("component", "NotificationRelay").Msg("")
			continue
		}
		if err := json.Unmarshal(dataBytes, &event); err != nil {
			log.Error().Err(err).Str("component", "NotificationRelay").Msg("")
			continue
		}

		if err := r.Deliver(ctx, event); err != nil {
			log.Error().Err(err).Str("component", "NotificationRelay").Str("transaction_id", event.TransactionID).Msg("receipt delivery failed")
		}
	}
}

// Deliver emails the settlement receipt to the parent on record.
func (r *NotificationRelay) Deliver(ctx context.Context, event dto.PaymentEvent) error {
	parent, err := r.repository.GetUserByID(ctx, event.ParentID)
	if err != nil {
		return err
	}

	if parent.Email == "" {
		log.Info().Str("component", "NotificationRelay").Str("parent_id", event.ParentID).Msg("parent has no email on record, skipping")
		return nil
	}

	body := fmt.Sprintf(
		"Dear %s,\n\nWe have received %.2f %s in school fees for student %s.\nReceipt Number: %s\nDate: %s\n\n%s",
		parent.Name,
		event.Amount,
		event.Currency,
		event.StudentID,
		event.ReceiptNumber,
		utils.ConvertDateTimeToHumanReadableFormat(event.Timestamp),
		r.config.SchoolConfig.AccountsOfficeName,
	)

	m := gomail.NewMessage()
	m.SetHeader("From", r.config.SMTPConfig.Sender)
	m.SetHeader("To", parent.Email)
	m.SetHeader("Subject", fmt.Sprintf("School Fees Receipt %s", event.ReceiptNumber))
	m.SetBody("text/plain", body)

	return r.sender.DialAndSend(m)
}
