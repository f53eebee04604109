package service

import (
	"context"

	"github.com/schoolup-zm/payment-service/internal/dto"
	pkgdto "github.com/schoolup-zm/payment-service/pkg/dto"
	"github.com/segmentio/kafka-go"
)

type PaymentService interface {
	InitiatePayment(ctx context.Context, req dto.PaymentRequest) (resp dto.PaymentResponse, err error)
	ConfirmPayment(ctx context.Context, req dto.CollectionNotification) (err error)
	OutstandingBalance(ctx context.Context, studentID string) (resp dto.BalanceResponse, err error)
	GetPayments(ctx context.Context, filter pkgdto.Filter) (resp []dto.PaymentRecordResponse, err error)
	GetMessages(ctx context.Context, userID string) (resp []dto.MessageResponse, err error)
	MarkMessageRead(ctx context.Context, id, receiverID string) (err error)
	ExpirePendingTransactions()
}

// EventPublisher is satisfied by *kafka.Conn.
type EventPublisher interface {
	WriteMessages(msgs ...kafka.Message) (int, error)
}
