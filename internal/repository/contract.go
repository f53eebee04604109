package repository

import (
	"context"

	"github.com/schoolup-zm/payment-service/internal/domain"
	pkgdto "github.com/schoolup-zm/payment-service/pkg/dto"
)

type PaymentRepository interface {
	// HandleTrx runs fn inside one database transaction. Settlement uses
	// it so the status transition, ledger entry and receipt message
	// commit or roll back as a unit.
	HandleTrx(ctx context.Context, fn func(ctx context.Context, repo PaymentRepository) error) error

	AddTransaction(ctx context.Context, data domain.Transaction) (err error)
	GetTransactionByID(ctx context.Context, id string) (data domain.Transaction, err error)
	// UpdateTransactionStatus transitions a transaction out of
	// fromStatus. It reports false when no row was in fromStatus, which
	// is how duplicate confirmations are detected.
	UpdateTransactionStatus(ctx context.Context, id, fromStatus, toStatus string, failureReason *string) (updated bool, err error)
	SetTransactionExternalReference(ctx context.Context, id, externalReference string) (err error)
	GetExpiredPendingTransactions(ctx context.Context, now int64) (data []domain.Transaction, err error)

	AddPayment(ctx context.Context, data domain.Payment) (err error)
	GetPayments(ctx context.Context, filter pkgdto.Filter) (data []domain.Payment, err error)
	GetPaymentsByStudentID(ctx context.Context, studentID string) (data []domain.Payment, err error)
	ReceiptNumberExists(ctx context.Context, receiptNumber string) (exists bool, err error)

	AddMessage(ctx context.Context, data domain.Message) (err error)
	GetMessagesByUserID(ctx context.Context, userID string) (data []domain.Message, err error)
	MarkMessageRead(ctx context.Context, id, receiverID string) (updated bool, err error)

	GetStudentByID(ctx context.Context, id string) (data domain.Student, err error)
	GetUserByID(ctx context.Context, id string) (data domain.User, err error)
	GetFeeStructures(ctx context.Context, grade string, term int) (data []domain.FeeStructure, err error)
}
