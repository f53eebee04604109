package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/schoolup-zm/payment-service/config"
	"github.com/schoolup-zm/payment-service/internal/domain"
	"github.com/schoolup-zm/payment-service/internal/dto"
	paymentgateway "github.com/schoolup-zm/payment-service/internal/infrastructure/payment-gateway"
	"github.com/schoolup-zm/payment-service/internal/repository"
	pkgdto "github.com/schoolup-zm/payment-service/pkg/dto"
	"github.com/schoolup-zm/payment-service/pkg/errs"
	"github.com/schoolup-zm/payment-service/pkg/utils"
)

const currencyZMW = "ZMW"

const (
	EventPaymentInitiated = "payment_initiated"
	EventPaymentSettled   = "payment_settled"
	EventPaymentFailed    = "payment_failed"
)

var receiptPrefixes = map[string]string{
	domain.NetworkMTN:    "MTN-",
	domain.NetworkAirtel: "AIR-",
}

const maxReceiptAttempts = 5

type PaymentServiceImpl struct {
	repository    repository.PaymentRepository
	gateway       paymentgateway.CollectionGateway
	kafkaProducer EventPublisher
	config        *config.Config
	now           func() time.Time

	// one lock per transaction id so concurrent webhook deliveries for
	// the same transaction serialize; unrelated transactions don't
	// contend.
	locks sync.Map
}

func CreatePaymentService(repository repository.PaymentRepository, gateway paymentgateway.CollectionGateway, kafkaProducer EventPublisher, config *config.Config) PaymentService {
	return &PaymentServiceImpl{
		repository:    repository,
		gateway:       gateway,
		kafkaProducer: kafkaProducer,
		config:        config,
		now:           time.Now,
	}
}

func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, req dto.PaymentRequest) (resp dto.PaymentResponse, err error) {
	amount := utils.RoundKwacha(req.Amount)
	if amount <= 0 {
		return resp, errs.ErrValidation
	}

	network := strings.ToUpper(req.Network)
	if network != domain.NetworkMTN && network != domain.NetworkAirtel {
		return resp, errs.ErrValidation
	}

	if !utils.IsValidZambianMobile(req.PayerPhone) {
		return resp, errs.ErrValidation
	}

	student, err := s.repository.GetStudentByID(ctx, req.StudentID)
	if err != nil {
		return resp, err
	}

	transactionID, err := uuid.NewV7()
	if err != nil {
		return resp, fmt.Errorf("error generating transaction id: %v", err)
	}

	now := s.now()
	transaction := domain.Transaction{
		ID:         transactionID.String(),
		StudentID:  student.ID,
		Amount:     amount,
		PayerPhone: req.PayerPhone,
		Network:    network,
		Status:     domain.TransactionStatusPending,
		ExpiredAt:  now.Add(time.Duration(s.config.SchoolConfig.PendingWindowMinutes) * time.Minute).Unix(),
		CreatedAt:  now.Unix(),
		UpdatedAt:  now.Unix(),
	}

	// Commit the intent before talking to the aggregator, so every push
	// we trigger has a matching PENDING record for the webhook to find.
	if err = s.repository.AddTransaction(ctx, transaction); err != nil {
		return resp, err
	}

	collection, err := s.gateway.RequestCollection(ctx, paymentgateway.CollectionRequest{
		TransactionID: transaction.ID,
		Amount:        amount,
		Currency:      currencyZMW,
		PhoneNumber:   req.PayerPhone,
		Network:       network,
		PayeeNote:     fmt.Sprintf("School Fees - Student %s", student.ID),
	})
	if err != nil {
		log.Error().Err(err).Str("component", "InitiatePayment").Str("transaction_id", transaction.ID).Msg("USSD push failed")
		reason := "USSD push could not be delivered"
		if _, updateErr := s.repository.UpdateTransactionStatus(ctx, transaction.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed, &reason); updateErr != nil {
			log.Error().Err(updateErr).Str("component", "InitiatePayment").Msg("")
		}
		return resp, errs.ErrGatewayUnavailable
	}

	if collection.ExternalReference != "" {
		if err = s.repository.SetTransactionExternalReference(ctx, transaction.ID, collection.ExternalReference); err != nil {
			return resp, err
		}
		transaction.ExternalReference = collection.ExternalReference
	}

	s.publishPaymentEvent(EventPaymentInitiated, transaction, student.ParentID, "")

	return dto.PaymentResponse{
		TransactionID:     transaction.ID,
		StudentID:         student.ID,
		Amount:            amount,
		Currency:          currencyZMW,
		Network:           network,
		Status:            domain.TransactionStatusPending,
		ExternalReference: transaction.ExternalReference,
	}, nil
}

func (s *PaymentServiceImpl) ConfirmPayment(ctx context.Context, req dto.CollectionNotification) (err error) {
	outcome, err := normalizeOutcome(req.Status)
	if err != nil {
		return err
	}

	lock := s.lockFor(req.TransactionID)
	lock.Lock()
	defer lock.Unlock()

	transaction, err := s.repository.GetTransactionByID(ctx, req.TransactionID)
	if err != nil {
		return err
	}

	if transaction.Status != domain.TransactionStatusPending {
		log.Info().Str("component", "ConfirmPayment").Str("transaction_id", transaction.ID).Str("status", transaction.Status).Msg("duplicate confirmation dropped")
		return errs.ErrDuplicateConfirmation
	}

	student, err := s.repository.GetStudentByID(ctx, transaction.StudentID)
	if err != nil {
		return err
	}

	if outcome == domain.TransactionStatusFailed {
		reason := req.StatusDescription
		if reason == "" {
			reason = "collection declined by payer or network"
		}
		updated, err := s.repository.UpdateTransactionStatus(ctx, transaction.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed, &reason)
		if err != nil {
			return err
		}
		if !updated {
			return errs.ErrDuplicateConfirmation
		}

		s.locks.Delete(transaction.ID)
		s.publishPaymentEvent(EventPaymentFailed, transaction, student.ParentID, "")
		return nil
	}

	if utils.RoundKwacha(req.Amount) != transaction.Amount {
		log.Warn().
			Str("component", "ConfirmPayment").
			Str("transaction_id", transaction.ID).
			Float64("initiated_amount", transaction.Amount).
			Float64("confirmed_amount", req.Amount).
			Msg("amount mismatch, failing transaction")

		reason := fmt.Sprintf("confirmed amount %.2f does not match initiated amount %.2f", req.Amount, transaction.Amount)
		if _, updateErr := s.repository.UpdateTransactionStatus(ctx, transaction.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed, &reason); updateErr != nil {
			return updateErr
		}

		s.locks.Delete(transaction.ID)
		s.publishPaymentEvent(EventPaymentFailed, transaction, student.ParentID, "")
		return errs.ErrAmountMismatch
	}

	receiptNumber, err := s.settle(ctx, transaction, student)
	if err != nil {
		return err
	}

	s.locks.Delete(transaction.ID)
	s.publishPaymentEvent(EventPaymentSettled, transaction, student.ParentID, receiptNumber)

	return nil
}

// settle converts a confirmed transaction into a ledger entry plus a
// receipt message to the parent, inside a single database transaction.
func (s *PaymentServiceImpl) settle(ctx context.Context, transaction domain.Transaction, student domain.Student) (receiptNumber string, err error) {
	now := s.now().Unix()

	err = s.repository.HandleTrx(ctx, func(ctx context.Context, repo repository.PaymentRepository) error {
		updated, err := repo.UpdateTransactionStatus(ctx, transaction.ID, domain.TransactionStatusPending, domain.TransactionStatusSuccess, nil)
		if err != nil {
			return err
		}
		if !updated {
			return errs.ErrDuplicateConfirmation
		}

		receiptNumber, err = s.generateReceiptNumber(ctx, repo, transaction.Network)
		if err != nil {
			return err
		}

		err = repo.AddPayment(ctx, domain.Payment{
			ID:            uuid.New().String(),
			TransactionID: transaction.ID,
			StudentID:     transaction.StudentID,
			Amount:        transaction.Amount,
			Method:        domain.MethodForNetwork(transaction.Network),
			Status:        domain.PaymentStatusPaid,
			ReceiptNumber: receiptNumber,
			PaidAt:        now,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}

		content := fmt.Sprintf("CONFIRMED: We have received %.2f ZMW for student ID: %s via %s. Your Receipt Number is %s. Your balance has been updated.",
			transaction.Amount, transaction.StudentID, domain.ProviderName(transaction.Network), receiptNumber)

		return repo.AddMessage(ctx, domain.Message{
			ID:         uuid.New().String(),
			SenderID:   s.config.SchoolConfig.AccountsOfficeUserID,
			SenderName: s.config.SchoolConfig.AccountsOfficeName,
			ReceiverID: student.ParentID,
			Content:    content,
			SentAt:     now,
			IsRead:     false,
		})
	})
	if err != nil {
		return "", err
	}

	return receiptNumber, nil
}

func (s *PaymentServiceImpl) generateReceiptNumber(ctx context.Context, repo repository.PaymentRepository, network string) (string, error) {
	prefix := receiptPrefixes[network]

	for i := 0; i < maxReceiptAttempts; i++ {
		candidate := fmt.Sprintf("%s%06d", prefix, rand.Intn(900000)+100000)

		exists, err := repo.ReceiptNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", errs.ErrReceiptNumberExists
}

func (s *PaymentServiceImpl) OutstandingBalance(ctx context.Context, studentID string) (resp dto.BalanceResponse, err error) {
	student, err := s.repository.GetStudentByID(ctx, studentID)
	if err != nil {
		return resp, err
	}

	term := s.config.SchoolConfig.CurrentTerm

	fees, err := s.repository.GetFeeStructures(ctx, student.Grade, term)
	if err != nil {
		return resp, err
	}

	payments, err := s.repository.GetPaymentsByStudentID(ctx, studentID)
	if err != nil {
		return resp, err
	}

	var totalFees, totalPaid float64
	for _, fee := range fees {
		totalFees += fee.Amount
	}
	for _, payment := range payments {
		totalPaid += payment.Amount
	}

	rawBalance := utils.RoundKwacha(totalFees - totalPaid)
	balance := rawBalance
	if balance < 0 {
		balance = 0
	}

	return dto.BalanceResponse{
		StudentID:   student.ID,
		Grade:       student.Grade,
		Term:        term,
		Currency:    currencyZMW,
		TotalFees:   utils.RoundKwacha(totalFees),
		TotalPaid:   utils.RoundKwacha(totalPaid),
		Balance:     balance,
		RawBalance:  rawBalance,
		Overpayment: rawBalance < 0,
	}, nil
}

func (s *PaymentServiceImpl) GetPayments(ctx context.Context, filter pkgdto.Filter) (resp []dto.PaymentRecordResponse, err error) {
	payments, err := s.repository.GetPayments(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, payment := range payments {
		resp = append(resp, dto.PaymentRecordResponse{
			ID:            payment.ID,
			StudentID:     payment.StudentID,
			Amount:        payment.Amount,
			Method:        payment.Method,
			Status:        payment.Status,
			Date:          utils.ConvertUnixToDateString(payment.PaidAt),
			ReceiptNumber: payment.ReceiptNumber,
		})
	}

	return resp, nil
}

func (s *PaymentServiceImpl) GetMessages(ctx context.Context, userID string) (resp []dto.MessageResponse, err error) {
	messages, err := s.repository.GetMessagesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, message := range messages {
		resp = append(resp, dto.MessageResponse{
			ID:         message.ID,
			SenderID:   message.SenderID,
			SenderName: message.SenderName,
			ReceiverID: message.ReceiverID,
			Content:    message.Content,
			Timestamp:  time.Unix(message.SentAt, 0).UTC().Format(time.RFC3339),
			IsRead:     message.IsRead,
		})
	}

	return resp, nil
}

func (s *PaymentServiceImpl) MarkMessageRead(ctx context.Context, id, receiverID string) (err error) {
	updated, err := s.repository.MarkMessageRead(ctx, id, receiverID)
	if err != nil {
		return err
	}
	if !updated {
		return errs.ErrMessageNotFound
	}

	return nil
}

// ExpirePendingTransactions fails collections whose confirmation window
// has elapsed without a webhook delivery. Runs on the scheduler.
func (s *PaymentServiceImpl) ExpirePendingTransactions() {
	log.Info().Str("component", "ExpirePendingTransactions").Msg("cron starts")

	ctx := context.Background()

	transactions, err := s.repository.GetExpiredPendingTransactions(ctx, s.now().Unix())
	if err != nil {
		return
	}

	for _, transaction := range transactions {
		lock := s.lockFor(transaction.ID)
		lock.Lock()

		reason := "no confirmation received within the collection window"
		updated, err := s.repository.UpdateTransactionStatus(ctx, transaction.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed, &reason)

		lock.Unlock()

		if err != nil {
			log.Error().Err(err).Str("component", "ExpirePendingTransactions").Str("transaction_id", transaction.ID).Msg("")
			continue
		}
		if !updated {
			continue
		}

		s.locks.Delete(transaction.ID)

		student, err := s.repository.GetStudentByID(ctx, transaction.StudentID)
		if err != nil {
			log.Error().Err(err).Str("component", "ExpirePendingTransactions").Str("transaction_id", transaction.ID).Msg("")
			continue
		}

		s.publishPaymentEvent(EventPaymentFailed, transaction, student.ParentID, "")
	}

	log.Info().Str("component", "ExpirePendingTransactions").Msg("cron ends")
}

func (s *PaymentServiceImpl) lockFor(transactionID string) *sync.Mutex {
	val, _ := s.locks.LoadOrStore(transactionID, &sync.Mutex{})
	return val.(*sync.Mutex)
}

func normalizeOutcome(status string) (string, error) {
	switch strings.ToUpper(status) {
	case "SUCCESS", "SUCCESSFUL":
		return domain.TransactionStatusSuccess, nil
	case "FAILED", "FAILURE":
		return domain.TransactionStatusFailed, nil
	default:
		return "", errs.ErrValidation
	}
}

func (s *PaymentServiceImpl) publishPaymentEvent(eventType string, transaction domain.Transaction, parentID, receiptNumber string) {
	kafkaMsg := dto.KafkaMessage{
		EventType: eventType,
		Data: dto.PaymentEvent{
			TransactionID: transaction.ID,
			StudentID:     transaction.StudentID,
			ParentID:      parentID,
			Amount:        transaction.Amount,
			Currency:      currencyZMW,
			Network:       transaction.Network,
			Status:        eventStatus(eventType),
			ReceiptNumber: receiptNumber,
			Timestamp:     s.now().Unix(),
		},
	}

	jsonMsg, err := json.Marshal(kafkaMsg)
	if err != nil {
		log.Error().Err(err).Str("component", "publishPaymentEvent").Msg("")
		return
	}

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		err = s.writeKafkaMessageWithKey(jsonMsg, transaction.ID)
		if err == nil {
			return
		}
		log.Error().Err(err).Str("component", "publishPaymentEvent").Msg("")
		time.Sleep(time.Second * time.Duration(i+1)) // Exponential backoff
	}

	log.Error().Err(err).Str("component", "publishPaymentEvent").Int("attempts", maxRetries).Msg("giving up on event publish")
}

func eventStatus(eventType string) string {
	switch eventType {
	case EventPaymentSettled:
		return domain.TransactionStatusSuccess
	case EventPaymentFailed:
		return domain.TransactionStatusFailed
	default:
		return domain.TransactionStatusPending
	}
}

func (s *PaymentServiceImpl) writeKafkaMessageWithKey(msg []byte, key string) error {
	_, err := s.kafkaProducer.WriteMessages(
		kafka.Message{
			Key:   []byte(key),
			Value: msg,
		},
	)
	return err
}
