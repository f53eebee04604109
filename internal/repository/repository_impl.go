package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/schoolup-zm/payment-service/internal/domain"
	pkgdto "github.com/schoolup-zm/payment-service/pkg/dto"
	"github.com/schoolup-zm/payment-service/pkg/errs"
)

type PaymentRepositoryImpl struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func CreatePaymentRepository(db *sqlx.DB) PaymentRepository {
	return &PaymentRepositoryImpl{
		db: db,
	}
}

// ext returns the transaction when this repository was created inside
// HandleTrx, otherwise the plain connection pool.
func (r *PaymentRepositoryImpl) ext() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *PaymentRepositoryImpl) AddTransaction(ctx context.Context, data domain.Transaction) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), "INSERT INTO transactions(id, student_id, amount, payer_phone, network, status, external_reference, failure_reason, expired_at, created_at, updated_at) VALUES (:id, :student_id, :amount, :payer_phone, :network, :status, :external_reference, :failure_reason, :expired_at, :created_at, :updated_at)", data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddTransaction").Msg("")
		return
	}

	return nil
}

func (r *PaymentRepositoryImpl) GetTransactionByID(ctx context.Context, id string) (data domain.Transaction, err error) {
	row := r.ext().QueryRowxContext(ctx, "SELECT * FROM transactions WHERE id = $1", id)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrTransactionNotFound
		}
		log.Error().Err(err).Str("component", "GetTransactionByID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *PaymentRepositoryImpl) UpdateTransactionStatus(ctx context.Context, id, fromStatus, toStatus string, failureReason *string) (updated bool, err error) {
	result, err := r.ext().ExecContext(ctx, "UPDATE transactions SET status = $1, failure_reason = $2, updated_at = EXTRACT(EPOCH FROM NOW())::bigint WHERE id = $3 AND status = $4", toStatus, failureReason, id, fromStatus)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateTransactionStatus").Msg("")
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateTransactionStatus").Msg("")
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) SetTransactionExternalReference(ctx context.Context, id, externalReference string) (err error) {
	_, err = r.ext().ExecContext(ctx, "UPDATE transactions SET external_reference = $1, updated_at = EXTRACT(EPOCH FROM NOW())::bigint WHERE id = $2", externalReference, id)
	if err != nil {
		log.Error().Err(err).Str("component", "SetTransactionExternalReference").Msg("")
		return
	}

	return nil
}

func (r *PaymentRepositoryImpl) GetExpiredPendingTransactions(ctx context.Context, now int64) (data []domain.Transaction, err error) {
	err = sqlx.SelectContext(ctx, r.ext(), &data, "SELECT * FROM transactions WHERE status = $1 AND expired_at < $2", domain.TransactionStatusPending, now)
	if err != nil {
		log.Error().Err(err).Str("component", "GetExpiredPendingTransactions").Msg("")
		return nil, err
	}

	return
}

func (r *PaymentRepositoryImpl) AddPayment(ctx context.Context, data domain.Payment) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), "INSERT INTO payments(id, transaction_id, student_id, amount, method, status, receipt_number, paid_at, created_at) VALUES (:id, :transaction_id, :student_id, :amount, :method, :status, :receipt_number, :paid_at, :created_at)", data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddPayment").Msg("")
		return
	}

	return nil
}

func (r *PaymentRepositoryImpl) GetPayments(ctx context.Context, filter pkgdto.Filter) (data []domain.Payment, err error) {
	query := "SELECT * FROM payments WHERE 1=1"

	args := make(map[string]interface{})

	if filter.StudentID != "" {
		query += " AND student_id = :student_id"
		args["student_id"] = filter.StudentID
	}

	if filter.Status != "" {
		query += " AND status = :status"
		args["status"] = filter.Status
	}

	query += " ORDER BY paid_at DESC"

	if filter.Limit != 0 && filter.Page != 0 {
		offset := (filter.Page - 1) * filter.Limit
		query += " LIMIT :limit OFFSET :offset"
		args["limit"] = filter.Limit
		args["offset"] = offset
	}

	query, queryArgs, err := sqlx.Named(query, args)
	if err != nil {
		log.Error().Err(err).Str("component", "GetPayments").Msg("")
		return nil, err
	}

	query = r.db.Rebind(query)
	err = sqlx.SelectContext(ctx, r.ext(), &data, query, queryArgs...)
	if err != nil {
		log.Error().Err(err).Str("component", "GetPayments").Msg("")
		return nil, err
	}

	return
}

func (r *PaymentRepositoryImpl) GetPaymentsByStudentID(ctx context.Context, studentID string) (data []domain.Payment, err error) {
	err = sqlx.SelectContext(ctx, r.ext(), &data, "SELECT * FROM payments WHERE student_id = $1 ORDER BY paid_at DESC", studentID)
	if err != nil {
		log.Error().Err(err).Str("component", "GetPaymentsByStudentID").Msg("")
		return nil, err
	}

	return
}

func (r *PaymentRepositoryImpl) ReceiptNumberExists(ctx context.Context, receiptNumber string) (exists bool, err error) {
	row := r.ext().QueryRowxContext(ctx, "SELECT EXISTS(SELECT 1 FROM payments WHERE receipt_number = $1)", receiptNumber)
	err = row.Scan(&exists)
	if err != nil {
		log.Error().Err(err).Str("component", "ReceiptNumberExists").Msg("")
		return false, err
	}

	return
}

func (r *PaymentRepositoryImpl) AddMessage(ctx context.Context, data domain.Message) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), "INSERT INTO messages(id, sender_id, sender_name, receiver_id, content, sent_at, is_read) VALUES (:id, :sender_id, :sender_name, :receiver_id, :content, :sent_at, :is_read)", data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddMessage").Msg("")
		return
	}

	return nil
}

func (r *PaymentRepositoryImpl) GetMessagesByUserID(ctx context.Context, userID string) (data []domain.Message, err error) {
	err = sqlx.SelectContext(ctx, r.ext(), &data, "SELECT * FROM messages WHERE sender_id = $1 OR receiver_id = $1 ORDER BY sent_at ASC", userID)
	if err != nil {
		log.Error().Err(err).Str("component", "GetMessagesByUserID").Msg("")
		return nil, err
	}

	return
}

func (r *PaymentRepositoryImpl) MarkMessageRead(ctx context.Context, id, receiverID string) (updated bool, err error) {
	result, err := r.ext().ExecContext(ctx, "UPDATE messages SET is_read = TRUE WHERE id = $1 AND receiver_id = $2", id, receiverID)
	if err != nil {
		log.Error().Err(err).Str("component", "MarkMessageRead").Msg("")
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error().Err(err).Str("component", "MarkMessageRead").Msg("")
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) GetStudentByID(ctx context.Context, id string) (data domain.Student, err error) {
	row := r.ext().QueryRowxContext(ctx, "SELECT * FROM students WHERE id = $1", id)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrStudentNotFound
		}
		log.Error().Err(err).Str("component", "GetStudentByID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *PaymentRepositoryImpl) GetUserByID(ctx context.Context, id string) (data domain.User, err error) {
	row := r.ext().QueryRowxContext(ctx, "SELECT * FROM users WHERE id = $1", id)
	err = row.StructScan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrNotFound
		}
		log.Error().Err(err).Str("component", "GetUserByID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *PaymentRepositoryImpl) GetFeeStructures(ctx context.Context, grade string, term int) (data []domain.FeeStructure, err error) {
	err = sqlx.SelectContext(ctx, r.ext(), &data, "SELECT * FROM fee_structures WHERE grade = $1 AND term = $2", grade, term)
	if err != nil {
		log.Error().Err(err).Str("component", "GetFeeStructures").Msg("")
		return nil, err
	}

	return
}

func (r *PaymentRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo PaymentRepository) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	txRepo := &PaymentRepositoryImpl{
		db: r.db,
		tx: tx,
	}

	err = fn(ctx, txRepo)

	return err
}
