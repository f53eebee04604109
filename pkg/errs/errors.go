package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotLoggedIn    = http.StatusUnauthorized
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusConflict       = http.StatusConflict
	ErrStatusBadGateway     = http.StatusBadGateway
)

var (
	ErrInternalServer = errors.New("Internal server error")
	ErrClient         = errors.New("Bad request")
	ErrNotLoggedIn    = errors.New("Unauthorized access")
	ErrNotFound       = errors.New("Resource not found")

	ErrValidation          = errors.New("Invalid payment request")
	ErrStudentNotFound     = errors.New("Student not found")
	ErrTransactionNotFound = errors.New("Transaction not found")
	ErrMessageNotFound     = errors.New("Message not found")

	// ErrDuplicateConfirmation marks a webhook delivery for a transaction
	// that already reached a terminal status. It is acknowledged to the
	// sender, never surfaced as a failure.
	ErrDuplicateConfirmation = errors.New("Transaction already settled")

	// ErrAmountMismatch marks a confirmation whose amount differs from the
	// initiated amount. The transaction is failed and no settlement happens.
	ErrAmountMismatch = errors.New("Confirmed amount does not match initiated amount")

	ErrTransactionExpired  = errors.New("Transaction confirmation window has expired")
	ErrGatewayUnavailable  = errors.New("Mobile money gateway is unavailable")
	ErrReceiptNumberExists = errors.New("Receipt number already issued")
)

var errorMap = map[error]int{
	ErrInternalServer:        ErrStatusInternalServer,
	ErrClient:                ErrStatusClient,
	ErrNotLoggedIn:           ErrStatusNotLoggedIn,
	ErrNotFound:              ErrStatusNotFound,
	ErrValidation:            ErrStatusClient,
	ErrStudentNotFound:       ErrStatusNotFound,
	ErrTransactionNotFound:   ErrStatusNotFound,
	ErrMessageNotFound:       ErrStatusNotFound,
	ErrDuplicateConfirmation: ErrStatusConflict,
	ErrAmountMismatch:        ErrStatusConflict,
	ErrTransactionExpired:    ErrStatusConflict,
	ErrGatewayUnavailable:    ErrStatusBadGateway,
	ErrReceiptNumberExists:   ErrStatusConflict,
}

func GetErrorStatusCode(err error) int {
	errStatusCode, ok := errorMap[err]
	if !ok {
		errStatusCode = errorMap[ErrInternalServer]
	}
	return errStatusCode
}
