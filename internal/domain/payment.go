package domain

const (
	NetworkMTN    = "MTN"
	NetworkAirtel = "AIRTEL"
)

const (
	TransactionStatusPending = "PENDING"
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusFailed  = "FAILED"
)

const (
	PaymentMethodMTNMoMo     = "MTN_MOMO"
	PaymentMethodAirtelMoney = "AIRTEL_MONEY"
	PaymentMethodCash        = "CASH"
	PaymentMethodBank        = "BANK"
)

const (
	PaymentStatusPaid    = "PAID"
	PaymentStatusPartial = "PARTIAL"
	PaymentStatusOverdue = "OVERDUE"
)

// Transaction is the record of a collection attempt against a payer's
// mobile-money wallet. It is mutated only by settlement and expiry, and
// never once it reaches a terminal status.
type Transaction struct {
	ID                string  `db:"id"`
	StudentID         string  `db:"student_id"`
	Amount            float64 `db:"amount"`
	PayerPhone        string  `db:"payer_phone"`
	Network           string  `db:"network"`
	Status            string  `db:"status"`
	ExternalReference string  `db:"external_reference"`
	FailureReason     *string `db:"failure_reason"`
	ExpiredAt         int64   `db:"expired_at"`
	CreatedAt         int64   `db:"created_at"`
	UpdatedAt         int64   `db:"updated_at"`
}

// Payment is the permanent ledger entry written exactly once per settled
// transaction. The receipt number is the only identifier shown to parents.
type Payment struct {
	ID            string  `db:"id"`
	TransactionID string  `db:"transaction_id"`
	StudentID     string  `db:"student_id"`
	Amount        float64 `db:"amount"`
	Method        string  `db:"method"`
	Status        string  `db:"status"`
	ReceiptNumber string  `db:"receipt_number"`
	PaidAt        int64   `db:"paid_at"`
	CreatedAt     int64   `db:"created_at"`
}

// Message is a portal inbox entry. Read state belongs to the receiver.
type Message struct {
	ID         string `db:"id"`
	SenderID   string `db:"sender_id"`
	SenderName string `db:"sender_name"`
	ReceiverID string `db:"receiver_id"`
	Content    string `db:"content"`
	SentAt     int64  `db:"sent_at"`
	IsRead     bool   `db:"is_read"`
}

type User struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	Name        string `db:"name"`
	Role        string `db:"role"`
	PhoneNumber string `db:"phone_number"`
}

type Student struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Grade    string `db:"grade"`
	ParentID string `db:"parent_id"`
	Gender   string `db:"gender"`
	DOB      string `db:"dob"`
}

// FeeStructure is read-only reference data keyed by (grade, term).
type FeeStructure struct {
	ID          string  `db:"id"`
	Grade       string  `db:"grade"`
	Term        int     `db:"term"`
	Amount      float64 `db:"amount"`
	Description string  `db:"description"`
}

// MethodForNetwork maps a mobile network to the ledger payment method.
func MethodForNetwork(network string) string {
	if network == NetworkAirtel {
		return PaymentMethodAirtelMoney
	}
	return PaymentMethodMTNMoMo
}

// ProviderName is the customer-facing name of the network's wallet.
func ProviderName(network string) string {
	if network == NetworkAirtel {
		return "Airtel Money"
	}
	return "MTN MoMo"
}

