package dto

type PaymentResponse struct {
	TransactionID     string  `json:"transaction_id"`
	StudentID         string  `json:"student_id"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Network           string  `json:"network"`
	Status            string  `json:"status"`
	ExternalReference string  `json:"external_reference"`
}

type PaymentRecordResponse struct {
	ID            string  `json:"id"`
	StudentID     string  `json:"student_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	Date          string  `json:"date"`
	ReceiptNumber string  `json:"receipt_number"`
}

type BalanceResponse struct {
	StudentID   string  `json:"student_id"`
	Grade       string  `json:"grade"`
	Term        int     `json:"term"`
	Currency    string  `json:"currency"`
	TotalFees   float64 `json:"total_fees"`
	TotalPaid   float64 `json:"total_paid"`
	Balance     float64 `json:"balance"`
	RawBalance  float64 `json:"raw_balance"`
	Overpayment bool    `json:"overpayment"`
}

type MessageResponse struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	IsRead     bool   `json:"is_read"`
}
