package dto

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type PaymentEvent struct {
	TransactionID string  `json:"transaction_id"`
	StudentID     string  `json:"student_id"`
	ParentID      string  `json:"parent_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Network       string  `json:"network"`
	Status        string  `json:"status"`
	ReceiptNumber string  `json:"receipt_number,omitempty"`
	Timestamp     int64   `json:"timestamp"`
}
