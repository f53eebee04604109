package dto

type PaymentRequest struct {
	StudentID  string  `json:"student_id"`
	Amount     float64 `json:"amount"`
	PayerPhone string  `json:"payer_phone"`
	Network    string  `json:"network"`
}
