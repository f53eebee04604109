package dto

// CollectionNotification is the aggregator's callback payload, delivered
// once the payer has responded to the USSD push (or the collection failed).
// Delivery is at-least-once; duplicates must be tolerated.
type CollectionNotification struct {
	TransactionID     string  `json:"transaction_id"`
	Status            string  `json:"status"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	ExternalRef       string  `json:"external_ref"`
	StatusDescription string  `json:"status_description"`
}
