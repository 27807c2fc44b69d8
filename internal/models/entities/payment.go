package entities

import "time"

// Payment is a settled payment recorded by the checkout pipeline. Read-only here.
type Payment struct {
	PaymentID      int64     `db:"payment_id" json:"payment_id"`
	SubscriptionID int64     `db:"subscription_id" json:"subscription_id"`
	Amount         string    `db:"amount" json:"amount"`
	Currency       string    `db:"currency" json:"currency"`
	TransactionID  string    `db:"transaction_id" json:"transaction_id"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
	PayerID        *string   `db:"payer_id" json:"payer_id"`
	PaymentDate    time.Time `db:"payment_date" json:"payment_date"`
}
