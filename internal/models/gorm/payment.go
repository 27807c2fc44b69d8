package gorm

import "time"

// Payment mirrors the payments table written by the checkout pipeline. It is
// migrated so local SQLite databases can serve the subscription view; this
// service never writes it.
type Payment struct {
	PaymentID      int64     `gorm:"column:payment_id;primaryKey;autoIncrement"`
	SubscriptionID int64     `gorm:"column:subscription_id;index"`
	Amount         string    `gorm:"column:amount;size:32"`
	Currency       string    `gorm:"column:currency;size:8"`
	TransactionID  string    `gorm:"column:transaction_id;size:100"`
	PaymentStatus  string    `gorm:"column:payment_status;size:32"`
	PayerID        *string   `gorm:"column:payer_id;size:100"`
	PaymentDate    time.Time `gorm:"column:payment_date"`
}

func (Payment) TableName() string {
	return "payments"
}
