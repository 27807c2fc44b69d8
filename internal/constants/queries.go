package constants

const (
	GetPaymentsBySubscriptionID = `
	SELECT payment_id, subscription_id, amount, currency, transaction_id, payment_status, payer_id, payment_date
	FROM payments
	WHERE subscription_id = $1
	ORDER BY payment_date DESC
	`
)
