package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/models/entities"
)

// PaymentRepository reads payments written by the external payment pipeline
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetBySubscriptionID(ctx context.Context, subscriptionID int64) ([]entities.Payment, error) {
	payments := []entities.Payment{}
	if err := r.db.SelectContext(ctx, &payments, constants.GetPaymentsBySubscriptionID, subscriptionID); err != nil {
		return nil, fmt.Errorf("failed to fetch payments for subscription %d: %w", subscriptionID, err)
	}
	return payments, nil
}
