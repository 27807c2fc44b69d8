package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DelphiTri/website/internal/constants"
)

func newMockPaymentRepo(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewPaymentRepository(sqlx.NewDb(raw, "sqlmock")), mock
}

func TestPaymentRepository_GetBySubscriptionID(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)
	paidAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"payment_id", "subscription_id", "amount", "currency",
		"transaction_id", "payment_status", "payer_id", "payment_date",
	}).AddRow(11, 3, "5.00", "USD", "tx-1", "Completed", "payer-9", paidAt)

	mock.ExpectQuery(regexp.QuoteMeta(constants.GetPaymentsBySubscriptionID)).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	payments, err := repo.GetBySubscriptionID(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(11), payments[0].PaymentID)
	assert.Equal(t, "USD", payments[0].Currency)
	require.NotNil(t, payments[0].PayerID)
	assert.Equal(t, "payer-9", *payments[0].PayerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_QueryError(t *testing.T) {
	repo, mock := newMockPaymentRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(constants.GetPaymentsBySubscriptionID)).
		WithArgs(int64(4)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetBySubscriptionID(context.Background(), 4)
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
