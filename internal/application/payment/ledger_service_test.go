package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

func newLedgerService(repo *MockTransactionRepository) *LedgerService {
	svc := NewLedgerService(repo, time.UTC, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestLedgerService_RecordTransaction_DefaultsToApproved(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)

	repo.On("Save", mock.Anything, mock.MatchedBy(func(tx *payment.Transaction) bool {
		return tx.Status == payment.StatusApproved &&
			tx.Type == payment.TransactionExpense &&
			tx.Date.Equal(payment.DateOnly(fixedNow))
	})).Return(nil)

	resp, err := svc.RecordTransaction(context.Background(), RecordTransactionRequest{
		Type:     "expense",
		Amount:   decimal.RequireFromString("120.50"),
		Category: "Elektrik",
	})

	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Status)
	assert.True(t, decimal.RequireFromString("120.5").Equal(resp.Amount))
	repo.AssertExpectations(t)
}

func TestLedgerService_RecordTransaction_ExplicitStatusAndDate(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)
	tenantID := uuid.New()
	date := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)

	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.RecordTransaction(context.Background(), RecordTransactionRequest{
		TenantID: &tenantID,
		Type:     "income",
		Amount:   decimal.NewFromInt(50),
		Category: payment.CategoryRent,
		Status:   "pending",
		Date:     &date,
	})

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), resp.Date)
	assert.Equal(t, &tenantID, resp.TenantID)
}

func TestLedgerService_RecordTransaction_Invalid(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)

	_, err := svc.RecordTransaction(context.Background(), RecordTransactionRequest{
		Type:     "income",
		Amount:   decimal.Zero,
		Category: "Servis",
	})

	assert.ErrorIs(t, err, shared.ErrValidation)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLedgerService_RecordTransaction_SaveFailure(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.RecordTransaction(context.Background(), RecordTransactionRequest{
		Type:     "income",
		Amount:   decimal.NewFromInt(10),
		Category: "Servis",
	})

	assert.ErrorIs(t, err, payment.ErrLedgerWrite)
}

func TestLedgerService_ListTransactions(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)

	tx, err := payment.NewTransaction(payment.TransactionInput{
		Type:     payment.TransactionIncome,
		Amount:   decimal.NewFromInt(50),
		Category: "Servis",
		Date:     fixedNow,
	})
	require.NoError(t, err)

	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f payment.TransactionFilter) bool {
		return f.OrderBy == "date" && f.OrderDir == "desc" && f.Page == 2 && f.PageSize == 1 &&
			f.Type != nil && *f.Type == payment.TransactionIncome
	})).Return([]payment.Transaction{*tx}, int64(3), nil)

	page, err := svc.ListTransactions(context.Background(), TransactionListFilter{
		Type:     "income",
		Page:     2,
		PageSize: 1,
	})

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestLedgerService_ListTransactions_InvertedRange(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.ListTransactions(context.Background(), TransactionListFilter{FromDate: &from, ToDate: &to})

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestLedgerService_Summary(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)

	repo.On("Summary", mock.Anything, mock.Anything).Return(&payment.LedgerSummary{
		TotalIncome:  decimal.NewFromInt(500),
		TotalExpense: decimal.NewFromInt(120),
		Balance:      decimal.NewFromInt(380),
	}, nil).Once()
	repo.On("Summary", mock.Anything, mock.Anything).Return(nil, nil).Once()

	s, err := svc.Summary(context.Background(), TransactionListFilter{})
	require.NoError(t, err)
	assert.True(t, s.Balance.Equal(decimal.NewFromInt(380)))

	empty, err := svc.Summary(context.Background(), TransactionListFilter{})
	require.NoError(t, err)
	assert.True(t, empty.Balance.IsZero())
}

func TestLedgerService_GetTransaction_NotFound(t *testing.T) {
	repo := new(MockTransactionRepository)
	svc := newLedgerService(repo)
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.GetTransaction(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
