package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerService manages the operator's ledger of income and expenses
type LedgerService struct {
	transactions payment.TransactionRepository
	logger       *zap.Logger
	location     *time.Location
	now          func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(transactions payment.TransactionRepository, loc *time.Location, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		transactions: transactions,
		logger:       logger.Named("ledger"),
		location:     loc,
		now:          time.Now,
	}
}

// RecordTransaction adds a staff-entered ledger row. Entries typed in by
// staff are approved unless a status is given.
func (s *LedgerService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*TransactionResponse, error) {
	date := s.now().In(s.location)
	if req.Date != nil {
		date = *req.Date
	}
	status := payment.Status(req.Status)
	if status == "" {
		status = payment.StatusApproved
	}

	tx, err := payment.NewTransaction(payment.TransactionInput{
		TenantID:    req.TenantID,
		Type:        payment.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Status:      status,
		Date:        date,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.transactions.Save(ctx, tx); err != nil {
		s.logger.Error("Failed to save ledger transaction", zap.Error(err))
		return nil, payment.ErrLedgerWrite
	}

	s.logger.Info("Ledger transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()))

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// GetTransaction returns one ledger row
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, payment.ErrTransactionNotFound
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// ListTransactions lists ledger rows, newest date first by default
func (s *LedgerService) ListTransactions(ctx context.Context, f TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	filter := f.toDomain()
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, shared.NewValidationError("to_date must not be before from_date")
	}

	txs, total, err := s.transactions.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]TransactionResponse, len(txs))
	for i := range txs {
		items[i] = ToTransactionResponse(&txs[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Summary totals approved income and expense in the filter's date range
func (s *LedgerService) Summary(ctx context.Context, f TransactionListFilter) (*payment.LedgerSummary, error) {
	summary, err := s.transactions.Summary(ctx, f.toDomain())
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return &payment.LedgerSummary{
			TotalIncome:  decimal.Zero,
			TotalExpense: decimal.Zero,
			Balance:      decimal.Zero,
		}, nil
	}
	return summary, nil
}
