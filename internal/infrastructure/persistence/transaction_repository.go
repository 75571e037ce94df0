package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements payment.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a ledger entry by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormTransactionRepository) filtered(ctx context.Context, filter payment.TransactionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.TenantIDs != nil {
		if len(filter.TenantIDs) == 0 {
			return query.Where("1 = 0")
		}
		query = query.Where("tenant_id IN ?", filter.TenantIDs)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", payment.DateOnly(*filter.FromDate))
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", payment.DateOnly(*filter.ToDate))
	}
	return query
}

// FindAll lists ledger entries matching the filter and the total match count
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter payment.TransactionFilter) ([]payment.Transaction, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TransactionModel
	if err := applyListFilter(query, filter.Filter, TransactionSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]payment.Transaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a ledger entry
func (r *GormTransactionRepository) Save(ctx context.Context, tx *payment.Transaction) error {
	return r.db.WithContext(ctx).Save(models.TransactionFromDomain(tx)).Error
}

// Summary totals approved income and expense. The filter's status is ignored.
func (r *GormTransactionRepository) Summary(ctx context.Context, filter payment.TransactionFilter) (*payment.LedgerSummary, error) {
	filter.Status = nil
	var rows []struct {
		Type  payment.TransactionType
		Total decimal.Decimal
	}
	err := r.filtered(ctx, filter).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", payment.StatusApproved).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	s := &payment.LedgerSummary{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, row := range rows {
		switch row.Type {
		case payment.TransactionIncome:
			s.TotalIncome = row.Total
		case payment.TransactionExpense:
			s.TotalExpense = row.Total
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s, nil
}
