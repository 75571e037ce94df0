package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) findOne(ctx context.Context, query string, args ...any) (*payment.TenantPayment, error) {
	var model models.TenantPaymentModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormPaymentRepository) list(q *gorm.DB) ([]payment.TenantPayment, error) {
	var rows []models.TenantPaymentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]payment.TenantPayment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.TenantPayment, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCorrelationID finds the payment tagged with a gateway bill id
func (r *GormPaymentRepository) FindByCorrelationID(ctx context.Context, billID string) (*payment.TenantPayment, error) {
	if billID == "" {
		return nil, nil
	}
	return r.findOne(ctx, "correlation_id = ?", billID)
}

// FindByTenant lists a tenant's payments, newest payment date first
func (r *GormPaymentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]payment.TenantPayment, error) {
	return r.list(r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("payment_date DESC").
		Order("created_at DESC"))
}

// FindByState lists payments in any of states, oldest first
func (r *GormPaymentRepository) FindByState(ctx context.Context, states []payment.State, olderThan *time.Time) ([]payment.TenantPayment, error) {
	if len(states) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Where("state IN ?", states)
	if olderThan != nil {
		q = q.Where("updated_at < ?", *olderThan)
	}
	return r.list(q.Order("created_at ASC"))
}

// LatestApprovedDates maps each tenant to its newest approved payment date.
// The per-tenant maximum is resolved in SQL against the partial
// (tenant_id, payment_date) index on approved payments.
func (r *GormPaymentRepository) LatestApprovedDates(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	newest := r.db.Table("tenant_payments AS newest").
		Select("MAX(newest.payment_date)").
		Where("newest.tenant_id = tenant_payments.tenant_id AND newest.state = ?", payment.StateApproved)

	var rows []struct {
		TenantID    uuid.UUID
		PaymentDate time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&models.TenantPaymentModel{}).
		Distinct("tenant_id", "payment_date").
		Where("state = ?", payment.StateApproved).
		Where("payment_date = (?)", newest).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[uuid.UUID]time.Time, len(rows))
	for _, row := range rows {
		latest[row.TenantID] = row.PaymentDate
	}
	return latest, nil
}

// RecordPair inserts the ledger entry and then its payment record in one
// database transaction.
func (r *GormPaymentRepository) RecordPair(ctx context.Context, tx *payment.Transaction, p *payment.TenantPayment) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(models.TransactionFromDomain(tx)).Error; err != nil {
			return fmt.Errorf("%w: %v", payment.ErrLedgerWrite, err)
		}
		if err := db.Create(models.TenantPaymentFromDomain(p)).Error; err != nil {
			return fmt.Errorf("%w: %v", payment.ErrHistoryWrite, err)
		}
		return nil
	})
}

// TransitionPair writes p's state onto its row and its ledger entry, guarded
// by the stored state being one of from. It reports false when the guard
// matched no row.
func (r *GormPaymentRepository) TransitionPair(ctx context.Context, p *payment.TenantPayment, from ...payment.State) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("transition requires at least one source state")
	}
	status := p.Status()
	updates := map[string]any{
		"state":           p.State,
		"status":          status,
		"receipt_url":     p.ReceiptURL,
		"gateway_payload": models.TenantPaymentFromDomain(p).GatewayPayload,
		"reviewed_by":     p.ReviewedBy,
		"reviewed_at":     p.ReviewedAt,
		"updated_at":      p.UpdatedAt,
		"version":         gorm.Expr("version + 1"),
	}

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		res := db.Model(&models.TenantPaymentModel{}).
			Where("id = ? AND state IN ?", p.ID, from).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("%w: %v", payment.ErrHistoryWrite, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		res = db.Model(&models.TransactionModel{}).
			Where("id = ?", p.TransactionID).
			Updates(map[string]any{"status": status, "updated_at": p.UpdatedAt})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", payment.ErrLedgerWrite, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: transaction %s missing", payment.ErrLedgerWrite, p.TransactionID)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		p.IncrementVersion()
	}
	return applied, nil
}
