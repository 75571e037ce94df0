package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// TransactionType is the direction of a ledger entry
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// IsValid checks if the type is known
func (t TransactionType) IsValid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// CategoryRent is the ledger category used for stall rent income
const CategoryRent = "Servis"

// Transaction is an entry in the operator's ledger and the authoritative
// accounting record for money in and out.
type Transaction struct {
	shared.BaseEntity
	TenantID    *uuid.UUID      `json:"tenant_id,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	Date        time.Time       `json:"date"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
}

// TransactionInput carries the fields of a new ledger entry
type TransactionInput struct {
	TenantID    *uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Status      Status
	Date        time.Time
	ReceiptURL  string
}

// NewTransaction creates a ledger entry. Status defaults to pending.
func NewTransaction(in TransactionInput) (*Transaction, error) {
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("Transaction type must be income or expense")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("Amount must be greater than zero")
	}
	if strings.TrimSpace(in.Category) == "" {
		return nil, shared.NewValidationError("Category is required")
	}
	if in.Date.IsZero() {
		return nil, shared.NewValidationError("Transaction date is required")
	}
	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("Transaction status is not valid")
	}
	return &Transaction{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    in.TenantID,
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Status:      status,
		Date:        DateOnly(in.Date),
		ReceiptURL:  in.ReceiptURL,
	}, nil
}

// SignedAmount returns the amount negated for expenses
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// DateOnly truncates t to midnight UTC of its calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LedgerSummary totals approved ledger entries
type LedgerSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
}
