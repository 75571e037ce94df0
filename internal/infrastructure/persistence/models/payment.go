package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"gorm.io/datatypes"
)

// TransactionModel is the persistence model for a ledger entry.
type TransactionModel struct {
	BaseModel
	TenantID    *uuid.UUID              `gorm:"type:uuid;index"`
	Type        payment.TransactionType `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Category    string                  `gorm:"type:varchar(100);not null"`
	Description string                  `gorm:"type:text"`
	Status      payment.Status          `gorm:"type:varchar(20);not null;default:'pending';index"`
	Date        time.Time               `gorm:"type:date;not null;index"`
	ReceiptURL  string                  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *TransactionModel) ToDomain() *payment.Transaction {
	return &payment.Transaction{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		Type:        m.Type,
		Amount:      m.Amount,
		Category:    m.Category,
		Description: m.Description,
		Status:      m.Status,
		Date:        m.Date,
		ReceiptURL:  m.ReceiptURL,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *TransactionModel) FromDomain(t *payment.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.TenantID = t.TenantID
	m.Type = t.Type
	m.Amount = t.Amount
	m.Category = t.Category
	m.Description = t.Description
	m.Status = t.Status
	m.Date = t.Date
	m.ReceiptURL = t.ReceiptURL
}

// TransactionFromDomain creates a new TransactionModel from a domain Transaction.
func TransactionFromDomain(t *payment.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// TenantPaymentModel is the persistence model for a tenant payment record.
// Status is denormalized from State so tenant-facing queries never need the
// state machine.
type TenantPaymentModel struct {
	AggregateModel
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	AssignmentID   *uuid.UUID      `gorm:"type:uuid"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentDate    time.Time       `gorm:"type:date;not null"`
	ReceiptURL     string          `gorm:"type:text"`
	PaymentMethod  payment.Method  `gorm:"type:varchar(20);not null"`
	State          payment.State   `gorm:"type:varchar(30);not null;index"`
	Status         payment.Status  `gorm:"type:varchar(20);not null;default:'pending'"`
	Remarks        string          `gorm:"type:text"`
	CorrelationID  *string         `gorm:"type:varchar(100);uniqueIndex"`
	GatewayPayload datatypes.JSON
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt     *time.Time
}

// TableName returns the table name for GORM
func (TenantPaymentModel) TableName() string {
	return "tenant_payments"
}

// ToDomain converts the persistence model to a domain TenantPayment.
func (m *TenantPaymentModel) ToDomain() *payment.TenantPayment {
	p := &payment.TenantPayment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenantID:          m.TenantID,
		TransactionID:     m.TransactionID,
		AssignmentID:      m.AssignmentID,
		Amount:            m.Amount,
		PaymentDate:       m.PaymentDate,
		ReceiptURL:        m.ReceiptURL,
		Method:            m.PaymentMethod,
		State:             m.State,
		Remarks:           m.Remarks,
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
	}
	if m.CorrelationID != nil {
		p.CorrelationID = *m.CorrelationID
	}
	if len(m.GatewayPayload) > 0 {
		p.GatewayResult = json.RawMessage(m.GatewayPayload)
	}
	return p
}

// FromDomain populates the persistence model from a domain TenantPayment.
// An empty correlation id is stored as NULL so the unique index ignores it.
func (m *TenantPaymentModel) FromDomain(p *payment.TenantPayment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.TenantID = p.TenantID
	m.TransactionID = p.TransactionID
	m.AssignmentID = p.AssignmentID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.ReceiptURL = p.ReceiptURL
	m.PaymentMethod = p.Method
	m.State = p.State
	m.Status = p.Status()
	m.Remarks = p.Remarks
	m.CorrelationID = nil
	if p.CorrelationID != "" {
		cid := p.CorrelationID
		m.CorrelationID = &cid
	}
	m.GatewayPayload = nil
	if len(p.GatewayResult) > 0 {
		m.GatewayPayload = datatypes.JSON(p.GatewayResult)
	}
	m.ReviewedBy = p.ReviewedBy
	m.ReviewedAt = p.ReviewedAt
}

// TenantPaymentFromDomain creates a new TenantPaymentModel from a domain TenantPayment.
func TenantPaymentFromDomain(p *payment.TenantPayment) *TenantPaymentModel {
	m := &TenantPaymentModel{}
	m.FromDomain(p)
	return m
}
