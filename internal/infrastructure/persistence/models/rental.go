package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/rental"
)

// LocationModel is the persistence model for a market location.
type LocationModel struct {
	BaseModel
	Name          string              `gorm:"type:varchar(200);not null"`
	Type          rental.LocationType `gorm:"type:varchar(20);not null;default:'weekly'"`
	OperatingDays string              `gorm:"type:varchar(200)"`
	Description   string              `gorm:"type:text"`
	RateKhemah    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	RateCBS       decimal.Decimal     `gorm:"column:rate_cbs;type:decimal(18,2);not null;default:0"`
	RateMonthly   decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	OrganizerID   *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location.
func (m *LocationModel) ToDomain() *rental.Location {
	return &rental.Location{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		Type:          m.Type,
		OperatingDays: m.OperatingDays,
		Description:   m.Description,
		Rates: rental.Rates{
			Khemah:  m.RateKhemah,
			CBS:     m.RateCBS,
			Monthly: m.RateMonthly,
		},
		OrganizerID: m.OrganizerID,
	}
}

// FromDomain populates the persistence model from a domain Location.
func (m *LocationModel) FromDomain(l *rental.Location) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.Name = l.Name
	m.Type = l.Type
	m.OperatingDays = l.OperatingDays
	m.Description = l.Description
	m.RateKhemah = l.Rates.Khemah
	m.RateCBS = l.Rates.CBS
	m.RateMonthly = l.Rates.Monthly
	m.OrganizerID = l.OrganizerID
}

// LocationFromDomain creates a new LocationModel from a domain Location.
func LocationFromDomain(l *rental.Location) *LocationModel {
	m := &LocationModel{}
	m.FromDomain(l)
	return m
}

// TenantModel is the persistence model for a stall tenant.
type TenantModel struct {
	BaseModel
	FullName        string              `gorm:"type:varchar(200);not null"`
	BusinessName    string              `gorm:"type:varchar(200)"`
	ICNumber        string              `gorm:"column:ic_number;type:varchar(30)"`
	SSMNumber       string              `gorm:"column:ssm_number;type:varchar(50)"`
	PhoneNumber     string              `gorm:"type:varchar(30)"`
	Email           string              `gorm:"type:varchar(200);index"`
	Address         string              `gorm:"type:text"`
	ProfileID       *string             `gorm:"type:varchar(64);uniqueIndex"`
	ProfileImageURL string              `gorm:"type:text"`
	SSMDocumentURL  string              `gorm:"column:ssm_file_url;type:text"`
	ICDocumentURL   string              `gorm:"column:ic_file_url;type:text"`
	Status          rental.TenantStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant.
func (m *TenantModel) ToDomain() *rental.Tenant {
	t := &rental.Tenant{
		BaseEntity:      m.BaseModel.ToDomain(),
		FullName:        m.FullName,
		BusinessName:    m.BusinessName,
		ICNumber:        m.ICNumber,
		SSMNumber:       m.SSMNumber,
		PhoneNumber:     m.PhoneNumber,
		Email:           m.Email,
		Address:         m.Address,
		ProfileImageURL: m.ProfileImageURL,
		SSMDocumentURL:  m.SSMDocumentURL,
		ICDocumentURL:   m.ICDocumentURL,
		Status:          m.Status,
	}
	if m.ProfileID != nil {
		t.ProfileID = *m.ProfileID
	}
	return t
}

// FromDomain populates the persistence model from a domain Tenant.
// An empty profile id is stored as NULL so the unique index ignores it.
func (m *TenantModel) FromDomain(t *rental.Tenant) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.FullName = t.FullName
	m.BusinessName = t.BusinessName
	m.ICNumber = t.ICNumber
	m.SSMNumber = t.SSMNumber
	m.PhoneNumber = t.PhoneNumber
	m.Email = t.Email
	m.Address = t.Address
	m.ProfileID = nil
	if t.ProfileID != "" {
		pid := t.ProfileID
		m.ProfileID = &pid
	}
	m.ProfileImageURL = t.ProfileImageURL
	m.SSMDocumentURL = t.SSMDocumentURL
	m.ICDocumentURL = t.ICDocumentURL
	m.Status = t.Status
}

// TenantFromDomain creates a new TenantModel from a domain Tenant.
func TenantFromDomain(t *rental.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// AssignmentModel is the persistence model for a tenant's stall at a location.
type AssignmentModel struct {
	BaseModel
	TenantID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	LocationID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	RateType    rental.RateType         `gorm:"type:varchar(20);not null;default:'monthly'"`
	StallNumber string                  `gorm:"type:varchar(50)"`
	Status      rental.AssignmentStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Location    *LocationModel          `gorm:"foreignKey:LocationID;references:ID"`
}

// TableName returns the table name for GORM
func (AssignmentModel) TableName() string {
	return "tenant_locations"
}

// ToDomain converts the persistence model to a domain Assignment.
// Rows written before rate types existed default to monthly.
func (m *AssignmentModel) ToDomain() *rental.Assignment {
	a := &rental.Assignment{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		LocationID:  m.LocationID,
		RateType:    m.RateType,
		StallNumber: m.StallNumber,
		Status:      m.Status,
	}
	if a.RateType == "" {
		a.RateType = rental.RateTypeMonthly
	}
	if m.Location != nil {
		a.Location = m.Location.ToDomain()
	}
	return a
}

// FromDomain populates the persistence model from a domain Assignment.
// The joined location is never written back.
func (m *AssignmentModel) FromDomain(a *rental.Assignment) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TenantID = a.TenantID
	m.LocationID = a.LocationID
	m.RateType = a.RateType
	m.StallNumber = a.StallNumber
	m.Status = a.Status
	m.Location = nil
}

// AssignmentFromDomain creates a new AssignmentModel from a domain Assignment.
func AssignmentFromDomain(a *rental.Assignment) *AssignmentModel {
	m := &AssignmentModel{}
	m.FromDomain(a)
	return m
}
