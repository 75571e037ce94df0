package rental

import (
	"net/mail"
	"strings"

	"github.com/ttacon/libphonenumber"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// PhoneRegion is the default region used to parse local phone numbers
const PhoneRegion = "MY"

// TenantStatus represents whether a tenant is trading
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// IsValid checks if the status is valid
func (s TenantStatus) IsValid() bool {
	return s == TenantStatusActive || s == TenantStatusInactive
}

// Tenant is a market-stall operator renting space
type Tenant struct {
	shared.BaseEntity
	FullName        string       `json:"full_name"`
	BusinessName    string       `json:"business_name"`
	ICNumber        string       `json:"ic_number"`
	SSMNumber       string       `json:"ssm_number"`
	PhoneNumber     string       `json:"phone_number"`
	Email           string       `json:"email"`
	Address         string       `json:"address"`
	ProfileID       string       `json:"profile_id,omitempty"`
	ProfileImageURL string       `json:"profile_image_url,omitempty"`
	SSMDocumentURL  string       `json:"ssm_document_url,omitempty"`
	ICDocumentURL   string       `json:"ic_document_url,omitempty"`
	Status          TenantStatus `json:"status"`
}

// TenantProfile carries the editable identity and business fields of a tenant
type TenantProfile struct {
	FullName        string
	BusinessName    string
	ICNumber        string
	SSMNumber       string
	PhoneNumber     string
	Email           string
	Address         string
	ProfileID       string
	ProfileImageURL string
	SSMDocumentURL  string
	ICDocumentURL   string
}

// NewTenant creates an active tenant
func NewTenant(p TenantProfile) (*Tenant, error) {
	t := &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Status:     TenantStatusActive,
	}
	if err := t.UpdateProfile(p); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateProfile validates and applies p
func (t *Tenant) UpdateProfile(p TenantProfile) error {
	if strings.TrimSpace(p.FullName) == "" {
		return shared.NewValidationError("Full name is required")
	}
	phone := ""
	if strings.TrimSpace(p.PhoneNumber) != "" {
		normalized, err := NormalizePhone(p.PhoneNumber)
		if err != nil {
			return err
		}
		phone = normalized
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewValidationError("Email address is not valid")
		}
	}

	t.FullName = strings.TrimSpace(p.FullName)
	t.BusinessName = strings.TrimSpace(p.BusinessName)
	t.ICNumber = strings.TrimSpace(p.ICNumber)
	t.SSMNumber = strings.TrimSpace(p.SSMNumber)
	t.PhoneNumber = phone
	t.Email = email
	t.Address = p.Address
	t.ProfileID = p.ProfileID
	t.ProfileImageURL = p.ProfileImageURL
	t.SSMDocumentURL = p.SSMDocumentURL
	t.ICDocumentURL = p.ICDocumentURL
	t.Touch()
	return nil
}

// SetStatus changes the trading status
func (t *Tenant) SetStatus(status TenantStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("Tenant status must be active or inactive")
	}
	t.Status = status
	t.Touch()
	return nil
}

// IsActive returns true if the tenant is trading
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// DisplayName prefers the business name
func (t *Tenant) DisplayName() string {
	if t.BusinessName != "" {
		return t.BusinessName
	}
	return t.FullName
}

// NormalizePhone parses a phone number (local numbers default to Malaysia)
// and returns it in E.164 form.
func NormalizePhone(raw string) (string, error) {
	num, err := libphonenumber.Parse(raw, PhoneRegion)
	if err != nil {
		return "", shared.NewValidationError("Phone number is not valid")
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", shared.NewValidationError("Phone number is not valid")
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
