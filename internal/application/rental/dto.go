package rental

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
)

// Scope restricts what a caller may see. A nil OrganizerID is unrestricted;
// otherwise only locations run by that organizer are visible.
type Scope struct {
	OrganizerID *uuid.UUID
}

// Unrestricted is the scope of admin and staff callers
var Unrestricted = Scope{}

// OrganizerScope restricts a caller to the locations they organize
func OrganizerScope(userID uuid.UUID) Scope {
	return Scope{OrganizerID: &userID}
}

func (s Scope) allows(loc *rental.Location) bool {
	if s.OrganizerID == nil {
		return true
	}
	return loc != nil && loc.IsOrganizedBy(*s.OrganizerID)
}

// =============================================================================
// Locations
// =============================================================================

// LocationRequest creates or replaces a location
type LocationRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Type          string          `json:"type" binding:"omitempty,oneof=weekly monthly daily"`
	OperatingDays string          `json:"operating_days" binding:"max=200"`
	Description   string          `json:"description" binding:"max=2000"`
	RateKhemah    decimal.Decimal `json:"rate_khemah"`
	RateCBS       decimal.Decimal `json:"rate_cbs"`
	RateMonthly   decimal.Decimal `json:"rate_monthly"`
	OrganizerID   *uuid.UUID      `json:"organizer_id"`
}

func (r LocationRequest) toDetails() (rental.LocationDetails, error) {
	t, err := rental.ParseLocationType(r.Type)
	if err != nil {
		return rental.LocationDetails{}, err
	}
	return rental.LocationDetails{
		Name:          r.Name,
		Type:          t,
		OperatingDays: r.OperatingDays,
		Description:   r.Description,
		Rates: rental.Rates{
			Khemah:  r.RateKhemah,
			CBS:     r.RateCBS,
			Monthly: r.RateMonthly,
		},
		OrganizerID: r.OrganizerID,
	}, nil
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	OperatingDays string          `json:"operating_days"`
	Description   string          `json:"description"`
	RateKhemah    decimal.Decimal `json:"rate_khemah"`
	RateCBS       decimal.Decimal `json:"rate_cbs"`
	RateMonthly   decimal.Decimal `json:"rate_monthly"`
	OrganizerID   *uuid.UUID      `json:"organizer_id,omitempty"`
	TenantCount   int64           `json:"tenant_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToLocationResponse converts a domain Location to a response
func ToLocationResponse(l *rental.Location) LocationResponse {
	return LocationResponse{
		ID:            l.ID,
		Name:          l.Name,
		Type:          string(l.Type),
		OperatingDays: l.OperatingDays,
		Description:   l.Description,
		RateKhemah:    l.Rates.Khemah,
		RateCBS:       l.Rates.CBS,
		RateMonthly:   l.Rates.Monthly,
		OrganizerID:   l.OrganizerID,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// LocationListFilter defines filtering options for location lists
type LocationListFilter struct {
	Type     string `form:"type" binding:"omitempty,oneof=weekly monthly"`
	Search   string `form:"search" binding:"max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Tenants
// =============================================================================

// TenantRequest creates or replaces a tenant's profile
type TenantRequest struct {
	FullName        string `json:"full_name" binding:"required,min=1,max=200"`
	BusinessName    string `json:"business_name" binding:"max=200"`
	ICNumber        string `json:"ic_number" binding:"max=20"`
	SSMNumber       string `json:"ssm_number" binding:"max=50"`
	PhoneNumber     string `json:"phone_number" binding:"max=30"`
	Email           string `json:"email" binding:"omitempty,email"`
	Address         string `json:"address" binding:"max=500"`
	ProfileID       string `json:"profile_id" binding:"max=100"`
	ProfileImageURL string `json:"profile_image_url" binding:"omitempty,url"`
	SSMDocumentURL  string `json:"ssm_document_url" binding:"omitempty,url"`
	ICDocumentURL   string `json:"ic_document_url" binding:"omitempty,url"`
	Status          string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func (r TenantRequest) toProfile() rental.TenantProfile {
	return rental.TenantProfile{
		FullName:        r.FullName,
		BusinessName:    r.BusinessName,
		ICNumber:        r.ICNumber,
		SSMNumber:       r.SSMNumber,
		PhoneNumber:     r.PhoneNumber,
		Email:           r.Email,
		Address:         r.Address,
		ProfileID:       r.ProfileID,
		ProfileImageURL: r.ProfileImageURL,
		SSMDocumentURL:  r.SSMDocumentURL,
		ICDocumentURL:   r.ICDocumentURL,
	}
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	BusinessName    string    `json:"business_name"`
	ICNumber        string    `json:"ic_number"`
	SSMNumber       string    `json:"ssm_number"`
	PhoneNumber     string    `json:"phone_number"`
	Email           string    `json:"email"`
	Address         string    `json:"address"`
	ProfileID       string    `json:"profile_id,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	SSMDocumentURL  string    `json:"ssm_document_url,omitempty"`
	ICDocumentURL   string    `json:"ic_document_url,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToTenantResponse converts a domain Tenant to a response
func ToTenantResponse(t *rental.Tenant) TenantResponse {
	return TenantResponse{
		ID:              t.ID,
		FullName:        t.FullName,
		BusinessName:    t.BusinessName,
		ICNumber:        t.ICNumber,
		SSMNumber:       t.SSMNumber,
		PhoneNumber:     t.PhoneNumber,
		Email:           t.Email,
		Address:         t.Address,
		ProfileID:       t.ProfileID,
		ProfileImageURL: t.ProfileImageURL,
		SSMDocumentURL:  t.SSMDocumentURL,
		ICDocumentURL:   t.ICDocumentURL,
		Status:          string(t.Status),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// TenantListFilter defines filtering options for tenant lists
type TenantListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f TenantListFilter) toDomain() rental.TenantFilter {
	base := shared.DefaultFilter()
	base.OrderBy = "full_name"
	base.OrderDir = "asc"
	base.Search = f.Search
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 {
		base.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		base.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		base.OrderDir = f.OrderDir
	}
	out := rental.TenantFilter{Filter: base}
	if f.Status != "" {
		s := rental.TenantStatus(f.Status)
		out.Status = &s
	}
	return out
}

// =============================================================================
// Assignments
// =============================================================================

// AssignRequest assigns a tenant to a stall
type AssignRequest struct {
	LocationID  uuid.UUID `json:"location_id" binding:"required"`
	RateType    string    `json:"rate_type" binding:"required,oneof=khemah cbs monthly"`
	StallNumber string    `json:"stall_number" binding:"max=50"`
}

// UpdateStallRequest changes an assignment's stall number
type UpdateStallRequest struct {
	StallNumber string `json:"stall_number" binding:"max=50"`
}

// AssignmentResponse represents a tenant-location assignment
type AssignmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	LocationID    uuid.UUID       `json:"location_id"`
	LocationName  string          `json:"location_name"`
	LocationType  string          `json:"location_type,omitempty"`
	OperatingDays string          `json:"operating_days,omitempty"`
	RateType      string          `json:"rate_type"`
	StallNumber   string          `json:"stall_number"`
	Status        string          `json:"status"`
	DisplayPrice  decimal.Decimal `json:"display_price"`
	TenantName    string          `json:"tenant_name,omitempty"`
	BusinessName  string          `json:"business_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToAssignmentResponse converts a domain Assignment to a response. The
// display price is resolved from the joined location.
func ToAssignmentResponse(a *rental.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:           a.ID,
		TenantID:     a.TenantID,
		LocationID:   a.LocationID,
		LocationName: a.LocationName(),
		RateType:     string(a.RateType),
		StallNumber:  a.StallNumber,
		Status:       string(a.Status),
		DisplayPrice: a.Rate(),
		CreatedAt:    a.CreatedAt,
	}
	if a.Location != nil {
		resp.LocationType = string(a.Location.Type)
		resp.OperatingDays = a.Location.OperatingDays
	}
	return resp
}

// =============================================================================
// Arrears
// =============================================================================

// TenantStatusResponse is one tenant's arrears standing
type TenantStatusResponse struct {
	TenantID        uuid.UUID       `json:"tenant_id"`
	FullName        string          `json:"full_name"`
	BusinessName    string          `json:"business_name"`
	TenantStatus    string          `json:"tenant_status"`
	LocationID      *uuid.UUID      `json:"location_id,omitempty"`
	LocationName    string          `json:"location_name,omitempty"`
	StallNumber     string          `json:"stall_number,omitempty"`
	RateType        string          `json:"rate_type"`
	Rate            decimal.Decimal `json:"rate"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty"`
	Status          string          `json:"status"`
	DaysElapsed     int             `json:"days_elapsed"`
	OverduePeriods  int             `json:"overdue_periods"`
	ArrearsAmount   decimal.Decimal `json:"arrears_amount"`
	Label           string          `json:"label,omitempty"`
}

// DashboardOverview is the operator's landing summary
type DashboardOverview struct {
	TotalIncome   decimal.Decimal        `json:"total_income"`
	ActiveTenants int64                  `json:"active_tenants"`
	OverdueCount  int                    `json:"overdue_count"`
	TotalArrears  decimal.Decimal        `json:"total_arrears"`
	Overdue       []TenantStatusResponse `json:"overdue"`
	GeneratedAt   time.Time              `json:"generated_at"`
}
