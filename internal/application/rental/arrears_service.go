package rental

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/rental"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"github.com/webdevsha/permitak/internal/infrastructure/report"
	"go.uber.org/zap"
)

// ArrearsServiceConfig wires the ArrearsService
type ArrearsServiceConfig struct {
	Tenants      rental.TenantRepository
	Assignments  rental.AssignmentRepository
	Payments     payment.PaymentRepository
	Transactions payment.TransactionRepository
	Policy       rental.ArrearsPolicy
	Logger       *zap.Logger
}

// ArrearsService derives every tenant's standing from its latest approved
// payment. The tenant list, the dashboard and the export all go through
// TenantStatuses so they agree on one policy.
type ArrearsService struct {
	tenants      rental.TenantRepository
	assignments  rental.AssignmentRepository
	payments     payment.PaymentRepository
	transactions payment.TransactionRepository
	policy       rental.ArrearsPolicy
	logger       *zap.Logger
}

// NewArrearsService creates a new ArrearsService. An invalid policy falls
// back to the default one.
func NewArrearsService(cfg ArrearsServiceConfig) *ArrearsService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := cfg.Policy
	if err := policy.Validate(); err != nil {
		logger.Warn("Invalid arrears policy, using default", zap.Error(err))
		policy = rental.DefaultArrearsPolicy()
	}
	return &ArrearsService{
		tenants:      cfg.Tenants,
		assignments:  cfg.Assignments,
		payments:     cfg.Payments,
		transactions: cfg.Transactions,
		policy:       policy,
		logger:       logger.Named("arrears"),
	}
}

// Policy returns the policy in effect
func (s *ArrearsService) Policy() rental.ArrearsPolicy {
	return s.policy
}

// TenantStatuses computes the standing of every tenant visible in scope,
// ordered by name. A tenant is billed on its first active assignment; one
// without any is treated as monthly at a zero rate.
func (s *ArrearsService) TenantStatuses(ctx context.Context, today time.Time, scope Scope) ([]TenantStatusResponse, error) {
	filter := rental.TenantFilter{Filter: shared.DefaultFilter()}
	filter.PageSize = 0
	filter.OrderBy = "full_name"
	filter.OrderDir = "asc"
	tenants, _, err := s.tenants.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	all, err := s.assignments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	billed := make(map[uuid.UUID]*rental.Assignment, len(all))
	for i := range all {
		a := &all[i]
		if !a.IsActive() {
			continue
		}
		if _, ok := billed[a.TenantID]; !ok {
			billed[a.TenantID] = a
		}
	}

	lastPaid, err := s.payments.LatestApprovedDates(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TenantStatusResponse, 0, len(tenants))
	for i := range tenants {
		t := &tenants[i]
		a := billed[t.ID]
		if scope.OrganizerID != nil && (a == nil || !scope.allows(a.Location)) {
			continue
		}

		row := TenantStatusResponse{
			TenantID:     t.ID,
			FullName:     t.FullName,
			BusinessName: t.BusinessName,
			TenantStatus: string(t.Status),
			RateType:     string(rental.RateTypeMonthly),
			Rate:         decimal.Zero,
		}
		rateType := rental.RateTypeMonthly
		if a != nil {
			rateType = a.RateType
			locID := a.LocationID
			row.LocationID = &locID
			row.LocationName = a.LocationName()
			row.StallNumber = a.StallNumber
			row.RateType = string(a.RateType)
			row.Rate = a.Rate()
		}

		var last *time.Time
		if d, ok := lastPaid[t.ID]; ok {
			last = &d
		}
		res := rental.ComputeStatus(rateType, last, today, row.Rate, s.policy)

		row.LastPaymentDate = last
		row.Status = string(res.Status)
		row.DaysElapsed = res.DaysElapsed
		row.OverduePeriods = res.OverduePeriods
		row.ArrearsAmount = res.ArrearsAmount
		row.Label = res.Label
		out = append(out, row)
	}
	return out, nil
}

// Overdue returns the overdue tenants in scope, largest arrears first
func (s *ArrearsService) Overdue(ctx context.Context, today time.Time, scope Scope) ([]TenantStatusResponse, error) {
	statuses, err := s.TenantStatuses(ctx, today, scope)
	if err != nil {
		return nil, err
	}
	overdue := make([]TenantStatusResponse, 0)
	for _, st := range statuses {
		if st.Status == string(rental.ArrearsStatusOverdue) {
			overdue = append(overdue, st)
		}
	}
	sortByArrears(overdue)
	return overdue, nil
}

// DashboardOverview totals approved income, active tenants and arrears
func (s *ArrearsService) DashboardOverview(ctx context.Context, today time.Time, scope Scope) (*DashboardOverview, error) {
	statuses, err := s.TenantStatuses(ctx, today, scope)
	if err != nil {
		return nil, err
	}

	overview := &DashboardOverview{
		TotalIncome:  decimal.Zero,
		TotalArrears: decimal.Zero,
		Overdue:      make([]TenantStatusResponse, 0),
		GeneratedAt:  today,
	}

	filter := payment.TransactionFilter{Filter: shared.DefaultFilter()}
	if scope.OrganizerID != nil {
		// organizers see income from their own tenants only
		filter.TenantIDs = make([]uuid.UUID, 0, len(statuses))
		for _, st := range statuses {
			filter.TenantIDs = append(filter.TenantIDs, st.TenantID)
		}
	}
	summary, err := s.transactions.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}
	if summary != nil {
		overview.TotalIncome = summary.TotalIncome
	}

	if scope.OrganizerID == nil {
		if overview.ActiveTenants, err = s.tenants.CountByStatus(ctx, rental.TenantStatusActive); err != nil {
			return nil, err
		}
	}
	for _, st := range statuses {
		if scope.OrganizerID != nil && st.TenantStatus == string(rental.TenantStatusActive) {
			overview.ActiveTenants++
		}
		if st.Status != string(rental.ArrearsStatusOverdue) {
			continue
		}
		overview.Overdue = append(overview.Overdue, st)
		overview.TotalArrears = overview.TotalArrears.Add(st.ArrearsAmount)
	}
	sortByArrears(overview.Overdue)
	overview.OverdueCount = len(overview.Overdue)
	return overview, nil
}

// ExportArrears writes the overdue list to w as an xlsx workbook and
// returns the number of tenant rows written.
func (s *ArrearsService) ExportArrears(ctx context.Context, today time.Time, w io.Writer) (int, error) {
	overdue, err := s.Overdue(ctx, today, Unrestricted)
	if err != nil {
		return 0, err
	}

	rows := make([]report.ArrearsRow, len(overdue))
	total := decimal.Zero
	for i, st := range overdue {
		rows[i] = report.ArrearsRow{
			TenantName:   st.FullName,
			BusinessName: st.BusinessName,
			Location:     st.LocationName,
			StallNumber:  st.StallNumber,
			RateType:     st.RateType,
			LastPayment:  st.LastPaymentDate,
			DaysElapsed:  st.DaysElapsed,
			Label:        st.Label,
			Rate:         st.Rate,
			Arrears:      st.ArrearsAmount,
		}
		total = total.Add(st.ArrearsAmount)
	}

	if err := report.WriteArrearsXLSX(w, rows, today); err != nil {
		return 0, err
	}
	s.logger.Info("Arrears exported",
		zap.Int("tenants", len(rows)),
		zap.String("total", report.FormatRM(total)))
	return len(rows), nil
}

func sortByArrears(list []TenantStatusResponse) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ArrearsAmount.GreaterThan(list[j].ArrearsAmount)
	})
}
