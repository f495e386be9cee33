package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gym_backend/internal/model"
	"gym_backend/internal/repository"
)

// Timeframes accepted by the revenue overview
const (
	Timeframe30Days = "30days"
	Timeframe90Days = "90days"
	Timeframe1Year  = "1year"
	TimeframeAll    = "all"
)

const statsWindow = 30 * 24 * time.Hour

// DashboardService aggregates member and payment figures for admins. Nothing is cached.
type DashboardService interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
	BillingSummary(ctx context.Context) (*model.BillingSummary, error)
	RevenueOverview(ctx context.Context, timeframe string) (*model.RevenueOverview, error)
	Transactions(ctx context.Context, filters model.PaymentFilters) (*model.PaymentPage, error)
}

type dashboardService struct {
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(userRepo repository.UserRepository, paymentRepo repository.PaymentRepository) DashboardService {
	return &dashboardService{userRepo: userRepo, paymentRepo: paymentRepo, now: time.Now}
}

func (s *dashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	now := s.now().UTC()

	total, err := s.userRepo.CountMembers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	since := now.Add(-statsWindow)
	newMembers, err := s.userRepo.CountMembers(ctx, &since)
	if err != nil {
		return nil, fmt.Errorf("failed to count new members: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
	revenue, err := s.paymentRepo.SumAmount(ctx, model.PaymentStatusCompleted, &monthStart, &monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}

	expiring, err := s.userRepo.CountExpiringMembers(ctx, now, now.Add(statsWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count expiring memberships: %w", err)
	}

	return &model.DashboardStats{
		TotalMembers:        total,
		NewMembers:          newMembers,
		MonthlyRevenue:      formatAmount(revenue),
		ExpiringMemberships: expiring,
	}, nil
}

func (s *dashboardService) BillingSummary(ctx context.Context) (*model.BillingSummary, error) {
	totalRevenue, err := s.paymentRepo.SumAmount(ctx, model.PaymentStatusCompleted, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum total revenue: %w", err)
	}
	pending, err := s.paymentRepo.SumAmount(ctx, model.PaymentStatusPending, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum pending payments: %w", err)
	}

	from, to := dateRange(Timeframe30Days, s.now().UTC())
	recent, err := s.paymentRepo.CountByStatus(ctx, model.PaymentStatusCompleted, &from, &to)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent transactions: %w", err)
	}
	failed, err := s.paymentRepo.CountByStatus(ctx, model.PaymentStatusFailed, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed payments: %w", err)
	}

	// Period-over-period change is not tracked yet, so Change stays 0
	return &model.BillingSummary{
		TotalRevenue:       model.SummaryValue{Value: totalRevenue},
		PendingPayments:    model.SummaryValue{Value: pending},
		RecentTransactions: model.SummaryValue{Value: float64(recent)},
		FailedPayments:     model.SummaryValue{Value: float64(failed)},
	}, nil
}

func (s *dashboardService) RevenueOverview(ctx context.Context, timeframe string) (*model.RevenueOverview, error) {
	timeframe = canonicalTimeframe(timeframe)
	from, to := dateRange(timeframe, s.now().UTC())

	points, err := s.paymentRepo.RevenueSeries(ctx, from, to, bucketFor(timeframe))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s revenue series: %w", timeframe, err)
	}

	overview := &model.RevenueOverview{
		Labels:     make([]string, 0, len(points)),
		SeriesData: make([]string, 0, len(points)),
	}
	for _, p := range points {
		overview.Labels = append(overview.Labels, p.Key)
		overview.SeriesData = append(overview.SeriesData, formatAmount(p.Total))
	}
	return overview, nil
}

func (s *dashboardService) Transactions(ctx context.Context, filters model.PaymentFilters) (*model.PaymentPage, error) {
	filters.Page, filters.Limit = normalizePaging(filters.Page, filters.Limit)
	filters.Status = dropAll(filters.Status)
	filters.PaymentType = dropAll(filters.PaymentType)

	payments, total, err := s.paymentRepo.FindPage(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &model.PaymentPage{
		Transactions:      payments,
		TotalTransactions: total,
		TotalPages:        totalPages(total, filters.Limit),
		CurrentPage:       filters.Page,
	}, nil
}

// canonicalTimeframe maps display labels to timeframe keys. Empty defaults to 30 days, unknown to all time.
func canonicalTimeframe(tf string) string {
	switch tf {
	case "", Timeframe30Days, "Last 30 Days":
		return Timeframe30Days
	case Timeframe90Days, "Last 90 Days":
		return Timeframe90Days
	case Timeframe1Year, "Last 1 Year":
		return Timeframe1Year
	default:
		return TimeframeAll
	}
}

func bucketFor(timeframe string) model.RevenueBucket {
	switch timeframe {
	case Timeframe30Days, Timeframe90Days:
		return model.BucketDay
	case Timeframe1Year:
		return model.BucketMonth
	default:
		return model.BucketYear
	}
}

// dateRange returns [start of day N days back, end of today]. All time starts at the Unix epoch.
func dateRange(timeframe string, now time.Time) (time.Time, time.Time) {
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Millisecond*999), now.Location())
	var start time.Time
	switch timeframe {
	case Timeframe30Days:
		start = now.AddDate(0, 0, -30)
	case Timeframe90Days:
		start = now.AddDate(0, 0, -90)
	case Timeframe1Year:
		start = now.AddDate(-1, 0, 0)
	default:
		return time.Unix(0, 0).UTC(), now
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())
	return start, endOfDay
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
