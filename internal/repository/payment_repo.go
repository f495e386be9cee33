package repository

import (
	"context"
	"fmt"
	"time"

	"gym_backend/internal/model"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PaymentRepository defines operations for payment data
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	SumAmount(ctx context.Context, status string, from, to *time.Time) (float64, error)
	CountByStatus(ctx context.Context, status string, from, to *time.Time) (int64, error)
	RevenueSeries(ctx context.Context, from, to time.Time, bucket model.RevenueBucket) ([]model.RevenuePoint, error)
	FindPage(ctx context.Context, filters model.PaymentFilters) ([]model.Payment, int64, error)
}

const paymentColumns = `id, member_ref, member_id, member_name, amount::float8, payment_date, status,
	payment_type, membership_plan, transaction_id, description, created_at, updated_at`

var bucketFormats = map[model.RevenueBucket]string{
	model.BucketDay:   "YYYY-MM-DD",
	model.BucketMonth: "YYYY-MM",
	model.BucketYear:  "YYYY",
}

type paymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts a new payment into the database
func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	sql := `INSERT INTO payments (id, member_ref, member_id, member_name, amount, payment_date, status,
                payment_type, membership_plan, transaction_id, description, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, sql,
		p.ID, p.MemberRef, p.MemberID, p.MemberName, p.Amount, p.PaymentDate, p.Status,
		p.PaymentType, p.MembershipPlan, p.TransactionID, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "failed to create payment")
	}
	return nil
}

func statusRange(status string, from, to *time.Time) *queryBuilder {
	qb := &queryBuilder{}
	qb.add("status = %s", status)
	if from != nil {
		qb.add("payment_date >= %s", *from)
	}
	if to != nil {
		qb.add("payment_date <= %s", *to)
	}
	return qb
}

// SumAmount totals payments with the given status, optionally bounded by payment date
func (r *paymentRepository) SumAmount(ctx context.Context, status string, from, to *time.Time) (float64, error) {
	qb := statusRange(status, from, to)
	var total float64
	sql := `SELECT COALESCE(SUM(amount), 0)::float8 FROM payments` + qb.where()
	if err := r.db.QueryRow(ctx, sql, qb.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum %s payments: %w", status, err)
	}
	return total, nil
}

// CountByStatus counts payments with the given status, optionally bounded by payment date
func (r *paymentRepository) CountByStatus(ctx context.Context, status string, from, to *time.Time) (int64, error) {
	qb := statusRange(status, from, to)
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+qb.where(), qb.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s payments: %w", status, err)
	}
	return count, nil
}

// RevenueSeries groups completed revenue in [from, to] by day, month or year, ascending
func (r *paymentRepository) RevenueSeries(ctx context.Context, from, to time.Time, bucket model.RevenueBucket) ([]model.RevenuePoint, error) {
	format, ok := bucketFormats[bucket]
	if !ok {
		return nil, fmt.Errorf("unknown revenue bucket %q", bucket)
	}
	ctx, span := tracer.Start(ctx, "payments.revenue_series", trace.WithAttributes(attribute.String("bucket", string(bucket))))
	defer span.End()

	sql := `SELECT TO_CHAR(payment_date AT TIME ZONE 'UTC', '` + format + `') AS bucket,
                COALESCE(SUM(amount), 0)::float8
            FROM payments
            WHERE status = $1 AND payment_date >= $2 AND payment_date <= $3
            GROUP BY bucket
            ORDER BY bucket ASC`
	rows, err := r.db.Query(ctx, sql, model.PaymentStatusCompleted, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query revenue series: %w", err)
	}
	defer rows.Close()

	var points []model.RevenuePoint
	for rows.Next() {
		var p model.RevenuePoint
		if err := rows.Scan(&p.Key, &p.Total); err != nil {
			return nil, fmt.Errorf("failed to scan revenue point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue series: %w", err)
	}
	return points, nil
}

// FindPage retrieves one page of payments with optional filters, most recent first
func (r *paymentRepository) FindPage(ctx context.Context, filters model.PaymentFilters) ([]model.Payment, int64, error) {
	ctx, span := tracer.Start(ctx, "payments.find_page")
	defer span.End()

	qb := &queryBuilder{}
	if filters.Status != nil && *filters.Status != "" {
		qb.add("status = %s", *filters.Status)
	}
	if filters.PaymentType != nil && *filters.PaymentType != "" {
		qb.add("payment_type = %s", *filters.PaymentType)
	}
	if filters.StartDate != nil {
		qb.add("payment_date >= %s", *filters.StartDate)
	}
	if filters.EndDate != nil {
		qb.add("payment_date <= %s", *filters.EndDate)
	}
	if filters.MinAmount != nil {
		qb.add("amount >= %s", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		qb.add("amount <= %s", *filters.MaxAmount)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := containsPattern(*filters.Search)
		qb.add("(member_name ILIKE %s OR transaction_id ILIKE %s)", pattern, pattern)
	}
	where := qb.where()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+where, qb.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	limit := qb.arg(filters.Limit)
	offset := qb.arg((filters.Page - 1) * filters.Limit)
	sql := `SELECT ` + paymentColumns + ` FROM payments` + where +
		` ORDER BY payment_date DESC, created_at DESC LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := r.db.Query(ctx, sql, qb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]model.Payment, 0, filters.Limit)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(
			&p.ID, &p.MemberRef, &p.MemberID, &p.MemberName, &p.Amount, &p.PaymentDate, &p.Status,
			&p.PaymentType, &p.MembershipPlan, &p.TransactionID, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, total, nil
}
