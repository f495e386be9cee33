package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
)

// DB is the subset of pgxpool.Pool used by the repositories
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var tracer = otel.Tracer("gym_backend/repository")

const (
	uniqueViolationCode   = "23505"
	checkViolationCode    = "23514"
	numericOutOfRangeCode = "22003"
)

var (
	// ErrNotFound is returned by writes that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrConstraintViolation is returned when a value breaks a CHECK or column range constraint
	ErrConstraintViolation = errors.New("value violates a column constraint")
)

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// constraintFields maps unique constraint names to the API field they guard
var constraintFields = map[string]string{
	"users_email_key":             "email",
	"users_phone_key":             "phone",
	"users_member_id_key":         "memberId",
	"payments_transaction_id_key": "transactionId",
}

// UniqueViolationError is returned when a write hits a unique constraint
type UniqueViolationError struct {
	Field      string
	Constraint string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint %s violated on %s", e.Constraint, e.Field)
}

// mapWriteError converts unique violations to *UniqueViolationError, range and CHECK
// failures to ErrConstraintViolation, and wraps everything else
func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case uniqueViolationCode:
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ConstraintName
		}
		return &UniqueViolationError{Field: field, Constraint: pgErr.ConstraintName}
	case checkViolationCode, numericOutOfRangeCode:
		return fmt.Errorf("%s: %w: %s", op, ErrConstraintViolation, pgErr.Message)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s as a literal substring
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// queryBuilder accumulates WHERE conditions with positional arguments
type queryBuilder struct {
	conditions []string
	args       []any
}

func (qb *queryBuilder) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		qb.args = append(qb.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(qb.args))
	}
	qb.conditions = append(qb.conditions, fmt.Sprintf(format, placeholders...))
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(qb.conditions, " AND ")
}

// arg appends a value and returns its placeholder, for clauses outside WHERE
func (qb *queryBuilder) arg(v any) string {
	qb.args = append(qb.args, v)
	return fmt.Sprintf("$%d", len(qb.args))
}

// withTx runs fn inside a transaction, committing on success and rolling back on error
func withTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.WarnContext(ctx, "transaction rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
