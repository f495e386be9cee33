package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym_backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	MemberIDExists(ctx context.Context, memberID string) (bool, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindRoles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	DeleteMembers(ctx context.Context, ids []uuid.UUID) (int64, error)
	List(ctx context.Context, filters model.MemberFilters) ([]model.User, int64, error)
	CountMembers(ctx context.Context, createdSince *time.Time) (int64, error)
	CountExpiringMembers(ctx context.Context, from, to time.Time) (int64, error)
}

const userColumns = `id, full_name, phone, email, password_hash, role, member_id, membership_plan,
	membership_status, membership_expires_at, address, last_login, created_at`

type userRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID, &u.FullName, &u.Phone, &u.Email, &u.PasswordHash, &u.Role, &u.MemberID,
		&u.MembershipPlan, &u.MembershipStatus, &u.MembershipExpiresAt, &u.Address,
		&u.LastLogin, &u.CreatedAt,
	)
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	sql := `INSERT INTO users (` + userColumns + `)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, sql,
		u.ID, u.FullName, u.Phone, u.Email, u.PasswordHash, u.Role, u.MemberID,
		u.MembershipPlan, u.MembershipStatus, u.MembershipExpiresAt, u.Address,
		u.LastLogin, u.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err, "failed to create user")
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, column string, value any) (*model.User, error) {
	user := &model.User{}
	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	if err := scanUser(r.db.QueryRow(ctx, sql, value), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found is not an error here, the service layer decides
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", column, err)
	}
	return user, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByEmail retrieves a user by their email address
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

// FindByPhone retrieves a user by their phone number
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, "phone", phone)
}

// MemberIDExists reports whether a member identifier is already assigned
func (r *userRepository) MemberIDExists(ctx context.Context, memberID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE member_id = $1)`, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check member id: %w", err)
	}
	return exists, nil
}

// Update writes the mutable fields of a merged user record. member_id and created_at never change.
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	sql := `UPDATE users
            SET full_name = $1, phone = $2, email = $3, role = $4, membership_plan = $5,
                membership_status = $6, membership_expires_at = $7, address = $8
            WHERE id = $9`
	cmdTag, err := r.db.Exec(ctx, sql,
		u.FullName, u.Phone, u.Email, u.Role, u.MembershipPlan,
		u.MembershipStatus, u.MembershipExpiresAt, u.Address, u.ID,
	)
	if err != nil {
		return mapWriteError(err, "failed to update user")
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastLogin records a successful login
func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Delete removes a user and every payment they own in one transaction.
// It reports whether the user existed.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := tracer.Start(ctx, "users.delete", trace.WithAttributes(attribute.String("user.id", id.String())))
	defer span.End()

	var deleted bool
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE member_ref = $1`, id); err != nil {
			return fmt.Errorf("failed to delete payments of user: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		deleted = cmdTag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return deleted, nil
}

// FindRoles returns the role of every listed id that exists
func (r *userRepository) FindRoles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id, role FROM users WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer rows.Close()

	roles := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var role string
		if err := rows.Scan(&id, &role); err != nil {
			return nil, fmt.Errorf("failed to scan user role: %w", err)
		}
		roles[id] = role
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user roles: %w", err)
	}
	return roles, nil
}

// DeleteMembers removes the listed MEMBER accounts and their payments in one transaction.
// Ids belonging to admins are left untouched.
func (r *userRepository) DeleteMembers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	ctx, span := tracer.Start(ctx, "users.delete_members", trace.WithAttributes(attribute.Int("user.count", len(ids))))
	defer span.End()

	idArg := uuidStrings(ids)
	var deleted int64
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM payments WHERE member_ref IN
            (SELECT id FROM users WHERE id = ANY($1::uuid[]) AND role = $2)`, idArg, model.RoleMember)
		if err != nil {
			return fmt.Errorf("failed to delete payments of members: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = ANY($1::uuid[]) AND role = $2`, idArg, model.RoleMember)
		if err != nil {
			return fmt.Errorf("failed to delete members: %w", err)
		}
		deleted = cmdTag.RowsAffected()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return deleted, nil
}

// List retrieves one page of MEMBER accounts with optional filters, newest first
func (r *userRepository) List(ctx context.Context, filters model.MemberFilters) ([]model.User, int64, error) {
	ctx, span := tracer.Start(ctx, "users.list")
	defer span.End()

	qb := &queryBuilder{}
	qb.add("role = %s", model.RoleMember)
	if filters.MembershipPlan != nil && *filters.MembershipPlan != "" {
		qb.add("membership_plan = %s", *filters.MembershipPlan)
	}
	if filters.MembershipStatus != nil && *filters.MembershipStatus != "" {
		qb.add("membership_status = %s", *filters.MembershipStatus)
	}
	if filters.JoinDateStart != nil {
		qb.add("created_at >= %s", *filters.JoinDateStart)
	}
	if filters.JoinDateEnd != nil {
		qb.add("created_at < %s", *filters.JoinDateEnd)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := containsPattern(*filters.Search)
		qb.add("(full_name ILIKE %s OR email ILIKE %s OR member_id ILIKE %s)", pattern, pattern, pattern)
	}
	where := qb.where()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, qb.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	limit := qb.arg(filters.Limit)
	offset := qb.arg((filters.Page - 1) * filters.Limit)
	sql := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY created_at DESC LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := r.db.Query(ctx, sql, qb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := make([]model.User, 0, filters.Limit)
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, total, nil
}

// CountMembers counts MEMBER accounts, optionally only those created since a point in time
func (r *userRepository) CountMembers(ctx context.Context, createdSince *time.Time) (int64, error) {
	qb := &queryBuilder{}
	qb.add("role = %s", model.RoleMember)
	if createdSince != nil {
		qb.add("created_at >= %s", *createdSince)
	}

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+qb.where(), qb.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// CountExpiringMembers counts MEMBER accounts whose membership expires within [from, to]
func (r *userRepository) CountExpiringMembers(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	sql := `SELECT COUNT(*) FROM users
            WHERE role = $1 AND membership_expires_at >= $2 AND membership_expires_at <= $3`
	if err := r.db.QueryRow(ctx, sql, model.RoleMember, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expiring memberships: %w", err)
	}
	return count, nil
}
