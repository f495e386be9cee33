package service

import (
	"errors"
	"fmt"

	"gym_backend/internal/repository"
)

var (
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrDuplicateField     = errors.New("duplicate value")
	ErrInvalidAdminCode   = errors.New("invalid admin code")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleMismatch       = errors.New("role does not match this account")
	ErrMemberNotFound     = errors.New("member not found")
	ErrForbidden          = errors.New("forbidden: user does not have permission for this action")
	ErrPasswordPolicy     = errors.New("new password must be at least 6 characters long")
	ErrMemberIDExhausted  = errors.New("could not generate a unique member id")
	ErrSelfDeletion       = errors.New("admins cannot delete their own account from the admin panel")
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// DuplicateFieldError reports a uniqueness conflict on a named field
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s is already in use", e.Field)
}

// Is lets errors.Is match ErrDuplicateField, and ErrDuplicateEmail for email conflicts
func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField || (target == ErrDuplicateEmail && e.Field == "email")
}

// ValidationError carries a user-facing validation message
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// mapRepoError converts storage uniqueness violations into DuplicateFieldError and
// column constraint failures into ValidationError
func mapRepoError(err error, op string) error {
	var uv *repository.UniqueViolationError
	if errors.As(err, &uv) {
		return &DuplicateFieldError{Field: uv.Field}
	}
	if errors.Is(err, repository.ErrConstraintViolation) {
		return validationErr("Validation failed: a value is outside the allowed range")
	}
	return fmt.Errorf("%s: %w", op, err)
}
