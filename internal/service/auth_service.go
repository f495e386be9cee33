package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gym_backend/internal/events"
	"gym_backend/internal/model"
	"gym_backend/internal/repository"
	"gym_backend/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxMemberIDAttempts bounds the retry loop that looks for an unused member id
const MaxMemberIDAttempts = 10

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtUtil     *utils.JWTUtil
	adminCode   string
	publisher   events.Publisher
	newMemberID func() (string, error)
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, adminCode string, publisher events.Publisher) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtUtil:     jwtUtil,
		adminCode:   adminCode,
		publisher:   publisher,
		newMemberID: utils.NewMemberID,
		now:         time.Now,
	}
}

// Signup creates a new account and returns it with a session token
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error) {
	role, err := normalizeRole(req.Role)
	if err != nil {
		return nil, "", err
	}

	if err := ensureEmailFree(ctx, s.userRepo, req.Email); err != nil {
		return nil, "", err
	}
	if role == model.RoleAdmin && !adminCodeMatches(s.adminCode, req.AdminCode) {
		return nil, "", ErrInvalidAdminCode
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	memberID, err := uniqueMemberID(ctx, s.userRepo, s.newMemberID)
	if err != nil {
		return nil, "", err
	}

	address := req.Address
	if address == "" {
		address = model.DefaultAddress
	}
	user := &model.User{
		ID:               uuid.New(),
		FullName:         req.FullName,
		Phone:            req.Phone,
		Email:            req.Email,
		PasswordHash:     hashedPassword,
		Role:             role,
		MemberID:         memberID,
		MembershipPlan:   model.PlanPendingSelection,
		MembershipStatus: model.StatusPending,
		Address:          address,
		CreatedAt:        s.now(),
	}
	if err := user.Validate(); err != nil {
		return nil, "", schemaError(err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", mapRepoError(err, "failed to create user in repository")
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		slog.ErrorContext(ctx, "user created but token generation failed", "user_id", user.ID, "error", err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:      events.MemberCreated,
		ActorID:   user.ID.String(),
		SubjectID: user.ID.String(),
		Data:      map[string]any{"memberId": user.MemberID, "role": user.Role, "source": "signup"},
	})
	return user, token, nil
}

// Login authenticates a user by email and password and returns a session token
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	if req.Role != "" && !strings.EqualFold(req.Role, user.Role) {
		return nil, "", ErrRoleMismatch
	}
	if user.Role == model.RoleAdmin && !adminCodeMatches(s.adminCode, req.AdminCode) {
		return nil, "", ErrInvalidAdminCode
	}

	loginAt := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &loginAt

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:      events.UserLogin,
		ActorID:   user.ID.String(),
		SubjectID: user.ID.String(),
		Data:      map[string]any{"role": user.Role},
	})
	return user, token, nil
}

// normalizeRole upper-cases a requested role, defaulting to MEMBER
func normalizeRole(raw string) (string, error) {
	role := strings.ToUpper(strings.TrimSpace(raw))
	switch role {
	case "":
		return model.RoleMember, nil
	case model.RoleMember, model.RoleAdmin:
		return role, nil
	default:
		return "", validationErr("Invalid role: %s", raw)
	}
}

func adminCodeMatches(expected, given string) bool {
	if expected == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}

// ensureEmailFree is an advisory pre-check; the unique constraint stays authoritative
func ensureEmailFree(ctx context.Context, repo repository.UserRepository, email string) error {
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return ErrDuplicateEmail
	}
	return nil
}

// uniqueMemberID draws candidates until one is unused, giving up after MaxMemberIDAttempts
func uniqueMemberID(ctx context.Context, repo repository.UserRepository, generate func() (string, error)) (string, error) {
	for attempt := 0; attempt < MaxMemberIDAttempts; attempt++ {
		candidate, err := generate()
		if err != nil {
			return "", err
		}
		exists, err := repo.MemberIDExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check member id: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrMemberIDExhausted
}

// schemaError turns validator failures into a ValidationError naming the first bad field
func schemaError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return validationErr("Validation failed: %s is invalid (%s)", fe.Field(), fe.Tag())
	}
	return validationErr("Validation failed: %v", err)
}
