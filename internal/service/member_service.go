package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gym_backend/internal/events"
	"gym_backend/internal/model"
	"gym_backend/internal/repository"
	"gym_backend/internal/utils"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// FilterAll disables a list filter
	FilterAll = "All"
)

// MemberService covers profile self-service and admin member management
type MemberService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, req model.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	UpdateMembership(ctx context.Context, id uuid.UUID, plan string) (*model.User, error)

	// Admin methods
	GetMember(ctx context.Context, id uuid.UUID) (*model.User, error)
	CreateMember(ctx context.Context, actorID uuid.UUID, req model.AdminCreateMemberRequest) (*model.User, error)
	UpdateMember(ctx context.Context, actorID, id uuid.UUID, req model.AdminUpdateMemberRequest) (*model.User, error)
	DeleteMember(ctx context.Context, actorID, id uuid.UUID) error
	BulkDeleteMembers(ctx context.Context, actorID uuid.UUID, ids []string) (int64, error)
	ListMembers(ctx context.Context, filters model.MemberFilters) (*model.MemberPage, error)
}

type memberService struct {
	userRepo    repository.UserRepository
	adminCode   string
	publisher   events.Publisher
	newMemberID func() (string, error)
	now         func() time.Time
}

// NewMemberService creates a new MemberService
func NewMemberService(userRepo repository.UserRepository, adminCode string, publisher events.Publisher) MemberService {
	return &memberService{
		userRepo:    userRepo,
		adminCode:   adminCode,
		publisher:   publisher,
		newMemberID: utils.NewMemberID,
		now:         time.Now,
	}
}

func (s *memberService) mustFind(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrMemberNotFound
	}
	return user, nil
}

// save validates the merged record and writes it back
func (s *memberService) save(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return schemaError(err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return mapRepoError(err, "failed to update user")
	}
	return nil
}

// ensureUnique rejects a value already held by a different account
func (s *memberService) ensureUnique(ctx context.Context, id uuid.UUID, field string, lookup func(context.Context, string) (*model.User, error), value string) error {
	other, err := lookup(ctx, value)
	if err != nil {
		return fmt.Errorf("failed to check %s uniqueness: %w", field, err)
	}
	if other != nil && other.ID != id {
		return &DuplicateFieldError{Field: field}
	}
	return nil
}

func (s *memberService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.mustFind(ctx, id)
}

func (s *memberService) GetMember(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.mustFind(ctx, id)
}

// UpdateProfile applies the caller's own fullName, phone and address changes
func (s *memberService) UpdateProfile(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil && *req.Phone != user.Phone {
		if err := s.ensureUnique(ctx, id, "phone", s.userRepo.FindByPhone, *req.Phone); err != nil {
			return nil, err
		}
		user.Phone = *req.Phone
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a hash of the new one
func (s *memberService) ChangePassword(ctx context.Context, id uuid.UUID, req model.ChangePasswordRequest) error {
	if len(req.NewPassword) < MinPasswordLength {
		return ErrPasswordPolicy
	}
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, id, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

func (s *memberService) deleteWithPayments(ctx context.Context, actorID, id uuid.UUID) error {
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return ErrMemberNotFound
	}
	events.Emit(ctx, s.publisher, events.Event{
		Type:      events.MemberDeleted,
		ActorID:   actorID.String(),
		SubjectID: id.String(),
	})
	return nil
}

// DeleteAccount removes the caller's own account and payments
func (s *memberService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return s.deleteWithPayments(ctx, id, id)
}

// DeleteMember removes another account and its payments
func (s *memberService) DeleteMember(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrSelfDeletion
	}
	return s.deleteWithPayments(ctx, actorID, id)
}

// BulkDeleteMembers deletes the listed MEMBER accounts. The actor and admin accounts are skipped.
func (s *memberService) BulkDeleteMembers(ctx context.Context, actorID uuid.UUID, rawIDs []string) (int64, error) {
	if len(rawIDs) == 0 {
		return 0, validationErr("No member IDs provided for deletion")
	}

	seen := make(map[uuid.UUID]struct{}, len(rawIDs))
	ids := make([]uuid.UUID, 0, len(rawIDs))
	listedSelf := false
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return 0, validationErr("Invalid Member ID format: %s", raw)
		}
		if id == actorID {
			listedSelf = true
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 && listedSelf {
		return 0, ErrSelfDeletion
	}

	roles, err := s.userRepo.FindRoles(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to look up members: %w", err)
	}
	members := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if roles[id] == model.RoleMember {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return 0, ErrMemberNotFound
	}

	count, err := s.userRepo.DeleteMembers(ctx, members)
	if err != nil {
		return 0, fmt.Errorf("failed to delete members: %w", err)
	}
	if count == 0 {
		return 0, ErrMemberNotFound
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:    events.MemberBulkDeleted,
		ActorID: actorID.String(),
		Data:    map[string]any{"count": count},
	})
	return count, nil
}

// CreateMember registers an account on behalf of an admin
func (s *memberService) CreateMember(ctx context.Context, actorID uuid.UUID, req model.AdminCreateMemberRequest) (*model.User, error) {
	role, err := normalizeRole(req.Role)
	if err != nil {
		return nil, err
	}
	if err := ensureEmailFree(ctx, s.userRepo, req.Email); err != nil {
		return nil, err
	}
	if role == model.RoleAdmin && !adminCodeMatches(s.adminCode, req.AdminCode) {
		return nil, ErrInvalidAdminCode
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	memberID, err := uniqueMemberID(ctx, s.userRepo, s.newMemberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:                  uuid.New(),
		FullName:            req.FullName,
		Phone:               req.Phone,
		Email:               req.Email,
		PasswordHash:        hashedPassword,
		Role:                role,
		MemberID:            memberID,
		MembershipPlan:      model.PlanNone,
		MembershipStatus:    model.StatusPending,
		MembershipExpiresAt: req.MembershipExpiresAt,
		Address:             req.Address,
		CreatedAt:           now,
	}
	if user.Address == "" {
		user.Address = model.DefaultAddress
	}
	if req.MembershipPlan != "" {
		user.MembershipPlan = req.MembershipPlan
		if req.MembershipStatus == "" && req.MembershipExpiresAt == nil {
			change := model.DeriveMembership(req.MembershipPlan, now)
			user.MembershipStatus = change.Status
			user.MembershipExpiresAt = change.ExpiresAt
		}
	}
	if req.MembershipStatus != "" {
		user.MembershipStatus = req.MembershipStatus
	}

	if err := user.Validate(); err != nil {
		return nil, schemaError(err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err, "failed to create member")
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:      events.MemberCreated,
		ActorID:   actorID.String(),
		SubjectID: user.ID.String(),
		Data:      map[string]any{"memberId": user.MemberID, "role": user.Role, "source": "admin"},
	})
	return user, nil
}

// UpdateMember merges an admin's changes into any account. Admins cannot change their own role.
func (s *memberService) UpdateMember(ctx context.Context, actorID, id uuid.UUID, req model.AdminUpdateMemberRequest) (*model.User, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if err := s.ensureUnique(ctx, id, "email", s.userRepo.FindByEmail, *req.Email); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Phone != nil && *req.Phone != user.Phone {
		if err := s.ensureUnique(ctx, id, "phone", s.userRepo.FindByPhone, *req.Phone); err != nil {
			return nil, err
		}
		user.Phone = *req.Phone
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.MembershipPlan != nil {
		user.MembershipPlan = *req.MembershipPlan
	}
	if req.MembershipStatus != nil {
		user.MembershipStatus = *req.MembershipStatus
	}
	if req.MembershipExpiresAt.Set {
		user.MembershipExpiresAt = req.MembershipExpiresAt.Time
	}
	if req.Role != nil && actorID != id {
		user.Role = strings.ToUpper(*req.Role)
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMembership selects a plan for the caller and derives status and expiry from it
func (s *memberService) UpdateMembership(ctx context.Context, id uuid.UUID, plan string) (*model.User, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	change := model.DeriveMembership(plan, s.now())
	user.MembershipPlan = change.Plan
	user.MembershipStatus = change.Status
	user.MembershipExpiresAt = change.ExpiresAt

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListMembers returns one page of MEMBER accounts
func (s *memberService) ListMembers(ctx context.Context, filters model.MemberFilters) (*model.MemberPage, error) {
	filters.Page, filters.Limit = normalizePaging(filters.Page, filters.Limit)
	filters.MembershipPlan = dropAll(filters.MembershipPlan)
	filters.MembershipStatus = dropAll(filters.MembershipStatus)

	members, total, err := s.userRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return &model.MemberPage{
		Members:      members,
		CurrentPage:  filters.Page,
		TotalPages:   totalPages(total, filters.Limit),
		TotalMembers: total,
	}, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// OFFSET (page-1)*limit must stay within int32
	if maxPage := math.MaxInt32/limit + 1; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func dropAll(v *string) *string {
	if v == nil || *v == "" || *v == FilterAll {
		return nil
	}
	return v
}
