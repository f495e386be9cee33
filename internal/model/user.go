package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusExpired  = "Expired"
	StatusPending  = "Pending"
)

const (
	DefaultAddress       = "Not provided"
	PlanPendingSelection = "Pending Selection"
	PlanNone             = "None"
)

// User represents a gym member or admin account
type User struct {
	ID                  uuid.UUID  `json:"_id"`
	FullName            string     `json:"fullName" validate:"required"`
	Phone               string     `json:"phone" validate:"required"`
	Email               string     `json:"email" validate:"required,email"`
	PasswordHash        string     `json:"-" validate:"required"` // Never exposed
	Role                string     `json:"role" validate:"required,oneof=MEMBER ADMIN"`
	MemberID            string     `json:"memberId" validate:"required,member_id"`
	MembershipPlan      string     `json:"membershipPlan"`
	MembershipStatus    string     `json:"membershipStatus" validate:"required,oneof=Active Inactive Expired Pending"`
	MembershipExpiresAt *time.Time `json:"membershipExpiresAt"`
	Address             string     `json:"address"`
	LastLogin           *time.Time `json:"lastLogin"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// UserSummary is the subset of user fields returned on signup and login
type UserSummary struct {
	UserID   uuid.UUID `json:"userId"`
	Role     string    `json:"role"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	MemberID string    `json:"memberId"`
}

// Summary builds the signup/login view of the user
func (u *User) Summary() UserSummary {
	return UserSummary{
		UserID:   u.ID,
		Role:     u.Role,
		Email:    u.Email,
		FullName: u.FullName,
		MemberID: u.MemberID,
	}
}

// SignupRequest is used for self-service registration
type SignupRequest struct {
	FullName  string `json:"fullName" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role"` // Any case, normalised by the service
	AdminCode string `json:"adminCode"`
	Address   string `json:"address"`
}

// LoginRequest is used for authentication. Role is optional and, when set, must match the stored role.
type LoginRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
	AdminCode string `json:"adminCode"`
}

// AdminCreateMemberRequest is used by admins to create accounts
type AdminCreateMemberRequest struct {
	FullName            string     `json:"fullName" binding:"required"`
	Phone               string     `json:"phone" binding:"required"`
	Email               string     `json:"email" binding:"required,email"`
	Password            string     `json:"password" binding:"required,min=6"`
	Role                string     `json:"role"` // Any case, normalised by the service
	AdminCode           string     `json:"adminCode"`
	Address             string     `json:"address"`
	MembershipPlan      string     `json:"membershipPlan"`
	MembershipStatus    string     `json:"membershipStatus" binding:"omitempty,oneof=Active Inactive Expired Pending"`
	MembershipExpiresAt *time.Time `json:"membershipExpiresAt"`
}

// UpdateProfileRequest holds the fields a user may change on their own profile
type UpdateProfileRequest struct {
	FullName *string `json:"fullName,omitempty"` // Pointers to allow partial updates
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// AdminUpdateMemberRequest holds the fields an admin may change on any account
type AdminUpdateMemberRequest struct {
	FullName            *string      `json:"fullName,omitempty"`
	Email               *string      `json:"email,omitempty"`
	Phone               *string      `json:"phone,omitempty"`
	Address             *string      `json:"address,omitempty"`
	MembershipPlan      *string      `json:"membershipPlan,omitempty"`
	MembershipStatus    *string      `json:"membershipStatus,omitempty"`
	MembershipExpiresAt NullableTime `json:"membershipExpiresAt"`
	Role                *string      `json:"role,omitempty"`
}

// ChangePasswordRequest is used to rotate the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// UpdateMembershipRequest selects a membership plan for the caller
type UpdateMembershipRequest struct {
	MembershipPlan   string `json:"membershipPlan"`
	MembershipStatus string `json:"membershipStatus"` // Accepted for compatibility, the plan decides the status
}

// BulkDeleteRequest lists account ids to delete
type BulkDeleteRequest struct {
	MemberIDs []string `json:"memberIds"`
}

// MemberFilters contains filter parameters for the admin member list
type MemberFilters struct {
	Page             int
	Limit            int
	MembershipPlan   *string
	MembershipStatus *string
	JoinDateStart    *time.Time
	JoinDateEnd      *time.Time // Exclusive upper bound, already moved to the start of the following day
	Search           *string
}

// MemberPage is one page of the admin member list
type MemberPage struct {
	Members      []User `json:"members"`
	CurrentPage  int    `json:"currentPage"`
	TotalPages   int    `json:"totalPages"`
	TotalMembers int64  `json:"totalMembers"`
}
