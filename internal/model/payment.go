package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

const (
	PaymentTypeMembership = "membership"
	PaymentTypeSupplement = "supplement"
	PaymentTypeClass      = "class"
	PaymentTypeOther      = "other"
)

// Payment represents a monetary transaction attributed to a member.
// MemberID and MemberName are snapshots taken when the payment is recorded.
type Payment struct {
	ID             uuid.UUID `json:"_id"`
	MemberRef      uuid.UUID `json:"member"`
	MemberID       string    `json:"memberId"`
	MemberName     string    `json:"memberName"`
	Amount         float64   `json:"amount"`
	PaymentDate    time.Time `json:"paymentDate"`
	Status         string    `json:"status"`
	PaymentType    string    `json:"paymentType"`
	MembershipPlan *string   `json:"membershipPlan,omitempty"`
	TransactionID  *string   `json:"transactionId,omitempty"` // Unique when present
	Description    *string   `json:"description,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RecordPaymentRequest is used by a member to record their own payment
type RecordPaymentRequest struct {
	Member         string     `json:"member" binding:"required"`
	MemberID       string     `json:"memberId" binding:"required"`
	MemberName     string     `json:"memberName" binding:"required"`
	Amount         *float64   `json:"amount" binding:"required,gte=0,lte=9999999999.99"`
	PaymentType    string     `json:"paymentType" binding:"required,oneof=membership supplement class other"`
	MembershipPlan *string    `json:"membershipPlan"`
	Status         string     `json:"status" binding:"omitempty,oneof=completed pending failed refunded"`
	PaymentDate    *time.Time `json:"paymentDate"`
	TransactionID  *string    `json:"transactionId"`
	Description    *string    `json:"description"`
}

// PaymentFilters contains filter parameters for the paginated transaction list
type PaymentFilters struct {
	Page        int
	Limit       int
	Status      *string
	PaymentType *string
	StartDate   *time.Time // Inclusive, start of day
	EndDate     *time.Time // Inclusive, end of day
	MinAmount   *float64
	MaxAmount   *float64
	Search      *string
}

// PaymentPage is one page of the transaction list
type PaymentPage struct {
	Transactions      []Payment `json:"transactions"`
	TotalTransactions int64     `json:"totalTransactions"`
	TotalPages        int       `json:"totalPages"`
	CurrentPage       int       `json:"currentPage"`
}

// RevenueBucket selects the grouping granularity of a revenue series
type RevenueBucket string

const (
	BucketDay   RevenueBucket = "day"
	BucketMonth RevenueBucket = "month"
	BucketYear  RevenueBucket = "year"
)

// RevenuePoint is the completed revenue for one bucket of a series
type RevenuePoint struct {
	Key   string
	Total float64
}
