package model

import (
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var memberIDPattern = regexp.MustCompile(`^M\d{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("member_id", func(fl validator.FieldLevel) bool {
		return IsValidMemberID(fl.Field().String())
	})
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		return HasCentPrecision(fl.Field().Float())
	})
	return v
}

// IsValidMemberID reports whether s is "M" followed by exactly six digits
func IsValidMemberID(s string) bool {
	return memberIDPattern.MatchString(s)
}

// HasCentPrecision reports whether v has at most two decimal places.
// NUMERIC(12, 2) would otherwise round extra digits silently.
func HasCentPrecision(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-3
}

// Validate checks a user record against the schema constraints
func (u *User) Validate() error {
	return validate.Struct(u)
}

// Validate checks a payment record against the schema constraints
func (p *Payment) Validate() error {
	schema := paymentSchema{
		Amount:      p.Amount,
		Status:      p.Status,
		PaymentType: p.PaymentType,
	}
	if p.MembershipPlan != nil {
		schema.MembershipPlan = *p.MembershipPlan
	}
	return validate.Struct(schema)
}

type paymentSchema struct {
	Amount         float64 `validate:"gte=0,lte=9999999999.99,cents"`
	Status         string  `validate:"required,oneof=completed pending failed refunded"`
	PaymentType    string  `validate:"required,oneof=membership supplement class other"`
	MembershipPlan string  `validate:"required_if=PaymentType membership"`
}
