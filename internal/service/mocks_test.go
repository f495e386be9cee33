package service

import (
	"context"
	"time"

	"gym_backend/internal/events"
	"gym_backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) findResult(args mock.Arguments) (*model.User, error) {
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.findResult(m.Called(ctx, id))
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findResult(m.Called(ctx, email))
}

func (m *mockUserRepo) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return m.findResult(m.Called(ctx, phone))
}

func (m *mockUserRepo) MemberIDExists(ctx context.Context, memberID string) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) FindRoles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	args := m.Called(ctx, ids)
	roles, _ := args.Get(0).(map[uuid.UUID]string)
	return roles, args.Error(1)
}

func (m *mockUserRepo) DeleteMembers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, filters model.MemberFilters) ([]model.User, int64, error) {
	args := m.Called(ctx, filters)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) CountMembers(ctx context.Context, createdSince *time.Time) (int64, error) {
	args := m.Called(ctx, createdSince)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) CountExpiringMembers(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockPaymentRepo) SumAmount(ctx context.Context, status string, from, to *time.Time) (float64, error) {
	args := m.Called(ctx, status, from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockPaymentRepo) CountByStatus(ctx context.Context, status string, from, to *time.Time) (int64, error) {
	args := m.Called(ctx, status, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPaymentRepo) RevenueSeries(ctx context.Context, from, to time.Time, bucket model.RevenueBucket) ([]model.RevenuePoint, error) {
	args := m.Called(ctx, from, to, bucket)
	points, _ := args.Get(0).([]model.RevenuePoint)
	return points, args.Error(1)
}

func (m *mockPaymentRepo) FindPage(ctx context.Context, filters model.PaymentFilters) ([]model.Payment, int64, error) {
	args := m.Called(ctx, filters)
	payments, _ := args.Get(0).([]model.Payment)
	return payments, args.Get(1).(int64), args.Error(2)
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sequence(ids ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}
