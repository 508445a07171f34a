package mocks

import (
	"context"
	"time"

	"github.com/rpggio/storyverse/internal/domain/activity"
	"github.com/stretchr/testify/mock"
)

// Gateway is a mock for repository.Gateway.
type Gateway struct {
	mock.Mock
}

func (m *Gateway) Call(ctx context.Context, op string) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

// KeyValue is a mock for repository.KeyValue.
type KeyValue struct {
	mock.Mock
}

func (m *KeyValue) Get(key string) (string, bool, error) {
	args := m.Called(key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *KeyValue) Set(key, value string) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *KeyValue) Remove(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) DailyCounts(ctx context.Context, ownerID string, since time.Time, kinds []activity.Kind) ([]activity.DayCount, error) {
	args := m.Called(ctx, ownerID, since, kinds)
	if list, ok := args.Get(0).([]activity.DayCount); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
