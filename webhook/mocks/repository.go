// Code generated by mockery. Maintained by hand for this repository.

package mocks

import (
	"context"

	"github.com/hookline/hookline/webhook"
	"github.com/stretchr/testify/mock"
)

// Repository is a mock implementation of webhook.Repository
type Repository struct {
	mock.Mock
}

// NewRepository creates a new mock instance bound to the test lifecycle
func NewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *Repository {
	m := &Repository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Repository) Get(ctx context.Context, id string) (webhook.Webhook, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(webhook.Webhook), args.Error(1)
}

func (m *Repository) Exists(ctx context.Context, provider, providerEventID string) (bool, error) {
	args := m.Called(ctx, provider, providerEventID)
	return args.Bool(0), args.Error(1)
}

func (m *Repository) List(ctx context.Context, filter webhook.Filter) ([]webhook.Webhook, int, error) {
	args := m.Called(ctx, filter)
	var webhooks []webhook.Webhook
	if args.Get(0) != nil {
		webhooks = args.Get(0).([]webhook.Webhook)
	}
	return webhooks, args.Int(1), args.Error(2)
}

func (m *Repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	var counts map[string]int64
	if args.Get(0) != nil {
		counts = args.Get(0).(map[string]int64)
	}
	return counts, args.Error(1)
}

func (m *Repository) Create(ctx context.Context, wh webhook.Webhook) (string, error) {
	args := m.Called(ctx, wh)
	return args.String(0), args.Error(1)
}

func (m *Repository) Claim(ctx context.Context, id string) (webhook.Webhook, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(webhook.Webhook), args.Bool(1), args.Error(2)
}

func (m *Repository) MarkProcessed(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *Repository) MarkUnhandled(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *Repository) MarkRetrying(ctx context.Context, id string, procErr webhook.ProcessingError) error {
	return m.Called(ctx, id, procErr).Error(0)
}

func (m *Repository) MarkFailed(ctx context.Context, id string, procErr webhook.ProcessingError) error {
	return m.Called(ctx, id, procErr).Error(0)
}

func (m *Repository) Close() error {
	return m.Called().Error(0)
}
