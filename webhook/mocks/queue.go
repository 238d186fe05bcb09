// Code generated by mockery. Maintained by hand for this repository.

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// Enqueuer is a mock implementation of queue.Enqueuer
type Enqueuer struct {
	mock.Mock
}

// NewEnqueuer creates a new mock instance bound to the test lifecycle
func NewEnqueuer(t interface {
	mock.TestingT
	Cleanup(func())
}) *Enqueuer {
	m := &Enqueuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Enqueuer) Enqueue(ctx context.Context, webhookID string) error {
	return m.Called(ctx, webhookID).Error(0)
}

func (m *Enqueuer) EnqueueAfter(ctx context.Context, webhookID string, delay time.Duration) error {
	return m.Called(ctx, webhookID, delay).Error(0)
}
