// Code generated by mockery. Maintained by hand for this repository.

package mocks

import (
	"context"
	"net/http"

	"github.com/hookline/hookline/webhook"
	"github.com/stretchr/testify/mock"
)

// UseCase is a mock implementation of webhook.UseCase
type UseCase struct {
	mock.Mock
}

// NewUseCase creates a new mock instance bound to the test lifecycle
func NewUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *UseCase {
	m := &UseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UseCase) Ingest(ctx context.Context, providerName string, rawBody []byte, headers http.Header, remoteIP string) (webhook.Result, error) {
	args := m.Called(ctx, providerName, rawBody, headers, remoteIP)
	return args.Get(0).(webhook.Result), args.Error(1)
}
