package mocks

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockOutboundClient is a mock implementation of OutboundClient
type MockOutboundClient struct {
	mock.Mock
}

func (m *MockOutboundClient) Post(ctx context.Context, req *entity.OutboundRequest) (*entity.OutboundResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OutboundResponse), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, msg *entity.PublishMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
