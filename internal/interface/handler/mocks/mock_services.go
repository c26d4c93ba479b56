package mocks

import (
	"context"
	"encoding/json"
	"io"

	"flight-event-mock-service/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockFlightService is a mock implementation of FlightService
type MockFlightService struct {
	mock.Mock
}

func (m *MockFlightService) CreateFlight(ctx context.Context, flightUniqueID string, cfg *entity.MockConfiguration) (*entity.Flight, error) {
	args := m.Called(ctx, flightUniqueID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Flight), args.Error(1)
}

func (m *MockFlightService) ListFlights(ctx context.Context) ([]*entity.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Flight), args.Error(1)
}

func (m *MockFlightService) GetFlightDetail(ctx context.Context, flightID uint) (*entity.FlightDetail, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FlightDetail), args.Error(1)
}

func (m *MockFlightService) DeleteFlight(ctx context.Context, flightID uint) (*entity.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Flight), args.Error(1)
}

func (m *MockFlightService) SaveConfiguration(ctx context.Context, flightID uint, cfg *entity.MockConfiguration) (*entity.MockConfiguration, error) {
	args := m.Called(ctx, flightID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MockConfiguration), args.Error(1)
}

func (m *MockFlightService) ListTasks(ctx context.Context, flightID uint) ([]*entity.AdditionalTask, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AdditionalTask), args.Error(1)
}

func (m *MockFlightService) AddTask(ctx context.Context, flightID uint, task *entity.AdditionalTask) (*entity.AdditionalTask, error) {
	args := m.Called(ctx, flightID, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AdditionalTask), args.Error(1)
}

func (m *MockFlightService) DeleteTask(ctx context.Context, flightID, taskID uint) error {
	args := m.Called(ctx, flightID, taskID)
	return args.Error(0)
}

func (m *MockFlightService) ListEvents(ctx context.Context, flightID uint) ([]*entity.FlightEvent, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.FlightEvent), args.Error(1)
}

func (m *MockFlightService) AddEvent(ctx context.Context, flightID uint, input entity.EventInput) (*entity.FlightEvent, error) {
	args := m.Called(ctx, flightID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FlightEvent), args.Error(1)
}

func (m *MockFlightService) GetEvent(ctx context.Context, flightID, eventID uint) (*entity.FlightEvent, error) {
	args := m.Called(ctx, flightID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FlightEvent), args.Error(1)
}

func (m *MockFlightService) UpdateEvent(ctx context.Context, flightID, eventID uint, input entity.EventInput) (*entity.FlightEvent, error) {
	args := m.Called(ctx, flightID, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FlightEvent), args.Error(1)
}

func (m *MockFlightService) DeleteEvent(ctx context.Context, flightID, eventID uint) error {
	args := m.Called(ctx, flightID, eventID)
	return args.Error(0)
}

func (m *MockFlightService) DeleteAllEvents(ctx context.Context, flightID uint) (int64, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlightService) FindEventWithFID(ctx context.Context, flightID uint) (*entity.FlightEvent, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FlightEvent), args.Error(1)
}

func (m *MockFlightService) ImportEvents(ctx context.Context, flightID uint, r io.Reader) (int, error) {
	args := m.Called(ctx, flightID, r)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightService) FlightQuery(ctx context.Context, fnum, date string) (json.RawMessage, error) {
	args := m.Called(ctx, fnum, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) PlayEvent(ctx context.Context, flightID, eventID uint, isReplay bool) (*entity.PlayResult, error) {
	args := m.Called(ctx, flightID, eventID, isReplay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PlayResult), args.Error(1)
}

func (m *MockSessionService) StartSession(ctx context.Context, flightID uint) (*entity.SessionResult, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SessionResult), args.Error(1)
}

func (m *MockSessionService) ResetSession(ctx context.Context, flightID uint) (*entity.SessionResult, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SessionResult), args.Error(1)
}

func (m *MockSessionService) AbortSession(ctx context.Context, flightID uint) (*entity.SessionResult, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SessionResult), args.Error(1)
}

func (m *MockSessionService) RunCleanup(ctx context.Context, flightID uint, text string) (*entity.CleanupReport, error) {
	args := m.Called(ctx, flightID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CleanupReport), args.Error(1)
}

func (m *MockSessionService) History(ctx context.Context, flightID uint, limit int) ([]*entity.PlaybackLog, error) {
	args := m.Called(ctx, flightID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PlaybackLog), args.Error(1)
}

// MockToolService is a mock implementation of ToolService
type MockToolService struct {
	mock.Mock
}

func (m *MockToolService) Produce(ctx context.Context, req entity.PublishTemplate) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockToolService) Proxy(ctx context.Context, url string, headers map[string]string, payload json.RawMessage) (*entity.ProxyResult, error) {
	args := m.Called(ctx, url, headers, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProxyResult), args.Error(1)
}

func (m *MockToolService) Transform(ctx context.Context, hostAddress string, rawEvent json.RawMessage) (json.RawMessage, int, error) {
	args := m.Called(ctx, hostAddress, rawEvent)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(json.RawMessage), args.Int(1), args.Error(2)
}
