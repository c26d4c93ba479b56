package entity

import "time"

// Flight is the aggregate root owning events, a configuration and, through the
// configuration, additional tasks.
type Flight struct {
	ID             uint
	FlightUniqueID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FlightDetail is the read model returned when inspecting a single flight
type FlightDetail struct {
	Flight          *Flight
	Configuration   *MockConfiguration
	Tasks           []*AdditionalTask
	Events          []*FlightEvent
	CurrentPriority int
	State           SessionState
}
