package repository

import (
	"errors"
	"strings"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"

	"gorm.io/gorm"
)

// Flights GORM model for database mapping
type Flights struct {
	ID             uint      `gorm:"primaryKey"`
	FlightUniqueID string    `gorm:"column:flight_unique_id;size:100;uniqueIndex;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "event_manager_flight"
}

// FlightEvents GORM model for database mapping
type FlightEvents struct {
	ID                uint      `gorm:"primaryKey"`
	FlightID          uint      `gorm:"column:flight_id;not null;index:idx_event_flight_priority,priority:1"`
	RawEvent          string    `gorm:"column:raw_event;type:text"`
	FlightState       string    `gorm:"column:flight_state;size:100"`
	Priority          int       `gorm:"column:priority;index:idx_event_flight_priority,priority:2"`
	IdentifiedChanges string    `gorm:"column:identified_changes;type:text"`
	IsPlayed          bool      `gorm:"column:is_played;not null"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name
func (FlightEvents) TableName() string {
	return "event_manager_flightevent"
}

// MockConfigurations GORM model for database mapping
type MockConfigurations struct {
	ID                 uint      `gorm:"primaryKey"`
	FlightID           uint      `gorm:"column:flight_id;uniqueIndex;not null"`
	CallbackURL        string    `gorm:"column:callback_url;size:500"`
	DelayBetweenEvents int       `gorm:"column:delay_between_events"`
	FastForward        bool      `gorm:"column:fast_forward;not null"`
	ManualMode         bool      `gorm:"column:manual_mode;not null"`
	CleanupBeforeStart bool      `gorm:"column:cleanup_before_start;not null"`
	CleanupQuery       string    `gorm:"column:cleanup_query;type:text"`
	HostAddress        string    `gorm:"column:host_address;size:255"`
	UseCustomDB        bool      `gorm:"column:use_custom_db;not null"`
	DBHost             string    `gorm:"column:db_host;size:255"`
	DBPort             string    `gorm:"column:db_port;size:10"`
	DBName             string    `gorm:"column:db_name;size:100"`
	DBUser             string    `gorm:"column:db_user;size:100"`
	DBPassword         string    `gorm:"column:db_password;size:255"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name
func (MockConfigurations) TableName() string {
	return "event_manager_mockconfiguration"
}

// AdditionalTasks GORM model for database mapping
type AdditionalTasks struct {
	ID              uint      `gorm:"primaryKey"`
	ConfigurationID uint      `gorm:"column:configuration_id;not null;index"`
	Name            string    `gorm:"column:name;size:100"`
	TaskType        string    `gorm:"column:task_type;size:20"`
	Template        string    `gorm:"column:template;type:text"`
	Order           int       `gorm:"column:order"`
	IsEnabled       bool      `gorm:"column:is_enabled;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name
func (AdditionalTasks) TableName() string {
	return "event_manager_additionaltask"
}

// Migrate creates or updates the tables of every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Flights{}, &FlightEvents{}, &MockConfigurations{}, &AdditionalTasks{})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

// containsPattern builds a LIKE pattern matching s anywhere, escaping wildcards
func containsPattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(s) + "%"
}

func toFlightEntity(m *Flights) *entity.Flight {
	return &entity.Flight{
		ID:             m.ID,
		FlightUniqueID: m.FlightUniqueID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toEventEntity(m *FlightEvents) *entity.FlightEvent {
	return &entity.FlightEvent{
		ID:                m.ID,
		FlightID:          m.FlightID,
		RawEvent:          m.RawEvent,
		FlightState:       m.FlightState,
		Priority:          m.Priority,
		IdentifiedChanges: m.IdentifiedChanges,
		IsPlayed:          m.IsPlayed,
		CreatedAt:         m.CreatedAt,
	}
}

func toEventModel(e *entity.FlightEvent) *FlightEvents {
	return &FlightEvents{
		ID:                e.ID,
		FlightID:          e.FlightID,
		RawEvent:          e.RawEvent,
		FlightState:       e.FlightState,
		Priority:          e.Priority,
		IdentifiedChanges: e.IdentifiedChanges,
		IsPlayed:          e.IsPlayed,
		CreatedAt:         e.CreatedAt,
	}
}

func toConfigurationEntity(m *MockConfigurations) *entity.MockConfiguration {
	return &entity.MockConfiguration{
		ID:                 m.ID,
		FlightID:           m.FlightID,
		CallbackURL:        m.CallbackURL,
		DelayBetweenEvents: m.DelayBetweenEvents,
		FastForward:        m.FastForward,
		ManualMode:         m.ManualMode,
		CleanupBeforeStart: m.CleanupBeforeStart,
		CleanupQuery:       m.CleanupQuery,
		HostAddress:        m.HostAddress,
		UseCustomDB:        m.UseCustomDB,
		DBHost:             m.DBHost,
		DBPort:             m.DBPort,
		DBName:             m.DBName,
		DBUser:             m.DBUser,
		DBPassword:         m.DBPassword,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toConfigurationModel(c *entity.MockConfiguration) *MockConfigurations {
	return &MockConfigurations{
		ID:                 c.ID,
		FlightID:           c.FlightID,
		CallbackURL:        c.CallbackURL,
		DelayBetweenEvents: c.DelayBetweenEvents,
		FastForward:        c.FastForward,
		ManualMode:         c.ManualMode,
		CleanupBeforeStart: c.CleanupBeforeStart,
		CleanupQuery:       c.CleanupQuery,
		HostAddress:        c.HostAddress,
		UseCustomDB:        c.UseCustomDB,
		DBHost:             c.DBHost,
		DBPort:             c.DBPort,
		DBName:             c.DBName,
		DBUser:             c.DBUser,
		DBPassword:         c.DBPassword,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toTaskEntity(m *AdditionalTasks) *entity.AdditionalTask {
	return &entity.AdditionalTask{
		ID:              m.ID,
		ConfigurationID: m.ConfigurationID,
		Name:            m.Name,
		Type:            entity.TaskType(m.TaskType),
		Template:        m.Template,
		Order:           m.Order,
		IsEnabled:       m.IsEnabled,
		CreatedAt:       m.CreatedAt,
	}
}
