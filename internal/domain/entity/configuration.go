package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDelayBetweenEvents = 5
	DefaultCustomDBPort       = "5432"

	// DefaultCleanupQuery runs when a configuration carries no cleanup text
	DefaultCleanupQuery = "DELETE FROM flight_status WHERE flight_unique_id = '{flight_unique_id}'"
)

var hostPattern = regexp.MustCompile(`^[A-Za-z0-9._\-:\[\]%]+$`)

// MockConfiguration controls how a flight is played back
type MockConfiguration struct {
	ID                 uint
	FlightID           uint
	CallbackURL        string
	DelayBetweenEvents int
	FastForward        bool
	ManualMode         bool
	CleanupBeforeStart bool
	CleanupQuery       string
	HostAddress        string
	UseCustomDB        bool
	DBHost             string
	DBPort             string
	DBName             string
	DBUser             string
	DBPassword         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewMockConfiguration returns a configuration with the documented defaults
func NewMockConfiguration(flightID uint) *MockConfiguration {
	return &MockConfiguration{
		FlightID:           flightID,
		DelayBetweenEvents: DefaultDelayBetweenEvents,
		CleanupBeforeStart: true,
		DBPort:             DefaultCustomDBPort,
	}
}

// Delay is the pause applied after each automatic play
func (c *MockConfiguration) Delay() time.Duration {
	if c.DelayBetweenEvents <= 0 {
		return 0
	}
	return time.Duration(c.DelayBetweenEvents) * time.Second
}

// EffectiveCleanupQuery falls back to the default statement
func (c *MockConfiguration) EffectiveCleanupQuery() string {
	if strings.TrimSpace(c.CleanupQuery) == "" {
		return DefaultCleanupQuery
	}
	return c.CleanupQuery
}

// HasCustomDatabase is true only when the flag is set and every connection
// field except the port is present.
func (c *MockConfiguration) HasCustomDatabase() bool {
	return c.UseCustomDB && c.DBHost != "" && c.DBName != "" && c.DBUser != "" && c.DBPassword != ""
}

// CustomDatabase returns the connection parameters of the custom target
func (c *MockConfiguration) CustomDatabase() CustomDatabase {
	port := c.DBPort
	if strings.TrimSpace(port) == "" {
		port = DefaultCustomDBPort
	}
	return CustomDatabase{
		Host:     c.DBHost,
		Port:     port,
		Name:     c.DBName,
		User:     c.DBUser,
		Password: c.DBPassword,
	}
}

// CustomDatabase holds credentials for a user supplied cleanup target
type CustomDatabase struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// PortNumber parses the port, rejecting values outside 1..65535
func (d CustomDatabase) PortNumber() (uint16, error) {
	port, err := strconv.Atoi(strings.TrimSpace(d.Port))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid database port %q", d.Port)
	}
	return uint16(port), nil
}

// Validate rejects parameters that cannot form a connection
func (d CustomDatabase) Validate() error {
	if !hostPattern.MatchString(d.Host) {
		return fmt.Errorf("invalid database host %q", d.Host)
	}
	if _, err := d.PortNumber(); err != nil {
		return err
	}
	for field, value := range map[string]string{"name": d.Name, "user": d.User} {
		if value == "" || strings.ContainsAny(value, " \t\r\n\x00") {
			return fmt.Errorf("invalid database %s %q", field, value)
		}
	}
	if d.Password == "" || strings.ContainsRune(d.Password, 0) {
		return fmt.Errorf("invalid database password")
	}
	return nil
}
