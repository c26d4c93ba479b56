package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskType defines the kind of an additional task
type TaskType string

const (
	TaskTypeKafka   TaskType = "kafka"
	TaskTypeAPI     TaskType = "api"
	TaskTypeCleanup TaskType = "cleanup"
)

// Valid reports whether t is a known task type
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeKafka, TaskTypeAPI, TaskTypeCleanup:
		return true
	}
	return false
}

// AdditionalTask is a side effect executed when a session starts
type AdditionalTask struct {
	ID              uint
	ConfigurationID uint
	Name            string
	Type            TaskType
	Template        string
	Order           int
	IsEnabled       bool
	CreatedAt       time.Time
}

// PublishTemplate is the template of a kafka task and the body of the
// produce endpoint.
type PublishTemplate struct {
	BootstrapServers string          `json:"bootstrapServers"`
	TopicName        string          `json:"topicName"`
	Payload          json.RawMessage `json:"payload"`
}

// Servers splits the comma separated bootstrap list
func (t PublishTemplate) Servers() []string {
	var servers []string
	for _, s := range strings.Split(t.BootstrapServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// MessageValue returns the bytes to publish. A payload given as a JSON string
// must itself contain JSON and is unwrapped.
func (t PublishTemplate) MessageValue() ([]byte, error) {
	if len(t.Payload) == 0 {
		return nil, fmt.Errorf("payload is required")
	}
	var inner string
	if err := json.Unmarshal(t.Payload, &inner); err == nil {
		if !json.Valid([]byte(inner)) {
			return nil, fmt.Errorf("payload string is not valid JSON")
		}
		return []byte(inner), nil
	}
	return t.Payload, nil
}

// APITemplate is the template of an api task
type APITemplate struct {
	URL     string                 `json:"url"`
	Body    json.RawMessage        `json:"body"`
	Headers map[string]interface{} `json:"headers"`
	OAuth2  *ClientCredentials     `json:"oauth2,omitempty"`
}

// HeaderValues stringifies header values, skipping nulls
func (t APITemplate) HeaderValues() map[string]string {
	headers := make(map[string]string, len(t.Headers))
	for k, v := range t.Headers {
		switch val := v.(type) {
		case nil:
		case string:
			headers[k] = val
		default:
			headers[k] = fmt.Sprint(val)
		}
	}
	return headers
}

// ClientCredentials describes an OAuth2 client credentials grant
type ClientCredentials struct {
	TokenURL     string   `json:"token_url"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
}

// CleanupTemplate is the template of a cleanup task
type CleanupTemplate struct {
	Query string `json:"query"`
}

// ParseTemplate decodes a task template into dst
func ParseTemplate(task *AdditionalTask, dst interface{}) error {
	if strings.TrimSpace(task.Template) == "" {
		return fmt.Errorf("template is empty")
	}
	if err := json.Unmarshal([]byte(task.Template), dst); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	return nil
}
