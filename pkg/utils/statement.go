package utils

import (
	"regexp"
	"strings"

	"flight-event-mock-service/internal/domain/entity"
)

// FlightUniqueIDPlaceholder is substituted with the flight's unique id
const FlightUniqueIDPlaceholder = "{flight_unique_id}"

const maxErrorLength = 500

var quotedPlaceholder = regexp.MustCompile(`'\{flight_unique_id\}'`)

// SplitStatements splits cleanup text on semicolons, dropping blank parts
func SplitStatements(text string) []string {
	var statements []string
	for _, part := range strings.Split(text, ";") {
		if part = strings.TrimSpace(part); part != "" {
			statements = append(statements, part)
		}
	}
	return statements
}

// RenderStatement substitutes the placeholder. A quoted placeholder becomes a
// bound parameter; a bare one is inlined with single quotes doubled.
func RenderStatement(index int, template, flightUniqueID string) entity.SQLStatement {
	stmt := entity.SQLStatement{Index: index, Template: template}

	sql := quotedPlaceholder.ReplaceAllStringFunc(template, func(string) string {
		stmt.Args = append(stmt.Args, flightUniqueID)
		return "?"
	})
	escaped := strings.ReplaceAll(flightUniqueID, "'", "''")
	stmt.SQL = strings.ReplaceAll(sql, FlightUniqueIDPlaceholder, escaped)
	return stmt
}

// RenderStatements splits and renders text in one pass
func RenderStatements(text, flightUniqueID string) []entity.SQLStatement {
	parts := SplitStatements(text)
	statements := make([]entity.SQLStatement, 0, len(parts))
	for i, part := range parts {
		statements = append(statements, RenderStatement(i, part, flightUniqueID))
	}
	return statements
}

// CleanDatabaseError keeps the part of a driver message before its LINE
// marker, capped at 500 characters.
func CleanDatabaseError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.Index(msg, "LINE"); idx >= 0 {
		msg = msg[:idx]
	}
	msg = strings.TrimSpace(msg)
	if len(msg) > maxErrorLength {
		msg = msg[:maxErrorLength]
	}
	return msg
}
