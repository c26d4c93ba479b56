package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// IngestionTimeLayout is the timestamp format of the ingestion_time column
const IngestionTimeLayout = "2006-01-02T15:04:05"

var requiredColumns = []string{"raw_event_json", "identified_changes", "flight_state", "ingestion_time"}

// EventRow is one parsed line of an event import file
type EventRow struct {
	RawEvent          string
	IdentifiedChanges string
	FlightState       string
	IngestionTime     time.Time
}

// ParseEventCSV reads an import file and returns its rows ordered by
// ingestion time. Rows with equal timestamps keep their file order.
func ParseEventCSV(r io.Reader) ([]EventRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		if idx := columns[name]; idx < len(record) {
			return record[idx]
		}
		return ""
	}

	var rows []EventRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		ingested, err := time.Parse(IngestionTimeLayout, strings.TrimSpace(field(record, "ingestion_time")))
		if err != nil {
			return nil, fmt.Errorf("invalid ingestion_time on row %d: %w", line, err)
		}

		rows = append(rows, EventRow{
			RawEvent:          field(record, "raw_event_json"),
			IdentifiedChanges: field(record, "identified_changes"),
			FlightState:       field(record, "flight_state"),
			IngestionTime:     ingested,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].IngestionTime.Before(rows[j].IngestionTime)
	})
	return rows, nil
}
