package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/interface/handler/mocks"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestCLI(t *testing.T) (*cobra.Command, *mocks.MockFlightService, *mocks.MockSessionService, *bytes.Buffer, *int) {
	flights := new(mocks.MockFlightService)
	sessions := new(mocks.MockSessionService)
	closed := 0

	root := &cobra.Command{Use: "replayctl"}
	SetupCLI(root, func(ctx context.Context) (*Services, error) {
		return &Services{Events: flights, Sessions: sessions, Close: func() { closed++ }}, nil
	})

	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))

	t.Cleanup(func() {
		flights.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})
	return root, flights, sessions, out, &closed
}

func decodeOutput(t *testing.T, out *bytes.Buffer) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	return body
}

func TestPlayCommand(t *testing.T) {
	root, _, sessions, out, closed := setupTestCLI(t)
	sessions.On("PlayEvent", mock.Anything, uint(3), uint(12), true).
		Return(&entity.PlayResult{EventID: 12, Priority: 2, IsReplay: true}, nil)

	root.SetArgs([]string{"play", "--flight", "3", "--event", "12", "--replay"})
	require.NoError(t, root.Execute())

	body := decodeOutput(t, out)
	assert.Equal(t, float64(12), body["event_id"])
	assert.Equal(t, true, body["is_replay"])
	assert.Equal(t, 1, *closed)
}

func TestPlayCommand_RequiresFlags(t *testing.T) {
	root, _, _, _, closed := setupTestCLI(t)

	root.SetArgs([]string{"play", "--event", "12"})
	assert.EqualError(t, root.Execute(), "--flight is required")

	root.SetArgs([]string{"play", "--flight", "1", "--event", "0"})
	assert.EqualError(t, root.Execute(), "--event is required")
	assert.Equal(t, 0, *closed)
}

func TestPlayCommand_PropagatesError(t *testing.T) {
	root, _, sessions, _, _ := setupTestCLI(t)
	sessions.On("PlayEvent", mock.Anything, uint(1), uint(2), false).
		Return(nil, entity.ErrSequenceViolation(nil))

	root.SetArgs([]string{"play", "--flight", "1", "--event", "2"})
	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, entity.KindSequenceViolation, entity.KindOf(err))
}

func TestImportCommand(t *testing.T) {
	root, flights, _, out, _ := setupTestCLI(t)
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("raw_event_json\n{}\n"), 0o600))

	flights.On("ImportEvents", mock.Anything, uint(5), mock.Anything).Return(1, nil)

	root.SetArgs([]string{"import", path, "--flight", "5"})
	require.NoError(t, root.Execute())

	body := decodeOutput(t, out)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["count"])
}

func TestImportCommand_MissingFile(t *testing.T) {
	root, _, _, _, closed := setupTestCLI(t)

	root.SetArgs([]string{"import", filepath.Join(t.TempDir(), "absent.csv"), "--flight", "5"})
	assert.Error(t, root.Execute())
	assert.Equal(t, 0, *closed)
}

func TestCleanupCommand(t *testing.T) {
	root, _, sessions, out, _ := setupTestCLI(t)
	sessions.On("RunCleanup", mock.Anything, uint(2), "DELETE FROM a").
		Return(&entity.CleanupReport{Status: entity.StatusSuccess, TotalQueries: 1, ExecutedQueries: 1}, nil)

	root.SetArgs([]string{"cleanup", "--flight", "2", "--query", "DELETE FROM a"})
	require.NoError(t, root.Execute())

	body := decodeOutput(t, out)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["executed_queries"])
}

func TestCleanupCommand_ErrorReportFails(t *testing.T) {
	root, _, sessions, out, _ := setupTestCLI(t)
	sessions.On("RunCleanup", mock.Anything, uint(2), "").
		Return(&entity.CleanupReport{Status: entity.StatusError, Message: "All 1 queries failed", TotalQueries: 1}, nil)

	root.SetArgs([]string{"cleanup", "--flight", "2"})
	assert.EqualError(t, root.Execute(), "All 1 queries failed")
	assert.Equal(t, "error", decodeOutput(t, out)["status"])
}

func TestSessionCommands(t *testing.T) {
	root, _, sessions, out, _ := setupTestCLI(t)
	sessions.On("StartSession", mock.Anything, uint(9)).
		Return(&entity.SessionResult{Status: entity.StatusSuccess, ClearedEvents: 4, CleanupSuccess: true}, nil)

	root.SetArgs([]string{"start", "--flight", "9"})
	require.NoError(t, root.Execute())
	assert.Equal(t, float64(4), decodeOutput(t, out)["cleared_events"])

	out.Reset()
	sessions.On("AbortSession", mock.Anything, uint(9)).
		Return(&entity.SessionResult{Status: entity.StatusPartialSuccess, CleanupError: "boom"}, nil)

	root.SetArgs([]string{"abort", "--flight", "9"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "partial_success", decodeOutput(t, out)["status"])
}

func TestLoaderError(t *testing.T) {
	root := &cobra.Command{Use: "replayctl"}
	SetupCLI(root, func(ctx context.Context) (*Services, error) {
		return nil, errors.New("no database")
	})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	root.SetArgs([]string{"reset", "--flight", "1"})
	assert.EqualError(t, root.Execute(), "no database")
}
