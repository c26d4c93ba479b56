package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	outbound "flight-event-mock-service/internal/interface/repository"
	"flight-event-mock-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callbackServer struct {
	*httptest.Server
	hits   int32
	status int32
}

func newCallbackServer(t *testing.T) *callbackServer {
	cb := &callbackServer{status: http.StatusOK}
	cb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cb.hits, 1)
		w.WriteHeader(int(atomic.LoadInt32(&cb.status)))
	}))
	t.Cleanup(cb.Close)
	return cb
}

func newPlaybackHarness(t *testing.T) (*harness, *callbackServer, *entity.Flight, []*entity.FlightEvent) {
	cb := newCallbackServer(t)
	h := newHarness(outbound.NewHTTPOutboundClient(nil, logger.NewNopLogger()))

	flight := h.store.addFlight("GA123-01012025")
	cfg := entity.NewMockConfiguration(flight.ID)
	cfg.CallbackURL = cb.URL
	h.store.setConfig(cfg)

	events := []*entity.FlightEvent{
		h.store.addEvent(flight.ID, 1, `{"fid":"GA123","seq":1}`, false),
		h.store.addEvent(flight.ID, 2, `{"fid":"GA123","seq":2}`, false),
		h.store.addEvent(flight.ID, 3, `{"fid":"GA123","seq":3}`, false),
	}
	return h, cb, flight, events
}

func (h *harness) updateConfig(flightID uint, fn func(cfg *entity.MockConfiguration)) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	fn(h.store.configs[flightID])
}

func TestPlayEvent_MarksOnlyThatEvent(t *testing.T) {
	h, cb, flight, events := newPlaybackHarness(t)

	result, err := h.controller.PlayEvent(context.Background(), flight.ID, events[1].ID, false)
	require.NoError(t, err)

	assert.Equal(t, events[1].ID, result.EventID)
	assert.Equal(t, 2, result.Priority)
	assert.False(t, result.IsReplay)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, []bool{false, true, false}, h.store.played(flight.ID))
	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.hits))
	assert.Equal(t, []time.Duration{5 * time.Second}, h.waits)

	require.Len(t, h.store.logs, 1)
	assert.Equal(t, entity.OperationPlay, h.store.logs[0].Operation)
	assert.Equal(t, entity.StatusSuccess, h.store.logs[0].Status)
}

func TestPlayEvent_ReplayKeepsFlags(t *testing.T) {
	h, cb, flight, events := newPlaybackHarness(t)

	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, true)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, h.store.played(flight.ID))

	_, err = h.controller.PlayEvent(context.Background(), flight.ID, events[2].ID, false)
	require.NoError(t, err)

	result, err := h.controller.PlayEvent(context.Background(), flight.ID, events[1].ID, true)
	require.NoError(t, err)
	assert.True(t, result.IsReplay)
	assert.Equal(t, []bool{false, false, true}, h.store.played(flight.ID))
	assert.Equal(t, int32(3), atomic.LoadInt32(&cb.hits))
}

func TestPlayEvent_SequenceViolation(t *testing.T) {
	h, cb, flight, events := newPlaybackHarness(t)

	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[2].ID, false)
	require.NoError(t, err)

	_, err = h.controller.PlayEvent(context.Background(), flight.ID, events[1].ID, false)
	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, entity.KindSequenceViolation, appErr.Kind)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, 3, appErr.Details["current_priority"])

	assert.Equal(t, []bool{false, false, true}, h.store.played(flight.ID))
	assert.Equal(t, int32(1), atomic.LoadInt32(&cb.hits), "rejected events are not delivered")

	_, err = h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	assert.NoError(t, err, "the first event stays playable")
}

func TestPlayEvent_ConfigurationMissing(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	h.store.mu.Lock()
	delete(h.store.configs, flight.ID)
	h.store.mu.Unlock()

	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, entity.KindConfigurationMissing, appErr.Kind)
	assert.Equal(t, "Mock configuration not found. Please configure callback URL first.", appErr.Message)
}

func TestPlayEvent_CallbackURLMissing(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	h.updateConfig(flight.ID, func(cfg *entity.MockConfiguration) { cfg.CallbackURL = "" })

	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	assert.Equal(t, entity.KindConfigurationIncomplete, entity.KindOf(err))
	assert.Equal(t, []bool{false, false, false}, h.store.played(flight.ID))
}

func TestPlayEvent_MalformedPayload(t *testing.T) {
	h, cb, flight, _ := newPlaybackHarness(t)
	broken := h.store.addEvent(flight.ID, 4, `{"fid": GA123`, false)

	_, err := h.controller.PlayEvent(context.Background(), flight.ID, broken.ID, false)
	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, entity.KindPayloadMalformed, appErr.Kind)
	assert.Equal(t, broken.ID, appErr.Details["event_id"])
	assert.Equal(t, int32(0), atomic.LoadInt32(&cb.hits))
}

func TestPlayEvent_TransportFailureLeavesFlag(t *testing.T) {
	h, cb, flight, events := newPlaybackHarness(t)
	atomic.StoreInt32(&cb.status, http.StatusBadGateway)

	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	assert.Equal(t, entity.KindTransportHTTP, entity.KindOf(err))
	assert.Equal(t, []bool{false, false, false}, h.store.played(flight.ID))
	assert.Empty(t, h.waits)

	require.Len(t, h.store.logs, 1)
	assert.Equal(t, entity.StatusError, h.store.logs[0].Status)
	assert.Equal(t, string(entity.KindTransportHTTP), h.store.logs[0].ErrorKind)
}

func TestPlayEvent_NotFound(t *testing.T) {
	h, _, flight, _ := newPlaybackHarness(t)

	_, err := h.controller.PlayEvent(context.Background(), flight.ID, 999, false)
	assert.Equal(t, entity.KindNotFound, entity.KindOf(err))

	_, err = h.controller.PlayEvent(context.Background(), 999, 1, false)
	assert.Equal(t, entity.KindNotFound, entity.KindOf(err))
}

func TestPlayEvent_FastForwardReportsNext(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	h.updateConfig(flight.ID, func(cfg *entity.MockConfiguration) { cfg.FastForward = true })

	result, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	require.NoError(t, err)

	require.NotNil(t, result.NextEvent)
	assert.Equal(t, events[1].ID, result.NextEvent.ID)
	assert.Equal(t, 2, result.NextEvent.Priority)
	assert.Empty(t, h.waits, "fast forward skips the delay")

	result, err = h.controller.PlayEvent(context.Background(), flight.ID, events[2].ID, false)
	require.NoError(t, err)
	assert.Nil(t, result.NextEvent)
}

func TestPlayEvent_ManualModeSkipsDelay(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	h.updateConfig(flight.ID, func(cfg *entity.MockConfiguration) {
		cfg.ManualMode = true
		cfg.FastForward = true
	})

	result, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	require.NoError(t, err)
	assert.Nil(t, result.NextEvent)
	assert.Empty(t, h.waits)
}

func TestStartSession(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	require.NoError(t, err)

	result, err := h.controller.StartSession(context.Background(), flight.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSuccess, result.Status)
	assert.Equal(t, int64(1), result.ClearedEvents)
	assert.True(t, result.CleanupSuccess)
	assert.Equal(t, []bool{false, false, false}, h.store.played(flight.ID))
	require.Len(t, h.targets.def.committed, 1)
	assert.Equal(t, []interface{}{"GA123-01012025"}, h.targets.def.committed[0].Args)
}

func TestStartSession_FailureLeavesFlags(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	require.NoError(t, err)
	h.targets.def.failOn = map[string]error{"flight_status": errBoom}

	_, err = h.controller.StartSession(context.Background(), flight.ID)
	assert.Equal(t, entity.KindStatementFailure, entity.KindOf(err))
	assert.Equal(t, []bool{true, false, false}, h.store.played(flight.ID))
}

func TestStartSession_SkipsCleanupWhenDisabled(t *testing.T) {
	h, _, flight, _ := newPlaybackHarness(t)
	h.updateConfig(flight.ID, func(cfg *entity.MockConfiguration) { cfg.CleanupBeforeStart = false })

	_, err := h.controller.StartSession(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Empty(t, h.targets.def.committed)
}

func TestResetSession_PartialSuccess(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	require.NoError(t, err)
	_, err = h.controller.PlayEvent(context.Background(), flight.ID, events[1].ID, false)
	require.NoError(t, err)
	h.targets.def.failOn = map[string]error{"flight_status": errBoom}

	result, err := h.controller.ResetSession(context.Background(), flight.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPartialSuccess, result.Status)
	assert.Equal(t, "Mock session reset but cleanup failed", result.Message)
	assert.Equal(t, int64(2), result.ClearedEvents)
	assert.False(t, result.CleanupSuccess)
	assert.Equal(t, "Query failed: boom", result.CleanupError)
	assert.Equal(t, []bool{false, false, false}, h.store.played(flight.ID))
}

func TestAbortSession(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	_, err := h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	require.NoError(t, err)

	result, err := h.controller.AbortSession(context.Background(), flight.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSuccess, result.Status)
	assert.Equal(t, "Mock session aborted successfully", result.Message)
	assert.NotNil(t, result.AbortedEvents)
	assert.Empty(t, result.AbortedEvents)
	assert.Equal(t, []bool{false, false, false}, h.store.played(flight.ID))
}

func TestRunCleanup(t *testing.T) {
	h, _, flight, _ := newPlaybackHarness(t)

	report, err := h.controller.RunCleanup(context.Background(), flight.ID, "DELETE FROM a WHERE id='{flight_unique_id}'; DELETE FROM b")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, report.Status)
	assert.Equal(t, 2, report.ExecutedQueries)

	other := h.store.addFlight("XX1")
	_, err = h.controller.RunCleanup(context.Background(), other.ID, "")
	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "No configuration found for this flight", appErr.Message)
}

func TestSessionController_SerializesPerFlight(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	h.controller.lockWait = 20 * time.Millisecond

	unlock, err := h.controller.locker.Lock(context.Background(), flight.ID)
	require.NoError(t, err)
	defer unlock()

	_, err = h.controller.PlayEvent(context.Background(), flight.ID, events[0].ID, false)
	assert.Equal(t, entity.KindSessionBusy, entity.KindOf(err))
}

func TestHistory(t *testing.T) {
	h, _, flight, events := newPlaybackHarness(t)
	ctx := context.Background()

	_, err := h.controller.PlayEvent(ctx, flight.ID, events[0].ID, false)
	require.NoError(t, err)
	_, err = h.controller.PlayEvent(ctx, flight.ID, events[0].ID, true)
	require.NoError(t, err)

	entries, err := h.controller.History(ctx, flight.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.OperationPlay, entries[0].Operation)
	assert.Equal(t, entity.OperationReplay, entries[1].Operation)

	_, err = h.controller.History(ctx, 999, 10)
	assert.Equal(t, entity.KindNotFound, entity.KindOf(err))
}
