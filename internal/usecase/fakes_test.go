package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/internal/infrastructure/lock"
	"flight-event-mock-service/pkg/logger"
)

// memoryStore backs the in-memory repositories used by the usecase tests
type memoryStore struct {
	mu      sync.Mutex
	nextID  uint
	flights map[uint]*entity.Flight
	events  map[uint]*entity.FlightEvent
	configs map[uint]*entity.MockConfiguration
	tasks   map[uint]*entity.AdditionalTask
	logs    []*entity.PlaybackLog

	markPlayedErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		flights: map[uint]*entity.Flight{},
		events:  map[uint]*entity.FlightEvent{},
		configs: map[uint]*entity.MockConfiguration{},
		tasks:   map[uint]*entity.AdditionalTask{},
	}
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) addFlight(uniqueID string) *entity.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &entity.Flight{ID: s.id(), FlightUniqueID: uniqueID, CreatedAt: time.Now()}
	s.flights[f.ID] = f
	return f
}

func (s *memoryStore) addEvent(flightID uint, priority int, raw string, played bool) *entity.FlightEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entity.FlightEvent{ID: s.id(), FlightID: flightID, Priority: priority, RawEvent: raw, IsPlayed: played}
	s.events[e.ID] = e
	copied := *e
	return &copied
}

func (s *memoryStore) setConfig(cfg *entity.MockConfiguration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.ID == 0 {
		cfg.ID = s.id()
	}
	s.configs[cfg.FlightID] = cfg
}

func (s *memoryStore) addTask(task *entity.AdditionalTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = s.id()
	s.tasks[task.ID] = task
}

func (s *memoryStore) event(id uint) entity.FlightEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.events[id]
}

func (s *memoryStore) played(flightID uint) []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []*entity.FlightEvent
	for _, e := range s.events {
		if e.FlightID == flightID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Priority < events[j].Priority })
	flags := make([]bool, 0, len(events))
	for _, e := range events {
		flags = append(flags, e.IsPlayed)
	}
	return flags
}

func (s *memoryStore) flightEvents(flightID uint) []*entity.FlightEvent {
	var events []*entity.FlightEvent
	for _, e := range s.events {
		if e.FlightID == flightID {
			copied := *e
			events = append(events, &copied)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority == events[j].Priority {
			return events[i].ID < events[j].ID
		}
		return events[i].Priority < events[j].Priority
	})
	return events
}

type fakeFlightRepo struct{ s *memoryStore }

func (r fakeFlightRepo) Create(_ context.Context, flight *entity.Flight, cfg *entity.MockConfiguration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	flight.ID = r.s.id()
	r.s.flights[flight.ID] = flight
	if cfg != nil {
		cfg.ID = r.s.id()
		cfg.FlightID = flight.ID
		r.s.configs[flight.ID] = cfg
	}
	return nil
}

func (r fakeFlightRepo) GetByID(_ context.Context, id uint) (*entity.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r fakeFlightRepo) GetByUniqueID(_ context.Context, uniqueID string) (*entity.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.flights {
		if f.FlightUniqueID == uniqueID {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r fakeFlightRepo) List(_ context.Context) ([]*entity.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	flights := make([]*entity.Flight, 0, len(r.s.flights))
	for _, f := range r.s.flights {
		flights = append(flights, f)
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].ID < flights[j].ID })
	return flights, nil
}

func (r fakeFlightRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.flights[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.flights, id)
	for eid, e := range r.s.events {
		if e.FlightID == id {
			delete(r.s.events, eid)
		}
	}
	delete(r.s.configs, id)
	return nil
}

type fakeEventRepo struct{ s *memoryStore }

func (r fakeEventRepo) ListByFlight(_ context.Context, flightID uint) ([]*entity.FlightEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.flightEvents(flightID), nil
}

func (r fakeEventRepo) GetByID(_ context.Context, flightID, eventID uint) (*entity.FlightEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok || e.FlightID != flightID {
		return nil, repository.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r fakeEventRepo) Insert(_ context.Context, event *entity.FlightEvent, requested int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	maxPriority := 0
	for _, e := range r.s.events {
		if e.FlightID == event.FlightID && e.Priority > maxPriority {
			maxPriority = e.Priority
		}
	}
	priority, shift := entity.ResolveInsertPriority(requested, maxPriority)
	if shift {
		for _, e := range r.s.events {
			if e.FlightID == event.FlightID && e.Priority >= priority {
				e.Priority++
			}
		}
	}
	event.ID = r.s.id()
	event.Priority = priority
	stored := *event
	r.s.events[event.ID] = &stored
	return nil
}

func (r fakeEventRepo) Update(_ context.Context, event *entity.FlightEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	e.RawEvent = event.RawEvent
	e.FlightState = event.FlightState
	e.IdentifiedChanges = event.IdentifiedChanges
	e.Priority = event.Priority
	return nil
}

func (r fakeEventRepo) Delete(_ context.Context, flightID, eventID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok || e.FlightID != flightID {
		return repository.ErrNotFound
	}
	delete(r.s.events, eventID)
	return nil
}

func (r fakeEventRepo) DeleteAll(_ context.Context, flightID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, e := range r.s.events {
		if e.FlightID == flightID {
			delete(r.s.events, id)
			n++
		}
	}
	return n, nil
}

func (r fakeEventRepo) ReplaceAll(ctx context.Context, flightID uint, events []*entity.FlightEvent) error {
	if _, err := r.DeleteAll(ctx, flightID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range events {
		e.ID = r.s.id()
		stored := *e
		r.s.events[e.ID] = &stored
	}
	return nil
}

func (r fakeEventRepo) MarkPlayed(_ context.Context, eventID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.markPlayedErr != nil {
		return r.s.markPlayedErr
	}
	e, ok := r.s.events[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	e.IsPlayed = true
	return nil
}

func (r fakeEventRepo) ResetPlayed(_ context.Context, flightID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.events {
		if e.FlightID == flightID && e.IsPlayed {
			e.IsPlayed = false
			n++
		}
	}
	return n, nil
}

func (r fakeEventRepo) FindAnnotated(_ context.Context, flightNumber, marker string) ([]*entity.FlightEventMatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var flights []*entity.Flight
	for _, f := range r.s.flights {
		if strings.Contains(f.FlightUniqueID, flightNumber) {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].ID < flights[j].ID })

	var matches []*entity.FlightEventMatch
	for _, f := range flights {
		for _, e := range r.s.flightEvents(f.ID) {
			if strings.Contains(strings.ToLower(e.IdentifiedChanges), strings.ToLower(marker)) {
				matches = append(matches, &entity.FlightEventMatch{FlightUniqueID: f.FlightUniqueID, Event: e})
			}
		}
	}
	return matches, nil
}

type fakeConfigRepo struct{ s *memoryStore }

func (r fakeConfigRepo) GetByFlightID(_ context.Context, flightID uint) (*entity.MockConfiguration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cfg, ok := r.s.configs[flightID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *cfg
	return &copied, nil
}

func (r fakeConfigRepo) Upsert(_ context.Context, cfg *entity.MockConfiguration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.configs[cfg.FlightID]; ok {
		cfg.ID = existing.ID
	} else {
		cfg.ID = r.s.id()
	}
	stored := *cfg
	r.s.configs[cfg.FlightID] = &stored
	return nil
}

type fakeTaskRepo struct{ s *memoryStore }

func (r fakeTaskRepo) ListByConfiguration(_ context.Context, configurationID uint) ([]*entity.AdditionalTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tasks := []*entity.AdditionalTask{}
	for _, t := range r.s.tasks {
		if t.ConfigurationID == configurationID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r fakeTaskRepo) Create(_ context.Context, task *entity.AdditionalTask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task.ID = r.s.id()
	r.s.tasks[task.ID] = task
	return nil
}

func (r fakeTaskRepo) Delete(_ context.Context, configurationID, taskID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskID]
	if !ok || t.ConfigurationID != configurationID {
		return repository.ErrNotFound
	}
	delete(r.s.tasks, taskID)
	return nil
}

type fakeLogRepo struct{ s *memoryStore }

func (r fakeLogRepo) Save(_ context.Context, entry *entity.PlaybackLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, entry)
	return nil
}

func (r fakeLogRepo) FindByFlight(_ context.Context, flightID uint, _ int) ([]*entity.PlaybackLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var entries []*entity.PlaybackLog
	for _, e := range r.s.logs {
		if e.FlightID == flightID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// fakeTarget records committed statements and fails those whose SQL contains
// a key of failOn.
type fakeTarget struct {
	mu        sync.Mutex
	failOn    map[string]error
	committed []entity.SQLStatement
	closed    bool
}

type fakeTx struct {
	target  *fakeTarget
	pending []entity.SQLStatement
}

func (tx *fakeTx) Exec(_ context.Context, stmt entity.SQLStatement) error {
	for fragment, err := range tx.target.failOn {
		if strings.Contains(stmt.SQL, fragment) {
			return err
		}
	}
	tx.pending = append(tx.pending, stmt)
	return nil
}

func (t *fakeTarget) Exec(ctx context.Context, stmt entity.SQLStatement) error {
	return t.Transaction(ctx, func(tx repository.StatementExecer) error { return tx.Exec(ctx, stmt) })
}

func (t *fakeTarget) Transaction(_ context.Context, fn func(tx repository.StatementExecer) error) error {
	tx := &fakeTx{target: t}
	if err := fn(tx); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.committed = append(t.committed, tx.pending...)
	return nil
}

func (t *fakeTarget) Close() error {
	t.closed = true
	return nil
}

type fakeTargets struct {
	def       *fakeTarget
	custom    *fakeTarget
	customErr error
	opened    []entity.CustomDatabase
}

func (p *fakeTargets) Default() repository.CleanupTarget {
	return p.def
}

func (p *fakeTargets) Custom(_ context.Context, params entity.CustomDatabase) (repository.CleanupTarget, error) {
	p.opened = append(p.opened, params)
	if p.customErr != nil {
		return nil, p.customErr
	}
	return p.custom, nil
}

// fakeRouter is a minimal TaskRouter
type fakeRouter struct {
	handlers []TaskHandler
}

func (r *fakeRouter) Register(handler TaskHandler) {
	r.handlers = append(r.handlers, handler)
}

func (r *fakeRouter) GetHandler(taskType entity.TaskType) TaskHandler {
	for _, h := range r.handlers {
		if h.CanHandle(taskType) {
			return h
		}
	}
	return nil
}

// recordingHandler appends the names of the tasks it runs
type recordingHandler struct {
	taskType entity.TaskType
	ran      *[]string
	fail     map[string]error
}

func (h *recordingHandler) CanHandle(taskType entity.TaskType) bool {
	return taskType == h.taskType
}

func (h *recordingHandler) Execute(_ context.Context, exec *TaskExecution) error {
	*h.ran = append(*h.ran, exec.Task.Name)
	return h.fail[exec.Task.Name]
}

var errBoom = errors.New("boom")

// harness wires a session controller over the in-memory store
type harness struct {
	store      *memoryStore
	targets    *fakeTargets
	router     *fakeRouter
	controller *SessionController
	manager    *EventManager
	waits      []time.Duration
}

func newHarness(client repository.OutboundClient) *harness {
	log := logger.NewNopLogger()
	store := newMemoryStore()
	targets := &fakeTargets{def: &fakeTarget{}, custom: &fakeTarget{}}
	router := &fakeRouter{}

	sequencer := NewSequencer()
	cleanup := NewCleanupExecutor(targets, log, nil)
	router.Register(NewCleanupTaskHandler(cleanup))
	tasks := NewTaskRunner(fakeTaskRepo{store}, router, log, nil)

	h := &harness{store: store, targets: targets, router: router}
	h.controller = NewSessionController(
		fakeFlightRepo{store},
		fakeEventRepo{store},
		fakeConfigRepo{store},
		fakeLogRepo{store},
		sequencer,
		NewDispatcher(client, time.Second, log, nil),
		cleanup,
		tasks,
		lock.NewLocalLocker(),
		time.Second,
		log,
		nil,
	)
	h.controller.wait = func(_ context.Context, d time.Duration) error {
		h.waits = append(h.waits, d)
		return nil
	}
	h.manager = NewEventManager(
		fakeFlightRepo{store},
		fakeEventRepo{store},
		fakeConfigRepo{store},
		fakeTaskRepo{store},
		sequencer,
		log,
	)
	return h
}
