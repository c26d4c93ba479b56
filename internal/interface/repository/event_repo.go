package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventRepository implements the EventRepository interface
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GORM flight event repository
func NewGormEventRepository(db *gorm.DB) repository.EventRepository {
	return &GormEventRepository{
		db: db,
	}
}

func byPriority(db *gorm.DB) *gorm.DB {
	return db.Order("priority ASC").Order("id ASC")
}

// ListByFlight returns the events of a flight ordered by priority
func (r *GormEventRepository) ListByFlight(ctx context.Context, flightID uint) ([]*entity.FlightEvent, error) {
	var events []FlightEvents
	result := r.db.WithContext(ctx).Scopes(byPriority).Where("flight_id = ?", flightID).Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.FlightEvent, 0, len(events))
	for i := range events {
		entities = append(entities, toEventEntity(&events[i]))
	}
	return entities, nil
}

// GetByID finds an event belonging to flightID
func (r *GormEventRepository) GetByID(ctx context.Context, flightID, eventID uint) (*entity.FlightEvent, error) {
	var event FlightEvents
	result := r.db.WithContext(ctx).Where("flight_id = ? AND id = ?", flightID, eventID).First(&event)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return toEventEntity(&event), nil
}

// Insert creates the event, shifting later priorities when it lands inside
// the existing range. The flight row is locked for the duration.
func (r *GormEventRepository) Insert(ctx context.Context, event *entity.FlightEvent, requestedPriority int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flight Flights
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&flight, event.FlightID).Error; err != nil {
			return notFound(err)
		}

		var maxPriority int
		err := tx.Model(&FlightEvents{}).
			Where("flight_id = ?", event.FlightID).
			Select("COALESCE(MAX(priority), 0)").
			Scan(&maxPriority).Error
		if err != nil {
			return err
		}

		priority, shift := entity.ResolveInsertPriority(requestedPriority, maxPriority)
		if shift {
			err := tx.Model(&FlightEvents{}).
				Where("flight_id = ? AND priority >= ?", event.FlightID, priority).
				UpdateColumn("priority", gorm.Expr("priority + 1")).Error
			if err != nil {
				return err
			}
		}

		model := toEventModel(event)
		model.ID = 0
		model.Priority = priority
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		event.ID = model.ID
		event.Priority = priority
		event.CreatedAt = model.CreatedAt
		return nil
	})
}

// Update saves the editable fields of an event
func (r *GormEventRepository) Update(ctx context.Context, event *entity.FlightEvent) error {
	result := r.db.WithContext(ctx).Model(&FlightEvents{}).
		Where("flight_id = ? AND id = ?", event.FlightID, event.ID).
		Updates(map[string]interface{}{
			"raw_event":          event.RawEvent,
			"flight_state":       event.FlightState,
			"priority":           event.Priority,
			"identified_changes": event.IdentifiedChanges,
			"is_played":          event.IsPlayed,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one event
func (r *GormEventRepository) Delete(ctx context.Context, flightID, eventID uint) error {
	result := r.db.WithContext(ctx).Where("flight_id = ? AND id = ?", flightID, eventID).Delete(&FlightEvents{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteAll removes every event of a flight
func (r *GormEventRepository) DeleteAll(ctx context.Context, flightID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("flight_id = ?", flightID).Delete(&FlightEvents{})
	return result.RowsAffected, result.Error
}

// ReplaceAll deletes the flight's events and inserts events in one transaction
func (r *GormEventRepository) ReplaceAll(ctx context.Context, flightID uint, events []*entity.FlightEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flight_id = ?", flightID).Delete(&FlightEvents{}).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		models := make([]*FlightEvents, 0, len(events))
		for _, e := range events {
			m := toEventModel(e)
			m.ID = 0
			m.FlightID = flightID
			models = append(models, m)
		}
		if err := tx.CreateInBatches(models, 200).Error; err != nil {
			return err
		}

		for i, m := range models {
			events[i].ID = m.ID
			events[i].FlightID = flightID
			events[i].CreatedAt = m.CreatedAt
		}
		return nil
	})
}

// MarkPlayed sets the played flag of a single event
func (r *GormEventRepository) MarkPlayed(ctx context.Context, eventID uint) error {
	result := r.db.WithContext(ctx).Model(&FlightEvents{}).Where("id = ?", eventID).UpdateColumn("is_played", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ResetPlayed clears the played flags of a flight
func (r *GormEventRepository) ResetPlayed(ctx context.Context, flightID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&FlightEvents{}).
		Where("flight_id = ? AND is_played = ?", flightID, true).
		UpdateColumn("is_played", false)
	return result.RowsAffected, result.Error
}

// FindAnnotated looks up events carrying marker on flights matching flightNumber
func (r *GormEventRepository) FindAnnotated(ctx context.Context, flightNumber, marker string) ([]*entity.FlightEventMatch, error) {
	var flights []Flights
	result := r.db.WithContext(ctx).
		Where("flight_unique_id LIKE ?", containsPattern(flightNumber)).
		Find(&flights)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(flights) == 0 {
		return nil, nil
	}

	uniqueIDs := make(map[uint]string, len(flights))
	ids := make([]uint, 0, len(flights))
	for _, f := range flights {
		uniqueIDs[f.ID] = f.FlightUniqueID
		ids = append(ids, f.ID)
	}

	var events []FlightEvents
	result = r.db.WithContext(ctx).Scopes(byPriority).
		Where("flight_id IN ?", ids).
		Where("identified_changes ILIKE ?", containsPattern(marker)).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	matches := make([]*entity.FlightEventMatch, 0, len(events))
	for i := range events {
		matches = append(matches, &entity.FlightEventMatch{
			FlightUniqueID: uniqueIDs[events[i].FlightID],
			Event:          toEventEntity(&events[i]),
		})
	}
	return matches, nil
}
