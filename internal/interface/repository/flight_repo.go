package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Create inserts a flight and its optional configuration
func (r *GormFlightRepository) Create(ctx context.Context, flight *entity.Flight, cfg *entity.MockConfiguration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := Flights{FlightUniqueID: flight.FlightUniqueID}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		flight.ID = model.ID
		flight.CreatedAt = model.CreatedAt
		flight.UpdatedAt = model.UpdatedAt

		if cfg == nil {
			return nil
		}

		cfg.FlightID = model.ID
		cfgModel := toConfigurationModel(cfg)
		if err := tx.Create(cfgModel).Error; err != nil {
			return err
		}
		cfg.ID = cfgModel.ID
		cfg.CreatedAt = cfgModel.CreatedAt
		cfg.UpdatedAt = cfgModel.UpdatedAt
		return nil
	})
}

// GetByID finds a flight by primary key
func (r *GormFlightRepository) GetByID(ctx context.Context, id uint) (*entity.Flight, error) {
	var flight Flights
	if err := r.db.WithContext(ctx).First(&flight, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toFlightEntity(&flight), nil
}

// GetByUniqueID finds a flight by its unique id
func (r *GormFlightRepository) GetByUniqueID(ctx context.Context, flightUniqueID string) (*entity.Flight, error) {
	var flight Flights
	result := r.db.WithContext(ctx).Where("flight_unique_id = ?", flightUniqueID).First(&flight)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return toFlightEntity(&flight), nil
}

// List returns every flight, newest first
func (r *GormFlightRepository) List(ctx context.Context) ([]*entity.Flight, error) {
	var flights []Flights
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&flights).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.Flight, 0, len(flights))
	for i := range flights {
		entities = append(entities, toFlightEntity(&flights[i]))
	}
	return entities, nil
}

// Delete removes the flight and everything it owns
func (r *GormFlightRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		configIDs := tx.Model(&MockConfigurations{}).Select("id").Where("flight_id = ?", id)
		if err := tx.Where("configuration_id IN (?)", configIDs).Delete(&AdditionalTasks{}).Error; err != nil {
			return err
		}
		if err := tx.Where("flight_id = ?", id).Delete(&MockConfigurations{}).Error; err != nil {
			return err
		}
		if err := tx.Where("flight_id = ?", id).Delete(&FlightEvents{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Flights{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
