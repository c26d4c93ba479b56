package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConfigurationRepository implements the ConfigurationRepository interface
type GormConfigurationRepository struct {
	db *gorm.DB
}

// NewGormConfigurationRepository creates a new GORM configuration repository
func NewGormConfigurationRepository(db *gorm.DB) repository.ConfigurationRepository {
	return &GormConfigurationRepository{
		db: db,
	}
}

// GetByFlightID finds the configuration of a flight
func (r *GormConfigurationRepository) GetByFlightID(ctx context.Context, flightID uint) (*entity.MockConfiguration, error) {
	var cfg MockConfigurations
	if err := r.db.WithContext(ctx).Where("flight_id = ?", flightID).First(&cfg).Error; err != nil {
		return nil, notFound(err)
	}
	return toConfigurationEntity(&cfg), nil
}

// Upsert inserts or replaces the single configuration of a flight
func (r *GormConfigurationRepository) Upsert(ctx context.Context, cfg *entity.MockConfiguration) error {
	model := toConfigurationModel(cfg)
	model.ID = 0

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "flight_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"callback_url", "delay_between_events", "fast_forward", "manual_mode",
			"cleanup_before_start", "cleanup_query", "host_address", "use_custom_db",
			"db_host", "db_port", "db_name", "db_user", "db_password", "updated_at",
		}),
	}).Create(model)
	if result.Error != nil {
		return result.Error
	}

	// ID is not returned on conflict updates with every driver
	var saved MockConfigurations
	if err := r.db.WithContext(ctx).Where("flight_id = ?", cfg.FlightID).First(&saved).Error; err != nil {
		return notFound(err)
	}
	cfg.ID = saved.ID
	cfg.CreatedAt = saved.CreatedAt
	cfg.UpdatedAt = saved.UpdatedAt
	return nil
}

// GormTaskRepository implements the TaskRepository interface
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM additional task repository
func NewGormTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &GormTaskRepository{
		db: db,
	}
}

// ListByConfiguration returns tasks ordered by their order column
func (r *GormTaskRepository) ListByConfiguration(ctx context.Context, configurationID uint) ([]*entity.AdditionalTask, error) {
	var tasks []AdditionalTasks
	result := r.db.WithContext(ctx).
		Where("configuration_id = ?", configurationID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("id ASC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.AdditionalTask, 0, len(tasks))
	for i := range tasks {
		entities = append(entities, toTaskEntity(&tasks[i]))
	}
	return entities, nil
}

// Create inserts a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *entity.AdditionalTask) error {
	model := AdditionalTasks{
		ConfigurationID: task.ConfigurationID,
		Name:            task.Name,
		TaskType:        string(task.Type),
		Template:        task.Template,
		Order:           task.Order,
		IsEnabled:       task.IsEnabled,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	task.ID = model.ID
	task.CreatedAt = model.CreatedAt
	return nil
}

// Delete removes a task of a configuration
func (r *GormTaskRepository) Delete(ctx context.Context, configurationID, taskID uint) error {
	result := r.db.WithContext(ctx).Where("configuration_id = ? AND id = ?", configurationID, taskID).Delete(&AdditionalTasks{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
