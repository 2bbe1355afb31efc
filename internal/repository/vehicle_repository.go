package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

type VehicleFilter struct {
	Type     *model.VehicleType
	Assigned *bool
	Search   string
	Limit    int
	Offset   int
}

func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&model.Vehicle{})

	if filter.Type != nil {
		query = query.Where("vehicle_type = ?", *filter.Type)
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			query = query.Where("driver_id IS NOT NULL")
		} else {
			query = query.Where("driver_id IS NULL")
		}
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(model ILIKE ? OR license_plate ILIKE ? OR color ILIKE ?)", search, search, search)
	}

	query = paginate(query, filter.Limit, filter.Offset)

	var vehicles []model.Vehicle
	if err := query.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *VehicleRepository) GetByDriver(ctx context.Context, driverID uuid.UUID) (*model.Vehicle, error) {
	return r.first(ctx, "driver_id = ?", driverID)
}

func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	return r.first(ctx, "license_plate = ?", plate)
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", vehicle.ID).
		Updates(map[string]interface{}{
			"model":         vehicle.Model,
			"license_plate": vehicle.LicensePlate,
			"vehicle_type":  vehicle.VehicleType,
			"color":         vehicle.Color,
			"year":          vehicle.Year,
			"driver_id":     vehicle.DriverID,
		})
	return res.RowsAffected, res.Error
}

// SetDriver binds the vehicle to a driver, or unbinds it when driverID is nil.
func (r *VehicleRepository) SetDriver(ctx context.Context, id uuid.UUID, driverID *uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Update("driver_id", driverID)
	return res.RowsAffected, res.Error
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Vehicle{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *VehicleRepository) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	return exists(ctx, r.db, &model.Vehicle{}, "license_plate = ?", plate)
}

func (r *VehicleRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Vehicle{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *VehicleRepository) first(ctx context.Context, cond string, args ...interface{}) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).Where(cond, args...).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}
