package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

type DriverFilter struct {
	Availability *model.Availability
	Search       string
	Limit        int
	Offset       int
}

func (r *DriverRepository) List(ctx context.Context, filter DriverFilter) ([]model.Driver, error) {
	query := r.db.WithContext(ctx).Model(&model.Driver{})

	if filter.Availability != nil {
		query = query.Where("availability = ?", *filter.Availability)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(name ILIKE ? OR license_number ILIKE ? OR phone ILIKE ?)", search, search, search)
	}

	query = paginate(query, filter.Limit, filter.Offset)

	var drivers []model.Driver
	if err := query.Order("created_at DESC").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *DriverRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Driver, error) {
	return r.first(ctx, "account_id = ?", accountID)
}

func (r *DriverRepository) GetByLicense(ctx context.Context, license string) (*model.Driver, error) {
	return r.first(ctx, "license_number = ?", license)
}

func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) Update(ctx context.Context, driver *model.Driver) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("id = ?", driver.ID).
		Updates(map[string]interface{}{
			"name":           driver.Name,
			"license_number": driver.LicenseNumber,
			"phone":          driver.Phone,
			"email":          driver.Email,
			"availability":   driver.Availability,
		})
	return res.RowsAffected, res.Error
}

func (r *DriverRepository) SetAvailability(ctx context.Context, id uuid.UUID, availability model.Availability) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("id = ?", id).
		Update("availability", availability)
	return res.RowsAffected, res.Error
}

func (r *DriverRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Driver{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *DriverRepository) ExistsByLicense(ctx context.Context, license string) (bool, error) {
	return exists(ctx, r.db, &model.Driver{}, "license_number = ?", license)
}

func (r *DriverRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return exists(ctx, r.db, &model.Driver{}, "phone = ?", phone)
}

// Count returns the number of drivers, optionally restricted to one availability.
func (r *DriverRepository) Count(ctx context.Context, availability *model.Availability) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Driver{})
	if availability != nil {
		query = query.Where("availability = ?", *availability)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DriverRepository) first(ctx context.Context, cond string, args ...interface{}) (*model.Driver, error) {
	var driver model.Driver
	if err := r.db.WithContext(ctx).Where(cond, args...).First(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}
