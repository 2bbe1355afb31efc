package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
)

type PassengerRepository struct {
	db *gorm.DB
}

func NewPassengerRepository(db *gorm.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

type PassengerFilter struct {
	Search string
	Limit  int
	Offset int
}

func (r *PassengerRepository) List(ctx context.Context, filter PassengerFilter) ([]model.Passenger, error) {
	query := r.db.WithContext(ctx).Model(&model.Passenger{})

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", search, search, search)
	}

	query = paginate(query, filter.Limit, filter.Offset)

	var passengers []model.Passenger
	if err := query.Order("created_at DESC").Find(&passengers).Error; err != nil {
		return nil, err
	}
	return passengers, nil
}

func (r *PassengerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Passenger, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PassengerRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Passenger, error) {
	return r.first(ctx, "account_id = ?", accountID)
}

func (r *PassengerRepository) GetByEmail(ctx context.Context, email string) (*model.Passenger, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *PassengerRepository) Create(ctx context.Context, passenger *model.Passenger) error {
	return r.db.WithContext(ctx).Create(passenger).Error
}

func (r *PassengerRepository) Update(ctx context.Context, passenger *model.Passenger) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Passenger{}).
		Where("id = ?", passenger.ID).
		Updates(map[string]interface{}{
			"name":    passenger.Name,
			"email":   passenger.Email,
			"phone":   passenger.Phone,
			"address": passenger.Address,
		})
	return res.RowsAffected, res.Error
}

func (r *PassengerRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Passenger{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *PassengerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, &model.Passenger{}, "LOWER(email) = LOWER(?)", email)
}

func (r *PassengerRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return exists(ctx, r.db, &model.Passenger{}, "phone = ?", phone)
}

func (r *PassengerRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Passenger{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PassengerRepository) first(ctx context.Context, cond string, args ...interface{}) (*model.Passenger, error) {
	var passenger model.Passenger
	if err := r.db.WithContext(ctx).Where(cond, args...).First(&passenger).Error; err != nil {
		return nil, err
	}
	return &passenger, nil
}

func exists(ctx context.Context, db *gorm.DB, table interface{}, cond string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(table).Where(cond, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
