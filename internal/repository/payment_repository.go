package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type PaymentFilter struct {
	Status   *model.PaymentStatus
	Method   *model.PaymentMethod
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]model.Payment, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{})

	if filter.Status != nil {
		query = query.Where("payment_status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("payment_method = ?", *filter.Method)
	}
	if filter.DateFrom != nil {
		query = query.Where("paid_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("paid_at <= ?", *filter.DateTo)
	}

	query = paginate(query, filter.Limit, filter.Offset)

	var payments []model.Payment
	if err := query.Order("paid_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).First(&payment, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) Update(ctx context.Context, payment *model.Payment) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"amount":         payment.Amount,
			"payment_method": payment.Method,
			"payment_status": payment.Status,
		})
	return res.RowsAffected, res.Error
}

// UpdateStatus changes the payment status and, when paidAt is set, refreshes the payment timestamp.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, paidAt *time.Time) (int64, error) {
	updates := map[string]interface{}{
		"payment_status": status,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Payment{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *PaymentRepository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &model.Payment{}, "booking_id = ?", bookingID)
}

func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Payment{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PaymentRepository) SumCompleted(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("payment_status = ?", model.PaymentStatusCompleted).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PaymentRepository) RevenueByMethod(ctx context.Context) (map[model.PaymentMethod]float64, error) {
	type methodTotal struct {
		Method model.PaymentMethod
		Total  float64
	}
	var rows []methodTotal
	if err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("payment_method AS method, COALESCE(SUM(amount), 0) AS total").
		Where("payment_status = ?", model.PaymentStatusCompleted).
		Group("payment_method").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[model.PaymentMethod]float64, len(rows))
	for _, row := range rows {
		result[row.Method] = row.Total
	}
	return result, nil
}
