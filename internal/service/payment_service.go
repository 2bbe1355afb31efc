package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/repository"
)

type PaymentService struct {
	payments PaymentStore
	bookings BookingStore
	stats    StatsCache
	now      func() time.Time
}

func NewPaymentService(payments PaymentStore, bookings BookingStore) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		stats:    nopStatsCache{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetStatsCache makes payment writes drop the cached dashboard stats.
func (s *PaymentService) SetStatsCache(cache StatsCache) {
	if cache != nil {
		s.stats = cache
	}
}

type CreatePaymentInput struct {
	BookingID uuid.UUID
	// Amount defaults to the booking fare when nil.
	Amount *float64
	Method model.PaymentMethod
	Status model.PaymentStatus
}

func (s *PaymentService) Create(ctx context.Context, input CreatePaymentInput) (*model.Payment, error) {
	method := input.Method
	if method == "" {
		method = model.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, invalid("unknown payment method %q", method)
	}
	status := input.Status
	if status == "" {
		status = model.PaymentStatusPending
	}
	if !status.Valid() {
		return nil, invalid("unknown payment status %q", status)
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, storeErr("load booking", err, "booking")
	}

	var amount float64
	switch {
	case input.Amount != nil:
		amount = *input.Amount
	case booking.Fare != nil:
		amount = *booking.Fare
	}
	if amount <= 0 {
		return nil, invalid("payment amount must be positive")
	}

	taken, err := s.payments.ExistsForBooking(ctx, booking.ID)
	if err != nil {
		return nil, storeErr("check payment", err, "payment")
	}
	if taken {
		return nil, conflict("booking %s already has a payment", booking.ID)
	}

	payment := &model.Payment{
		BookingID: booking.ID,
		Amount:    roundCents(amount),
		Method:    method,
		Status:    status,
		PaidAt:    s.now(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, storeErr("create payment", err, "payment")
	}
	s.stats.Invalidate(ctx)
	return payment, nil
}

type UpdatePaymentInput struct {
	Amount *float64
	Method *model.PaymentMethod
	Status *model.PaymentStatus
}

func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, input UpdatePaymentInput) (*model.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	statusChanged := false

	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, invalid("payment amount must be positive")
		}
		payment.Amount = roundCents(*input.Amount)
	}
	if input.Method != nil {
		if !input.Method.Valid() {
			return nil, invalid("unknown payment method %q", *input.Method)
		}
		payment.Method = *input.Method
	}
	if input.Status != nil && *input.Status != payment.Status {
		if !input.Status.Valid() {
			return nil, invalid("unknown payment status %q", *input.Status)
		}
		payment.Status = *input.Status
		statusChanged = true
	}

	rows, err := s.payments.Update(ctx, payment)
	if err := affected("update payment", rows, err, "payment"); err != nil {
		return nil, err
	}
	if statusChanged && payment.Status == model.PaymentStatusCompleted {
		if err := s.stampPaid(ctx, payment); err != nil {
			return nil, err
		}
	}
	s.stats.Invalidate(ctx)
	return payment, nil
}

// UpdateStatus sets the payment status. Completing a payment refreshes its timestamp.
func (s *PaymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	if !status.Valid() {
		return nil, invalid("unknown payment status %q", status)
	}
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var paidAt *time.Time
	if status == model.PaymentStatusCompleted {
		now := s.now()
		paidAt = &now
	}
	rows, err := s.payments.UpdateStatus(ctx, id, status, paidAt)
	if err := affected("update payment status", rows, err, "payment"); err != nil {
		return nil, err
	}
	payment.Status = status
	if paidAt != nil {
		payment.PaidAt = *paidAt
	}
	s.stats.Invalidate(ctx)
	return payment, nil
}

func (s *PaymentService) MarkCompleted(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.UpdateStatus(ctx, id, model.PaymentStatusCompleted)
}

func (s *PaymentService) MarkFailed(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.UpdateStatus(ctx, id, model.PaymentStatusFailed)
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load payment", err, "payment")
	}
	return payment, nil
}

func (s *PaymentService) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	payment, err := s.payments.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load payment", err, "payment")
	}
	return payment, nil
}

type ListPaymentsOptions struct {
	Status   *model.PaymentStatus
	Method   *model.PaymentMethod
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

func (s *PaymentService) List(ctx context.Context, opts ListPaymentsOptions) ([]model.Payment, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, invalid("unknown payment status %q", *opts.Status)
	}
	if opts.Method != nil && !opts.Method.Valid() {
		return nil, invalid("unknown payment method %q", *opts.Method)
	}
	payments, err := s.payments.List(ctx, repository.PaymentFilter{
		Status:   opts.Status,
		Method:   opts.Method,
		DateFrom: opts.DateFrom,
		DateTo:   opts.DateTo,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
	if err != nil {
		return nil, storeErr("list payments", err, "payment")
	}
	return payments, nil
}

func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.payments.Delete(ctx, id)
	if err := affected("delete payment", rows, err, "payment"); err != nil {
		return err
	}
	s.stats.Invalidate(ctx)
	return nil
}

func (s *PaymentService) Count(ctx context.Context) (int64, error) {
	total, err := s.payments.Count(ctx)
	if err != nil {
		return 0, storeErr("count payments", err, "payment")
	}
	return total, nil
}

// TotalRevenue sums completed payments.
func (s *PaymentService) TotalRevenue(ctx context.Context) (float64, error) {
	total, err := s.payments.SumCompleted(ctx)
	if err != nil {
		return 0, storeErr("sum payments", err, "payment")
	}
	return roundCents(total), nil
}

func (s *PaymentService) RevenueByMethod(ctx context.Context) (map[model.PaymentMethod]float64, error) {
	totals, err := s.payments.RevenueByMethod(ctx)
	if err != nil {
		return nil, storeErr("sum payments by method", err, "payment")
	}
	return totals, nil
}

func (s *PaymentService) stampPaid(ctx context.Context, payment *model.Payment) error {
	now := s.now()
	rows, err := s.payments.UpdateStatus(ctx, payment.ID, payment.Status, &now)
	if err := affected("stamp payment", rows, err, "payment"); err != nil {
		return err
	}
	payment.PaidAt = now
	return nil
}
