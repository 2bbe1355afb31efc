package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/repository"
)

type PassengerService struct {
	passengers PassengerStore
}

func NewPassengerService(passengers PassengerStore) *PassengerService {
	return &PassengerService{passengers: passengers}
}

type PassengerInput struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	AccountID *uuid.UUID
}

func (s *PassengerService) Create(ctx context.Context, input PassengerInput) (*model.Passenger, error) {
	passenger, err := normalizePassenger(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, passenger.Email); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, passenger.Phone); err != nil {
		return nil, err
	}
	if err := s.passengers.Create(ctx, passenger); err != nil {
		return nil, storeErr("create passenger", err, "passenger")
	}
	return passenger, nil
}

type UpdatePassengerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// Update rewrites the passenger. Email and phone are only checked for
// collisions when they differ from the stored values.
func (s *PassengerService) Update(ctx context.Context, id uuid.UUID, input UpdatePassengerInput) (*model.Passenger, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := PassengerInput{
		Name:    current.Name,
		Email:   current.Email,
		Phone:   current.Phone,
		Address: current.Address,
	}
	if input.Name != nil {
		merged.Name = *input.Name
	}
	if input.Email != nil {
		merged.Email = *input.Email
	}
	if input.Phone != nil {
		merged.Phone = *input.Phone
	}
	if input.Address != nil {
		merged.Address = *input.Address
	}

	updated, err := normalizePassenger(merged)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.AccountID = current.AccountID
	updated.CreatedAt = current.CreatedAt

	if !strings.EqualFold(updated.Email, current.Email) {
		if err := s.ensureEmailFree(ctx, updated.Email); err != nil {
			return nil, err
		}
	}
	if updated.Phone != current.Phone {
		if err := s.ensurePhoneFree(ctx, updated.Phone); err != nil {
			return nil, err
		}
	}

	rows, err := s.passengers.Update(ctx, updated)
	if err := affected("update passenger", rows, err, "passenger"); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PassengerService) Get(ctx context.Context, id uuid.UUID) (*model.Passenger, error) {
	passenger, err := s.passengers.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load passenger", err, "passenger")
	}
	return passenger, nil
}

func (s *PassengerService) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.Passenger, error) {
	passenger, err := s.passengers.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, storeErr("load passenger", err, "passenger")
	}
	return passenger, nil
}

func (s *PassengerService) GetByEmail(ctx context.Context, email string) (*model.Passenger, error) {
	passenger, err := s.passengers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, storeErr("load passenger", err, "passenger")
	}
	return passenger, nil
}

func (s *PassengerService) List(ctx context.Context, search string, limit, offset int) ([]model.Passenger, error) {
	passengers, err := s.passengers.List(ctx, repository.PassengerFilter{
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, storeErr("list passengers", err, "passenger")
	}
	return passengers, nil
}

func (s *PassengerService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.passengers.Delete(ctx, id)
	return affected("delete passenger", rows, err, "passenger")
}

func (s *PassengerService) Count(ctx context.Context) (int64, error) {
	total, err := s.passengers.Count(ctx)
	if err != nil {
		return 0, storeErr("count passengers", err, "passenger")
	}
	return total, nil
}

func normalizePassenger(input PassengerInput) (*model.Passenger, error) {
	name, err := requireText("name", input.Name, 100)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	return &model.Passenger{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   strings.TrimSpace(input.Address),
		AccountID: input.AccountID,
	}, nil
}

func (s *PassengerService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.passengers.ExistsByEmail(ctx, email)
	if err != nil {
		return storeErr("check email", err, "passenger")
	}
	if taken {
		return conflict("email %s is already registered", email)
	}
	return nil
}

func (s *PassengerService) ensurePhoneFree(ctx context.Context, phone string) error {
	taken, err := s.passengers.ExistsByPhone(ctx, phone)
	if err != nil {
		return storeErr("check phone", err, "passenger")
	}
	if taken {
		return conflict("phone %s is already registered", phone)
	}
	return nil
}
