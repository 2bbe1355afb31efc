package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/repository"
)

type DriverService struct {
	drivers DriverStore
	log     zerolog.Logger
}

func NewDriverService(drivers DriverStore, log zerolog.Logger) *DriverService {
	return &DriverService{
		drivers: drivers,
		log:     log.With().Str("component", "drivers").Logger(),
	}
}

type DriverInput struct {
	Name          string
	LicenseNumber string
	Phone         string
	Email         string
	Availability  model.Availability
	AccountID     *uuid.UUID
}

func (s *DriverService) Create(ctx context.Context, input DriverInput) (*model.Driver, error) {
	driver, err := s.normalize(input)
	if err != nil {
		return nil, err
	}
	if driver.Availability == "" {
		driver.Availability = model.AvailabilityAvailable
	}

	if err := s.ensureLicenseFree(ctx, driver.LicenseNumber); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, driver.Phone); err != nil {
		return nil, err
	}

	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, storeErr("create driver", err, "driver")
	}
	return driver, nil
}

type UpdateDriverInput struct {
	Name          *string
	LicenseNumber *string
	Phone         *string
	Email         *string
	Availability  *model.Availability
}

// Update rewrites the driver. Unique fields are only checked when they change.
func (s *DriverService) Update(ctx context.Context, id uuid.UUID, input UpdateDriverInput) (*model.Driver, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := DriverInput{
		Name:          current.Name,
		LicenseNumber: current.LicenseNumber,
		Phone:         current.Phone,
		Email:         current.Email,
		Availability:  current.Availability,
	}
	if input.Name != nil {
		merged.Name = *input.Name
	}
	if input.LicenseNumber != nil {
		merged.LicenseNumber = *input.LicenseNumber
	}
	if input.Phone != nil {
		merged.Phone = *input.Phone
	}
	if input.Email != nil {
		merged.Email = *input.Email
	}
	if input.Availability != nil {
		merged.Availability = *input.Availability
	}

	updated, err := s.normalize(merged)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.AccountID = current.AccountID
	updated.CreatedAt = current.CreatedAt

	if updated.LicenseNumber != current.LicenseNumber {
		if err := s.ensureLicenseFree(ctx, updated.LicenseNumber); err != nil {
			return nil, err
		}
	}
	if updated.Phone != current.Phone {
		if err := s.ensurePhoneFree(ctx, updated.Phone); err != nil {
			return nil, err
		}
	}

	rows, err := s.drivers.Update(ctx, updated)
	if err := affected("update driver", rows, err, "driver"); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetAvailability is the driver's own status switch. It does not look at
// the driver's bookings, so a driver may go Offline mid-trip.
func (s *DriverService) SetAvailability(ctx context.Context, id uuid.UUID, availability model.Availability) error {
	if !availability.Valid() {
		return invalid("unknown availability %q", availability)
	}
	rows, err := s.drivers.SetAvailability(ctx, id, availability)
	if err := affected("set driver availability", rows, err, "driver"); err != nil {
		return err
	}
	s.log.Debug().Str("driver_id", id.String()).Str("availability", string(availability)).Msg("driver availability changed")
	return nil
}

func (s *DriverService) SetAvailable(ctx context.Context, id uuid.UUID) error {
	return s.SetAvailability(ctx, id, model.AvailabilityAvailable)
}

func (s *DriverService) SetBusy(ctx context.Context, id uuid.UUID) error {
	return s.SetAvailability(ctx, id, model.AvailabilityBusy)
}

func (s *DriverService) SetOffline(ctx context.Context, id uuid.UUID) error {
	return s.SetAvailability(ctx, id, model.AvailabilityOffline)
}

func (s *DriverService) Get(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load driver", err, "driver")
	}
	return driver, nil
}

func (s *DriverService) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.Driver, error) {
	driver, err := s.drivers.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, storeErr("load driver", err, "driver")
	}
	return driver, nil
}

func (s *DriverService) GetByLicense(ctx context.Context, license string) (*model.Driver, error) {
	driver, err := s.drivers.GetByLicense(ctx, strings.ToUpper(strings.TrimSpace(license)))
	if err != nil {
		return nil, storeErr("load driver", err, "driver")
	}
	return driver, nil
}

type ListDriversOptions struct {
	Availability *model.Availability
	Search       string
	Limit        int
	Offset       int
}

func (s *DriverService) List(ctx context.Context, opts ListDriversOptions) ([]model.Driver, error) {
	if opts.Availability != nil && !opts.Availability.Valid() {
		return nil, invalid("unknown availability %q", *opts.Availability)
	}
	drivers, err := s.drivers.List(ctx, repository.DriverFilter{
		Availability: opts.Availability,
		Search:       strings.TrimSpace(opts.Search),
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	})
	if err != nil {
		return nil, storeErr("list drivers", err, "driver")
	}
	return drivers, nil
}

func (s *DriverService) ListAvailable(ctx context.Context) ([]model.Driver, error) {
	available := model.AvailabilityAvailable
	return s.List(ctx, ListDriversOptions{Availability: &available})
}

func (s *DriverService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.drivers.Delete(ctx, id)
	return affected("delete driver", rows, err, "driver")
}

func (s *DriverService) Count(ctx context.Context) (int64, error) {
	total, err := s.drivers.Count(ctx, nil)
	if err != nil {
		return 0, storeErr("count drivers", err, "driver")
	}
	return total, nil
}

func (s *DriverService) CountAvailable(ctx context.Context) (int64, error) {
	available := model.AvailabilityAvailable
	total, err := s.drivers.Count(ctx, &available)
	if err != nil {
		return 0, storeErr("count drivers", err, "driver")
	}
	return total, nil
}

func (s *DriverService) normalize(input DriverInput) (*model.Driver, error) {
	name, err := requireText("name", input.Name, 100)
	if err != nil {
		return nil, err
	}
	license, err := normalizeLicense(input.LicenseNumber)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}
	email, err := normalizeOptionalEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Availability != "" && !input.Availability.Valid() {
		return nil, invalid("unknown availability %q", input.Availability)
	}
	return &model.Driver{
		Name:          name,
		LicenseNumber: license,
		Phone:         phone,
		Email:         email,
		Availability:  input.Availability,
		AccountID:     input.AccountID,
	}, nil
}

func (s *DriverService) ensureLicenseFree(ctx context.Context, license string) error {
	taken, err := s.drivers.ExistsByLicense(ctx, license)
	if err != nil {
		return storeErr("check license", err, "driver")
	}
	if taken {
		return conflict("license number %s is already registered", license)
	}
	return nil
}

func (s *DriverService) ensurePhoneFree(ctx context.Context, phone string) error {
	taken, err := s.drivers.ExistsByPhone(ctx, phone)
	if err != nil {
		return storeErr("check phone", err, "driver")
	}
	if taken {
		return conflict("phone %s is already registered", phone)
	}
	return nil
}
