package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/repository"
)

type VehicleService struct {
	vehicles VehicleStore
	drivers  DriverStore
	now      func() time.Time
}

func NewVehicleService(vehicles VehicleStore, drivers DriverStore) *VehicleService {
	return &VehicleService{
		vehicles: vehicles,
		drivers:  drivers,
		now:      time.Now,
	}
}

type VehicleInput struct {
	Model        string
	LicensePlate string
	VehicleType  model.VehicleType
	Color        string
	Year         *int
	DriverID     *uuid.UUID
}

func (s *VehicleService) Create(ctx context.Context, input VehicleInput) (*model.Vehicle, error) {
	vehicle, err := s.normalize(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePlateFree(ctx, vehicle.LicensePlate); err != nil {
		return nil, err
	}
	if vehicle.DriverID != nil {
		if err := s.ensureDriverFree(ctx, *vehicle.DriverID, uuid.Nil); err != nil {
			return nil, err
		}
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, storeErr("create vehicle", err, "vehicle")
	}
	return vehicle, nil
}

type UpdateVehicleInput struct {
	Model        *string
	LicensePlate *string
	VehicleType  *model.VehicleType
	Color        *string
	Year         *int
	DriverID     *uuid.UUID
	// UnassignDriver clears the driver; DriverID is ignored when set.
	UnassignDriver bool
}

func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*model.Vehicle, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := VehicleInput{
		Model:        current.Model,
		LicensePlate: current.LicensePlate,
		VehicleType:  current.VehicleType,
		Color:        current.Color,
		Year:         current.Year,
		DriverID:     current.DriverID,
	}
	if input.Model != nil {
		merged.Model = *input.Model
	}
	if input.LicensePlate != nil {
		merged.LicensePlate = *input.LicensePlate
	}
	if input.VehicleType != nil {
		merged.VehicleType = *input.VehicleType
	}
	if input.Color != nil {
		merged.Color = *input.Color
	}
	if input.Year != nil {
		merged.Year = input.Year
	}
	switch {
	case input.UnassignDriver:
		merged.DriverID = nil
	case input.DriverID != nil:
		merged.DriverID = input.DriverID
	}

	updated, err := s.normalize(merged)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt

	if updated.LicensePlate != current.LicensePlate {
		if err := s.ensurePlateFree(ctx, updated.LicensePlate); err != nil {
			return nil, err
		}
	}
	if updated.DriverID != nil && (current.DriverID == nil || *updated.DriverID != *current.DriverID) {
		if err := s.ensureDriverFree(ctx, *updated.DriverID, current.ID); err != nil {
			return nil, err
		}
	}

	rows, err := s.vehicles.Update(ctx, updated)
	if err := affected("update vehicle", rows, err, "vehicle"); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *VehicleService) AssignDriver(ctx context.Context, id, driverID uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.DriverID != nil && *vehicle.DriverID == driverID {
		return vehicle, nil
	}
	if err := s.ensureDriverFree(ctx, driverID, vehicle.ID); err != nil {
		return nil, err
	}
	rows, err := s.vehicles.SetDriver(ctx, id, &driverID)
	if err := affected("assign vehicle driver", rows, err, "vehicle"); err != nil {
		return nil, err
	}
	vehicle.DriverID = &driverID
	return vehicle, nil
}

func (s *VehicleService) UnassignDriver(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.vehicles.SetDriver(ctx, id, nil)
	if err := affected("unassign vehicle driver", rows, err, "vehicle"); err != nil {
		return nil, err
	}
	vehicle.DriverID = nil
	return vehicle, nil
}

func (s *VehicleService) Get(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load vehicle", err, "vehicle")
	}
	return vehicle, nil
}

func (s *VehicleService) GetByDriver(ctx context.Context, driverID uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.vehicles.GetByDriver(ctx, driverID)
	if err != nil {
		return nil, storeErr("load vehicle", err, "vehicle")
	}
	return vehicle, nil
}

func (s *VehicleService) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	vehicle, err := s.vehicles.GetByPlate(ctx, strings.ToUpper(strings.TrimSpace(plate)))
	if err != nil {
		return nil, storeErr("load vehicle", err, "vehicle")
	}
	return vehicle, nil
}

type ListVehiclesOptions struct {
	Type     *model.VehicleType
	Assigned *bool
	Search   string
	Limit    int
	Offset   int
}

func (s *VehicleService) List(ctx context.Context, opts ListVehiclesOptions) ([]model.Vehicle, error) {
	if opts.Type != nil && !opts.Type.Valid() {
		return nil, invalid("unknown vehicle type %q", *opts.Type)
	}
	vehicles, err := s.vehicles.List(ctx, repository.VehicleFilter{
		Type:     opts.Type,
		Assigned: opts.Assigned,
		Search:   strings.TrimSpace(opts.Search),
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	})
	if err != nil {
		return nil, storeErr("list vehicles", err, "vehicle")
	}
	return vehicles, nil
}

func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.vehicles.Delete(ctx, id)
	return affected("delete vehicle", rows, err, "vehicle")
}

func (s *VehicleService) Count(ctx context.Context) (int64, error) {
	total, err := s.vehicles.Count(ctx)
	if err != nil {
		return 0, storeErr("count vehicles", err, "vehicle")
	}
	return total, nil
}

func (s *VehicleService) normalize(input VehicleInput) (*model.Vehicle, error) {
	vehicleModel, err := requireText("model", input.Model, 100)
	if err != nil {
		return nil, err
	}
	plate, err := normalizePlate(input.LicensePlate)
	if err != nil {
		return nil, err
	}
	vehicleType := input.VehicleType
	if vehicleType == "" {
		vehicleType = model.VehicleTypeSedan
	}
	if !vehicleType.Valid() {
		return nil, invalid("unknown vehicle type %q", vehicleType)
	}
	if err := validateYear(input.Year, s.now()); err != nil {
		return nil, err
	}
	return &model.Vehicle{
		Model:        vehicleModel,
		LicensePlate: plate,
		VehicleType:  vehicleType,
		Color:        strings.TrimSpace(input.Color),
		Year:         input.Year,
		DriverID:     input.DriverID,
	}, nil
}

func (s *VehicleService) ensurePlateFree(ctx context.Context, plate string) error {
	taken, err := s.vehicles.ExistsByPlate(ctx, plate)
	if err != nil {
		return storeErr("check plate", err, "vehicle")
	}
	if taken {
		return conflict("license plate %s is already registered", plate)
	}
	return nil
}

// ensureDriverFree checks that the driver exists and has no vehicle other than self.
func (s *VehicleService) ensureDriverFree(ctx context.Context, driverID, self uuid.UUID) error {
	if _, err := s.drivers.GetByID(ctx, driverID); err != nil {
		return storeErr("load driver", err, "driver")
	}
	existing, err := s.vehicles.GetByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return storeErr("check driver vehicle", err, "vehicle")
	}
	if existing.ID != self {
		return conflict("driver already has vehicle %s", existing.LicensePlate)
	}
	return nil
}
