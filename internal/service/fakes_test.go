package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/repository"
)

var epoch = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type fakeBookings struct {
	mu     sync.Mutex
	items  map[uuid.UUID]model.Booking
	logs   []model.BookingStatusLog
	seq    int
	err    error
	logErr error
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{items: map[uuid.UUID]model.Booking{}}
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seq++
	b.ID = uuid.New()
	b.CreatedAt = epoch.Add(time.Duration(f.seq) * time.Minute)
	f.items[b.ID] = *b
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (f *fakeBookings) List(_ context.Context, filter repository.BookingFilter) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Booking, 0)
	for _, b := range f.items {
		if filter.PassengerID != nil && b.PassengerID != *filter.PassengerID {
			continue
		}
		if filter.DriverID != nil && (b.DriverID == nil || *b.DriverID != *filter.DriverID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		if filter.Search != "" && !strings.Contains(b.PickupLocation+b.Destination, filter.Search) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBookings) Update(_ context.Context, b *model.Booking) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	current, ok := f.items[b.ID]
	if !ok {
		return 0, nil
	}
	updated := *b
	updated.CreatedAt = current.CreatedAt
	f.items[b.ID] = updated
	return 1, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, id uuid.UUID, status model.BookingStatus, completedAt *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	b, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	b.Status = status
	b.CompletedAt = completedAt
	f.items[id] = b
	return 1, nil
}

func (f *fakeBookings) AssignDriver(_ context.Context, id, driverID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	b, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	b.DriverID = &driverID
	b.Status = model.BookingStatusConfirmed
	b.CompletedAt = nil
	f.items[id] = b
	return 1, nil
}

func (f *fakeBookings) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakeBookings) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.items)), nil
}

func (f *fakeBookings) SumCompletedFare(_ context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var total float64
	for _, b := range f.items {
		if b.Status == model.BookingStatusCompleted && b.Fare != nil {
			total += *b.Fare
		}
	}
	return total, nil
}

func (f *fakeBookings) LogStatusChange(_ context.Context, entry *model.BookingStatusLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeBookings) StatusHistory(_ context.Context, bookingID uuid.UUID) ([]model.BookingStatusLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.BookingStatusLog, 0)
	for _, entry := range f.logs {
		if entry.BookingID == bookingID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func containsStatus(list []model.BookingStatus, s model.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeDrivers struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Driver
	err   error
	// availabilityErr fails SetAvailability for the given driver.
	availabilityErr map[uuid.UUID]error
}

func newFakeDrivers() *fakeDrivers {
	return &fakeDrivers{
		items:           map[uuid.UUID]model.Driver{},
		availabilityErr: map[uuid.UUID]error{},
	}
}

func (f *fakeDrivers) add(name string, availability model.Availability) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.items[id] = model.Driver{ID: id, Name: name, Availability: availability, LicenseNumber: "DL-" + id.String()[:8], Phone: "+1" + id.String()[:10]}
	return id
}

func (f *fakeDrivers) availability(id uuid.UUID) model.Availability {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Availability
}

func (f *fakeDrivers) Create(_ context.Context, d *model.Driver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	d.ID = uuid.New()
	d.CreatedAt = epoch
	f.items[d.ID] = *d
	return nil
}

func (f *fakeDrivers) GetByID(_ context.Context, id uuid.UUID) (*model.Driver, error) {
	return f.find(func(d model.Driver) bool { return d.ID == id })
}

func (f *fakeDrivers) GetByAccountID(_ context.Context, accountID uuid.UUID) (*model.Driver, error) {
	return f.find(func(d model.Driver) bool { return d.AccountID != nil && *d.AccountID == accountID })
}

func (f *fakeDrivers) GetByLicense(_ context.Context, license string) (*model.Driver, error) {
	return f.find(func(d model.Driver) bool { return d.LicenseNumber == license })
}

func (f *fakeDrivers) find(match func(model.Driver) bool) (*model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.items {
		if match(d) {
			found := d
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDrivers) List(_ context.Context, filter repository.DriverFilter) ([]model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Driver, 0)
	for _, d := range f.items {
		if filter.Availability != nil && d.Availability != *filter.Availability {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDrivers) Update(_ context.Context, d *model.Driver) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.items[d.ID]; !ok {
		return 0, nil
	}
	f.items[d.ID] = *d
	return 1, nil
}

func (f *fakeDrivers) SetAvailability(_ context.Context, id uuid.UUID, availability model.Availability) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.availabilityErr[id]; err != nil {
		return 0, err
	}
	d, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	d.Availability = availability
	f.items[id] = d
	return 1, nil
}

func (f *fakeDrivers) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakeDrivers) ExistsByLicense(_ context.Context, license string) (bool, error) {
	d, err := f.GetByLicense(context.Background(), license)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return d != nil, err
}

func (f *fakeDrivers) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	d, err := f.find(func(d model.Driver) bool { return d.Phone == phone })
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return d != nil, err
}

func (f *fakeDrivers) Count(_ context.Context, availability *model.Availability) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, d := range f.items {
		if availability == nil || d.Availability == *availability {
			n++
		}
	}
	return n, nil
}

type fakePassengers struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Passenger
	err   error
}

func newFakePassengers() *fakePassengers {
	return &fakePassengers{items: map[uuid.UUID]model.Passenger{}}
}

func (f *fakePassengers) add(name string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.items[id] = model.Passenger{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com", Phone: "+1" + id.String()[:10]}
	return id
}

func (f *fakePassengers) Create(_ context.Context, p *model.Passenger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	p.ID = uuid.New()
	p.CreatedAt = epoch
	f.items[p.ID] = *p
	return nil
}

func (f *fakePassengers) find(match func(model.Passenger) bool) (*model.Passenger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.items {
		if match(p) {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePassengers) GetByID(_ context.Context, id uuid.UUID) (*model.Passenger, error) {
	return f.find(func(p model.Passenger) bool { return p.ID == id })
}

func (f *fakePassengers) GetByAccountID(_ context.Context, accountID uuid.UUID) (*model.Passenger, error) {
	return f.find(func(p model.Passenger) bool { return p.AccountID != nil && *p.AccountID == accountID })
}

func (f *fakePassengers) GetByEmail(_ context.Context, email string) (*model.Passenger, error) {
	return f.find(func(p model.Passenger) bool { return strings.EqualFold(p.Email, email) })
}

func (f *fakePassengers) List(_ context.Context, filter repository.PassengerFilter) ([]model.Passenger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Passenger, 0)
	for _, p := range f.items {
		if filter.Search != "" && !strings.Contains(p.Name, filter.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePassengers) Update(_ context.Context, p *model.Passenger) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.items[p.ID]; !ok {
		return 0, nil
	}
	f.items[p.ID] = *p
	return 1, nil
}

func (f *fakePassengers) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakePassengers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (f *fakePassengers) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	_, err := f.find(func(p model.Passenger) bool { return p.Phone == phone })
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (f *fakePassengers) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.items)), nil
}

type fakeVehicles struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Vehicle
}

func newFakeVehicles() *fakeVehicles {
	return &fakeVehicles{items: map[uuid.UUID]model.Vehicle{}}
}

func (f *fakeVehicles) Create(_ context.Context, v *model.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = uuid.New()
	v.CreatedAt = epoch
	f.items[v.ID] = *v
	return nil
}

func (f *fakeVehicles) find(match func(model.Vehicle) bool) (*model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.items {
		if match(v) {
			found := v
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVehicles) GetByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	return f.find(func(v model.Vehicle) bool { return v.ID == id })
}

func (f *fakeVehicles) GetByDriver(_ context.Context, driverID uuid.UUID) (*model.Vehicle, error) {
	return f.find(func(v model.Vehicle) bool { return v.DriverID != nil && *v.DriverID == driverID })
}

func (f *fakeVehicles) GetByPlate(_ context.Context, plate string) (*model.Vehicle, error) {
	return f.find(func(v model.Vehicle) bool { return v.LicensePlate == plate })
}

func (f *fakeVehicles) List(_ context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Vehicle, 0)
	for _, v := range f.items {
		if filter.Type != nil && v.VehicleType != *filter.Type {
			continue
		}
		if filter.Assigned != nil && (v.DriverID != nil) != *filter.Assigned {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVehicles) Update(_ context.Context, v *model.Vehicle) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[v.ID]; !ok {
		return 0, nil
	}
	f.items[v.ID] = *v
	return 1, nil
}

func (f *fakeVehicles) SetDriver(_ context.Context, id uuid.UUID, driverID *uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	v.DriverID = driverID
	f.items[id] = v
	return 1, nil
}

func (f *fakeVehicles) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakeVehicles) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	_, err := f.GetByPlate(ctx, plate)
	return err == nil, nil
}

func (f *fakeVehicles) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

type fakePayments struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{items: map[uuid.UUID]model.Payment{}}
}

func (f *fakePayments) Create(_ context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	f.items[p.ID] = *p
	return nil
}

func (f *fakePayments) find(match func(model.Payment) bool) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if match(p) {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayments) GetByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	return f.find(func(p model.Payment) bool { return p.ID == id })
}

func (f *fakePayments) GetByBooking(_ context.Context, bookingID uuid.UUID) (*model.Payment, error) {
	return f.find(func(p model.Payment) bool { return p.BookingID == bookingID })
}

func (f *fakePayments) List(_ context.Context, filter repository.PaymentFilter) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Payment, 0)
	for _, p := range f.items {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Method != nil && p.Method != *filter.Method {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePayments) Update(_ context.Context, p *model.Payment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.items[p.ID]
	if !ok {
		return 0, nil
	}
	current.Amount = p.Amount
	current.Method = p.Method
	current.Status = p.Status
	f.items[p.ID] = current
	return 1, nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, id uuid.UUID, status model.PaymentStatus, paidAt *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	p.Status = status
	if paidAt != nil {
		p.PaidAt = *paidAt
	}
	f.items[id] = p
	return 1, nil
}

func (f *fakePayments) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakePayments) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	_, err := f.GetByBooking(ctx, bookingID)
	return err == nil, nil
}

func (f *fakePayments) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

func (f *fakePayments) SumCompleted(ctx context.Context) (float64, error) {
	byMethod, _ := f.RevenueByMethod(ctx)
	var total float64
	for _, v := range byMethod {
		total += v
	}
	return total, nil
}

func (f *fakePayments) RevenueByMethod(_ context.Context) (map[model.PaymentMethod]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[model.PaymentMethod]float64{}
	for _, p := range f.items {
		if p.Status == model.PaymentStatusCompleted {
			out[p.Method] += p.Amount
		}
	}
	return out, nil
}

type fakeAccounts struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{items: map[uuid.UUID]model.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = epoch
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.Username == username {
			found := a
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccounts) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id uuid.UUID, hash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return 0, nil
	}
	a.PasswordHash = hash
	f.items[id] = a
	return 1, nil
}

func (f *fakeAccounts) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return 0, nil
	}
	delete(f.items, id)
	return 1, nil
}

func (f *fakeAccounts) List(_ context.Context, role *model.UserRole) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Account, 0)
	for _, a := range f.items {
		if role == nil || a.Role == *role {
			out = append(out, a)
		}
	}
	return out, nil
}

type memoryStatsCache struct {
	stats *model.DashboardStats
	sets  int
}

func (c *memoryStatsCache) Get(context.Context) (*model.DashboardStats, bool) {
	return c.stats, c.stats != nil
}

func (c *memoryStatsCache) Set(_ context.Context, stats *model.DashboardStats) {
	c.stats = stats
	c.sets++
}

func (c *memoryStatsCache) Invalidate(context.Context) {
	c.stats = nil
}

type countingRecorder struct {
	created     int
	transitions []model.BookingStatus
	failures    []string
}

func (r *countingRecorder) BookingCreated() { r.created++ }

func (r *countingRecorder) BookingTransition(status model.BookingStatus) {
	r.transitions = append(r.transitions, status)
}

func (r *countingRecorder) SideEffectFailed(step string) {
	r.failures = append(r.failures, step)
}
