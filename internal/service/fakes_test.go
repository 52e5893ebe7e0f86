package service

import (
	"context"
	"sort"
	"time"

	"github.com/deppfellow/booking-now/internal/lib/email"
	"github.com/deppfellow/booking-now/internal/metrics"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/repository"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeTenants struct {
	byID    map[uuid.UUID]*model.Tenant
	created []repository.CreateTenantParams
	owners  []repository.CreateUserParams
}

func (f *fakeTenants) GetByID(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("tenants")
	}
	return t, nil
}

func (f *fakeTenants) List(context.Context) ([]model.Tenant, error) {
	out := make([]model.Tenant, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTenants) CreateWithOwner(_ context.Context, tp repository.CreateTenantParams, owner repository.CreateUserParams) (*model.Tenant, *model.User, error) {
	f.created = append(f.created, tp)
	f.owners = append(f.owners, owner)

	tenant := &model.Tenant{
		Base:     model.Base{ID: uuid.New()},
		Name:     tp.Name,
		Slug:     tp.Slug,
		Email:    tp.Email,
		Timezone: tp.Timezone,
		IsActive: true,
	}
	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        owner.Email,
		Name:         owner.Name,
		PasswordHash: owner.PasswordHash,
		Role:         model.RoleTenantAdmin,
		TenantID:     &tenant.ID,
		IsActive:     true,
	}
	return tenant, user, nil
}

type fakeUsers struct {
	byEmail map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*model.User{}}
}

func (f *fakeUsers) add(u *model.User) *model.User {
	f.byEmail[repository.NormalizeEmail(u.Email)] = u
	return u
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sqlerr.NotFound("users")
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[repository.NormalizeEmail(email)]
	if !ok {
		return nil, sqlerr.NotFound("users")
	}
	return u, nil
}

func (f *fakeUsers) FindOrCreateClient(_ context.Context, p repository.CreateUserParams) (*model.User, error) {
	if u, ok := f.byEmail[repository.NormalizeEmail(p.Email)]; ok {
		return u, nil
	}
	return f.add(&model.User{
		Base:     model.Base{ID: uuid.New()},
		Email:    repository.NormalizeEmail(p.Email),
		Name:     p.Name,
		Phone:    p.Phone,
		Role:     model.RoleClient,
		TenantID: p.TenantID,
		IsActive: true,
	}), nil
}

func (f *fakeUsers) EnsureAdmin(_ context.Context, email, name, hash string) (*model.User, bool, error) {
	if u, ok := f.byEmail[repository.NormalizeEmail(email)]; ok {
		return u, false, nil
	}
	return f.add(&model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        repository.NormalizeEmail(email),
		Name:         name,
		PasswordHash: &hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}), true, nil
}

type fakeCatalog struct {
	services      map[uuid.UUID]*model.Service
	professionals map[uuid.UUID]*model.Professional
}

func (f *fakeCatalog) GetService(_ context.Context, tenantID, serviceID uuid.UUID) (*model.Service, error) {
	svc, ok := f.services[serviceID]
	if !ok || svc.TenantID != tenantID {
		return nil, sqlerr.NotFound("services")
	}
	return svc, nil
}

func (f *fakeCatalog) GetActiveService(ctx context.Context, tenantID, serviceID uuid.UUID) (*model.Service, error) {
	svc, err := f.GetService(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, sqlerr.NotFound("services")
	}
	return svc, nil
}

func (f *fakeCatalog) ListActiveServices(_ context.Context, tenantID uuid.UUID) ([]model.Service, error) {
	var out []model.Service
	for _, svc := range f.services {
		if svc.TenantID == tenantID && svc.IsActive {
			out = append(out, *svc)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListAllActiveServices(context.Context) ([]model.Service, error) {
	var out []model.Service
	for _, svc := range f.services {
		if svc.IsActive {
			out = append(out, *svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCatalog) GetAvailableProfessional(_ context.Context, tenantID, id uuid.UUID) (*model.Professional, error) {
	pro, ok := f.professionals[id]
	if !ok || pro.TenantID != tenantID || !pro.IsAvailable {
		return nil, sqlerr.NotFound("professionals")
	}
	return pro, nil
}

func (f *fakeCatalog) ListAvailableProfessionals(_ context.Context, tenantID uuid.UUID) ([]model.Professional, error) {
	var out []model.Professional
	for _, pro := range f.professionals {
		if pro.TenantID == tenantID && pro.IsAvailable {
			out = append(out, *pro)
		}
	}
	return out, nil
}

type fakeAvailability struct {
	rows       map[uuid.UUID][]model.Availability
	resetCalls int
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{rows: map[uuid.UUID][]model.Availability{}}
}

func (f *fakeAvailability) ListByService(_ context.Context, serviceID uuid.UUID) ([]model.Availability, error) {
	return f.rows[serviceID], nil
}

func (f *fakeAvailability) ListActiveByService(_ context.Context, serviceID uuid.UUID) ([]model.Availability, error) {
	var out []model.Availability
	for _, a := range f.rows[serviceID] {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func toRows(serviceID uuid.UUID, windows []model.AvailabilityInput) []model.Availability {
	out := make([]model.Availability, len(windows))
	for i, w := range windows {
		out[i] = model.Availability{
			ID:        uuid.New(),
			ServiceID: serviceID,
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
			IsActive:  w.Active(),
		}
	}
	return out
}

func (f *fakeAvailability) ReplaceForService(_ context.Context, serviceID uuid.UUID, windows []model.AvailabilityInput) ([]model.Availability, error) {
	f.rows[serviceID] = toRows(serviceID, windows)
	return f.rows[serviceID], nil
}

func (f *fakeAvailability) ResetAll(_ context.Context, services []model.Service, windows []model.AvailabilityInput, onService func(model.Service)) (int64, error) {
	f.resetCalls++
	f.rows = map[uuid.UUID][]model.Availability{}

	var total int64
	for _, svc := range services {
		f.rows[svc.ID] = toRows(svc.ID, windows)
		total += int64(len(windows))
		if onService != nil {
			onService(svc)
		}
	}
	return total, nil
}

type fakeBookings struct {
	users    *fakeUsers
	catalog  *fakeCatalog
	tenant   *model.Tenant
	stored   []*model.BookingDetails
	scopes   map[uuid.UUID]string
	due      []model.BookingDetails
	lastList model.BookingFilter
	// raceTo, when set, makes UpdateStatus behave as if another request won.
	raceTo bool
}

func (f *fakeBookings) CreateExclusive(_ context.Context, p repository.CreateBookingParams, scope model.ConflictScope) (*model.BookingDetails, error) {
	for _, b := range f.stored {
		if f.scopes[b.ID] == scope.Key() && b.Status.IsActive() &&
			p.Start.Before(b.EndDateTime) && b.StartDateTime.Before(p.End) {
			return nil, repository.ErrBookingConflict
		}
	}

	svc := f.catalog.services[p.ServiceID]
	d := &model.BookingDetails{
		ID:             uuid.New(),
		TenantID:       p.TenantID,
		TenantName:     f.tenant.Name,
		TenantTimezone: f.tenant.Timezone,
		ServiceID:      p.ServiceID,
		ProfessionalID: p.ProfessionalID,
		StartDateTime:  p.Start,
		EndDateTime:    p.End,
		Service:        model.BookingService{Name: svc.Name, Duration: svc.Duration, Price: svc.Price},
		TotalPrice:     p.TotalPrice,
		Notes:          p.Notes,
		Status:         model.BookingStatusPending,
	}
	if p.ProfessionalID != nil {
		pro := f.catalog.professionals[*p.ProfessionalID]
		d.Professional = &model.BookingPerson{Name: pro.Name, Email: pro.Email}
	}
	for _, u := range f.users.byEmail {
		if u.ID == p.ClientID {
			d.Client = model.BookingPerson{Name: u.Name, Email: u.Email}
		}
	}

	if f.scopes == nil {
		f.scopes = map[uuid.UUID]string{}
	}
	f.scopes[d.ID] = scope.Key()
	f.stored = append(f.stored, d)
	return d, nil
}

func (f *fakeBookings) GetDetailsForTenant(_ context.Context, tenantID, id uuid.UUID) (*model.BookingDetails, error) {
	for _, b := range f.stored {
		if b.ID == id && b.TenantID == tenantID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, sqlerr.NotFound("bookings")
}

func (f *fakeBookings) List(_ context.Context, filter model.BookingFilter) (*model.PaginatedResponse[model.BookingDetails], error) {
	f.lastList = filter
	var data []model.BookingDetails
	for _, b := range f.stored {
		if filter.TenantID == nil || b.TenantID == *filter.TenantID {
			data = append(data, *b)
		}
	}
	return &model.PaginatedResponse[model.BookingDetails]{
		Data:   data,
		Total:  len(data),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, tenantID, id uuid.UUID, from, to model.BookingStatus) (*model.BookingDetails, error) {
	if f.raceTo {
		return nil, repository.ErrBookingStatusChanged
	}
	for _, b := range f.stored {
		if b.ID == id && b.TenantID == tenantID && b.Status == from {
			b.Status = to
			copied := *b
			return &copied, nil
		}
	}
	return nil, repository.ErrBookingStatusChanged
}

func (f *fakeBookings) ListBusy(_ context.Context, scope model.ConflictScope, from, to time.Time) ([]model.TimeRange, error) {
	var out []model.TimeRange
	for _, b := range f.stored {
		if f.scopes[b.ID] == scope.Key() && b.Status.IsActive() &&
			b.StartDateTime.Before(to) && from.Before(b.EndDateTime) {
			out = append(out, model.TimeRange{Start: b.StartDateTime, End: b.EndDateTime})
		}
	}
	return out, nil
}

func (f *fakeBookings) ClaimDueReminders(context.Context, time.Time, time.Duration, int) ([]model.BookingDetails, error) {
	due := f.due
	f.due = nil
	return due, nil
}

type fakeNotifications struct {
	created []repository.CreateNotificationParams
	err     error
	read    map[uuid.UUID]bool
}

func (f *fakeNotifications) Create(_ context.Context, p repository.CreateNotificationParams) (*model.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, p)
	return &model.Notification{ID: uuid.New(), TenantID: p.TenantID, BookingID: p.BookingID, Type: p.Type, Title: p.Title, Message: p.Message}, nil
}

func (f *fakeNotifications) List(_ context.Context, filter repository.NotificationFilter) (*model.PaginatedResponse[model.Notification], error) {
	return &model.PaginatedResponse[model.Notification]{Data: []model.Notification{}, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, tenantID, id uuid.UUID) (*model.Notification, error) {
	if !f.read[id] {
		return nil, sqlerr.NotFound("notifications")
	}
	return &model.Notification{ID: id, TenantID: tenantID, IsRead: true}, nil
}

func (f *fakeNotifications) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return int64(len(f.created)), nil
}

type fakeSessions struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeSessions) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeSessions) IsRevoked(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

type queuedEmail struct {
	taskType string
	to       string
	data     email.BookingEmail
}

type fakeQueue struct {
	sent []queuedEmail
	err  error
}

func (f *fakeQueue) EnqueueBookingEmail(_ context.Context, taskType, to string, data email.BookingEmail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, queuedEmail{taskType: taskType, to: to, data: data})
	return nil
}

func (f *fakeQueue) tasks() []string {
	out := make([]string, len(f.sent))
	for i, e := range f.sent {
		out[i] = e.taskType
	}
	return out
}

// fixture is one active tenant in Europe/Madrid with a 30 minute service and
// one available professional. The clock reads Monday 2 March 2026, 08:00 UTC.
type fixture struct {
	logger        zerolog.Logger
	metrics       *metrics.Metrics
	now           time.Time
	tenants       *fakeTenants
	users         *fakeUsers
	catalog       *fakeCatalog
	availability  *fakeAvailability
	bookings      *fakeBookings
	notifications *fakeNotifications
	queue         *fakeQueue
	tenant        *model.Tenant
	service       *model.Service
	professional  *model.Professional
}

func newFixture() *fixture {
	tenant := &model.Tenant{
		Base:     model.Base{ID: uuid.New()},
		Name:     "Studio Norte",
		Slug:     "studio-norte",
		Email:    "hello@studio.test",
		Timezone: "Europe/Madrid",
		IsActive: true,
	}
	svc := &model.Service{
		Base:     model.Base{ID: uuid.New()},
		TenantID: tenant.ID,
		Name:     "Haircut",
		Duration: 30,
		Price:    decimal.RequireFromString("25.50"),
		IsActive: true,
	}
	pro := &model.Professional{
		Base:        model.Base{ID: uuid.New()},
		TenantID:    tenant.ID,
		UserID:      uuid.New(),
		IsAvailable: true,
		Name:        "Ana",
		Email:       "ana@studio.test",
	}

	users := newFakeUsers()
	catalog := &fakeCatalog{
		services:      map[uuid.UUID]*model.Service{svc.ID: svc},
		professionals: map[uuid.UUID]*model.Professional{pro.ID: pro},
	}

	return &fixture{
		logger:        zerolog.Nop(),
		metrics:       metrics.New(),
		now:           time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		tenants:       &fakeTenants{byID: map[uuid.UUID]*model.Tenant{tenant.ID: tenant}},
		users:         users,
		catalog:       catalog,
		availability:  newFakeAvailability(),
		bookings:      &fakeBookings{users: users, catalog: catalog, tenant: tenant},
		notifications: &fakeNotifications{read: map[uuid.UUID]bool{}},
		queue:         &fakeQueue{},
		tenant:        tenant,
		service:       svc,
		professional:  pro,
	}
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) notificationService() *NotificationService {
	return &NotificationService{
		notifications:  f.notifications,
		bookings:       f.bookings,
		queue:          f.queue,
		metrics:        f.metrics,
		logger:         &f.logger,
		reminderWindow: 24 * time.Hour,
		now:            f.clock,
	}
}

func (f *fixture) bookingService() *BookingService {
	return &BookingService{
		tenants:       f.tenants,
		users:         f.users,
		catalog:       f.catalog,
		availability:  f.availability,
		bookings:      f.bookings,
		notifications: f.notificationService(),
		metrics:       f.metrics,
		logger:        &f.logger,
		defaultLoc:    time.UTC,
		now:           f.clock,
	}
}
