package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/internal/repository"
	"github.com/noah-isme/beauty-booking-api/pkg/money"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

var riyadh = mustLocation("Asia/Riyadh")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 3*60*60)
	}
	return loc
}

func clk(raw string) timerange.Clock {
	c, err := timerange.ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func span(start, end string) timerange.Range {
	return timerange.New(clk(start), clk(end))
}

func onDate(raw string) time.Time {
	d, err := timerange.ParseDate(raw, riyadh)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeProviders struct {
	items map[string]*models.Provider
	err   error
}

func (f *fakeProviders) FindByID(_ context.Context, id string) (*models.Provider, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

type fakeServices struct {
	items map[string]*models.Service
}

func (f *fakeServices) FindByID(_ context.Context, id string) (*models.Service, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

type fixedSettings struct {
	settings models.AvailabilitySettings
	err      error
}

func (f *fixedSettings) Get(_ context.Context, providerID string) (*models.AvailabilitySettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := f.settings
	cp.ProviderID = providerID
	return &cp, nil
}

type fakeSchedules struct {
	shifts     []models.WorkShift
	timeOff    []models.TimeOff
	ramadan    *models.RamadanSchedule
	shiftsErr  error
	timeOffErr error
}

func (f *fakeSchedules) ListActiveShifts(context.Context, string) ([]models.WorkShift, error) {
	return f.shifts, f.shiftsErr
}

func (f *fakeSchedules) ListTimeOff(_ context.Context, _ sqlx.QueryerContext, _ string, from, to time.Time) ([]models.TimeOff, error) {
	if f.timeOffErr != nil {
		return nil, f.timeOffErr
	}
	var out []models.TimeOff
	for _, off := range f.timeOff {
		if timerange.DateWithin(from, off.StartDate, off.EndDate) || timerange.DateWithin(to, off.StartDate, off.EndDate) {
			out = append(out, off)
		}
	}
	return out, nil
}

func (f *fakeSchedules) FindRamadanSchedule(_ context.Context, _ string, year int) (*models.RamadanSchedule, error) {
	if f.ramadan == nil || f.ramadan.Year != year {
		return nil, nil
	}
	return f.ramadan, nil
}

type fakeRamadanCalendar struct {
	mu     sync.Mutex
	ranges []models.RamadanRange
	err    error
	calls  int
}

func (f *fakeRamadanCalendar) RamadanRanges(_ context.Context, year int) ([]models.RamadanRange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.RamadanRange
	for _, rng := range f.ranges {
		if rng.Start.Year() <= year && rng.End.Year() >= year {
			out = append(out, rng)
		}
	}
	if len(out) == 0 {
		// a range in the past keeps every test date outside Ramadan
		out = append(out, models.RamadanRange{Year: year, Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(year, 1, 2, 0, 0, 0, 0, time.UTC)})
	}
	return out, nil
}

type fakePrayerTimes struct {
	mu    sync.Mutex
	times *models.PrayerTimes
	err   error
	calls int
}

func (f *fakePrayerTimes) PrayerTimes(_ context.Context, city string, date time.Time) (*models.PrayerTimes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.times
	cp.City = city
	cp.Date = date.Format(timerange.DateLayout)
	return &cp, nil
}

// memoryCache mimics the Redis cache by round-tripping values through JSON.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.items[key] = raw
	c.mu.Unlock()
}

// memoryBookingStore serialises allocations with a mutex, like the provider advisory lock.
type memoryBookingStore struct {
	mu       sync.Mutex
	bookings []models.Booking
	failures []error
	inserts  int
	attempts int
	// inactive lists provider or service ids deactivated after the pre-checks ran.
	inactive map[string]bool
}

func (s *memoryBookingStore) ListOccupying(_ context.Context, providerID string, date time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.ProviderID == providerID && timerange.SameDate(b.BookingDate, date) && b.Status.Occupies() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *memoryBookingStore) InsertIfFree(ctx context.Context, booking *models.Booking, guard repository.BookingGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := models.AllocationSnapshot{
		ProviderActive: !s.inactive[booking.ProviderID],
		ServiceActive:  !s.inactive[booking.ServiceID],
	}
	for _, b := range s.bookings {
		if b.ProviderID == booking.ProviderID && timerange.SameDate(b.BookingDate, booking.BookingDate) && b.Status.Occupies() {
			snapshot.Occupying = append(snapshot.Occupying, b)
		}
	}
	if guard != nil {
		if err := guard(snapshot); err != nil {
			return err
		}
	}
	for _, b := range snapshot.Occupying {
		if b.Range().Overlaps(booking.Range()) {
			return models.ErrBookingOverlap
		}
	}
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	s.bookings = append(s.bookings, *booking)
	s.inserts++
	return nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*models.Booking
}

func (r *recordingEmitter) EmitBookingCreated(b *models.Booking) {
	r.mu.Lock()
	r.events = append(r.events, b)
	r.mu.Unlock()
}

// salonFixture is a provider open Sun-Thu 09:00-13:00 and 15:00-19:00, Sat 10:00-16:00, closed Friday.
type salonFixture struct {
	providers *fakeProviders
	services  *fakeServices
	settings  *fixedSettings
	schedules *fakeSchedules
	calendar  *fakeRamadanCalendar
	prayers   *fakePrayerTimes
	bookings  *memoryBookingStore
	rules     *TemporalRulesService
	breaks    *PrayerBreakService
}

func weeklyShifts() []models.WorkShift {
	var shifts []models.WorkShift
	for _, wd := range []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday} {
		shifts = append(shifts,
			models.WorkShift{ID: "morning", DayOfWeek: int(wd), StartTime: clk("09:00"), EndTime: clk("13:00")},
			models.WorkShift{ID: "evening", DayOfWeek: int(wd), StartTime: clk("15:00"), EndTime: clk("19:00")},
		)
	}
	shifts = append(shifts, models.WorkShift{ID: "saturday", DayOfWeek: int(time.Saturday), StartTime: clk("10:00"), EndTime: clk("16:00")})
	return shifts
}

func newSalonFixture() *salonFixture {
	settings := models.DefaultAvailabilitySettings("prov-1")
	f := &salonFixture{
		providers: &fakeProviders{items: map[string]*models.Provider{
			"prov-1": {ID: "prov-1", BusinessName: "Noor Salon", City: "riyadh", Timezone: "Asia/Riyadh", GenderPreference: models.GenderWomen, Active: true},
			"prov-off": {ID: "prov-off", BusinessName: "Closed", City: "riyadh", Timezone: "Asia/Riyadh", Active: false},
		}},
		services: &fakeServices{items: map[string]*models.Service{
			"svc-cut":   {ID: "svc-cut", ProviderID: "prov-1", Name: "Haircut", DurationMinutes: 60, Price: money.FromMajor(150), Active: true},
			"svc-brow":  {ID: "svc-brow", ProviderID: "prov-1", Name: "Brows", DurationMinutes: 30, Price: money.MustParse("25.00"), Active: true},
			"svc-other": {ID: "svc-other", ProviderID: "prov-2", Name: "Nails", DurationMinutes: 45, Price: money.FromMajor(80), Active: true},
		}},
		settings:  &fixedSettings{settings: settings},
		schedules: &fakeSchedules{shifts: weeklyShifts()},
		calendar:  &fakeRamadanCalendar{},
		prayers: &fakePrayerTimes{times: &models.PrayerTimes{
			Fajr: clk("03:40"), Dhuhr: clk("12:37"), Asr: clk("15:55"), Maghrib: clk("18:50"), Isha: clk("20:20"),
		}},
		bookings: &memoryBookingStore{},
	}
	f.rules = NewTemporalRulesService(TemporalRulesServiceParams{
		Providers:       f.providers,
		Settings:        f.settings,
		Schedules:       f.schedules,
		Calendar:        f.calendar,
		DefaultLocation: riyadh,
	})
	f.breaks = NewPrayerBreakService(PrayerBreakServiceParams{
		Providers:       f.providers,
		Settings:        f.settings,
		Ramadan:         f.rules,
		Prayers:         f.prayers,
		DefaultLocation: riyadh,
	}, PrayerBreakConfig{})
	return f
}

func (f *salonFixture) slotService(now time.Time) *SlotService {
	svc := NewSlotService(SlotServiceParams{
		Providers: f.providers,
		Services:  f.services,
		Settings:  f.settings,
		Rules:     f.rules,
		Breaks:    f.breaks,
		Bookings:  f.bookings,
	}, SlotServiceConfig{GranularityMinutes: 15, DefaultLocation: riyadh})
	svc.now = func() time.Time { return now }
	return svc
}

func (f *salonFixture) allocator(now time.Time, events bookingEventEmitter, cfg BookingAllocatorConfig) *BookingAllocatorService {
	cfg.DefaultLocation = riyadh
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Millisecond
	}
	svc := NewBookingAllocatorService(BookingAllocatorServiceParams{
		Providers: f.providers,
		Services:  f.services,
		Settings:  f.settings,
		Rules:     f.rules,
		Breaks:    f.breaks,
		Store:     f.bookings,
		Events:    events,
	}, cfg)
	svc.now = func() time.Time { return now }
	return svc
}

func (f *salonFixture) book(id, date, start, end string, status models.BookingStatus) {
	f.bookings.bookings = append(f.bookings.bookings, models.Booking{
		ID: id, ProviderID: "prov-1", ServiceID: "svc-cut", CustomerID: "someone",
		BookingDate: onDate(date), StartTime: clk(start), EndTime: clk(end), Status: status,
	})
}
