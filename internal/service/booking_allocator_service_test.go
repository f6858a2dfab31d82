package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/beauty-booking-api/internal/dto"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/money"
)

func allocateRequest(start, customer string) dto.AllocateBookingRequest {
	return dto.AllocateBookingRequest{
		ProviderID: "prov-1",
		ServiceID:  "svc-cut",
		Date:       "2025-06-15",
		StartTime:  start,
		CustomerID: customer,
	}
}

func TestAllocateCreatesPendingBooking(t *testing.T) {
	f := newSalonFixture()
	events := &recordingEmitter{}
	allocator := f.allocator(saturdayMorning, events, BookingAllocatorConfig{})

	booking, err := allocator.Allocate(context.Background(), allocateRequest("14:00", "cust-1"))
	require.Error(t, err, "14:00 falls between shifts")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, booking)

	booking, err = allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, "2025-06-15", booking.Date())
	assert.Equal(t, "09:00", booking.StartTime.String())
	assert.Equal(t, "10:00", booking.EndTime.String())
	assert.Equal(t, money.FromMajor(150), booking.Amount)
	assert.Equal(t, money.FromMajor(5), booking.PlatformFee)
	assert.Equal(t, money.FromMajor(145), booking.ProviderEarnings)
	require.Len(t, events.events, 1)
	assert.Equal(t, booking.ID, events.events[0].ID)
}

func TestAllocateConfiguredInitialStatus(t *testing.T) {
	f := newSalonFixture()
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{InitialStatus: models.BookingConfirmed})

	booking, err := allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)

	fallback := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{InitialStatus: models.BookingCompleted})
	booking, err = fallback.Allocate(context.Background(), allocateRequest("11:15", "cust-2"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, booking.Status)
}

func TestAllocateRejectsPrayerBlackout(t *testing.T) {
	f := newSalonFixture()
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{})

	_, err := allocator.Allocate(context.Background(), allocateRequest("11:30", "cust-1"))
	require.Error(t, err, "11:30-12:30 runs into the dhuhr break at 12:22")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, f.bookings.attempts)
}

func TestAllocateHonoursPadding(t *testing.T) {
	f := newSalonFixture()
	f.book("b-1", "2025-06-15", "09:00", "10:00", models.BookingConfirmed)
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{})

	_, err := allocator.Allocate(context.Background(), allocateRequest("10:00", "cust-1"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotTaken))

	booking, err := allocator.Allocate(context.Background(), allocateRequest("10:15", "cust-1"))
	require.NoError(t, err)
	assert.Equal(t, "11:15", booking.EndTime.String())
}

func TestAllocateCancelledBookingFreesSlot(t *testing.T) {
	f := newSalonFixture()
	f.book("b-1", "2025-06-15", "09:00", "10:00", models.BookingCancelled)
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{})

	_, err := allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
	require.NoError(t, err)
}

func TestAllocateConcurrentRequestsHaveOneWinner(t *testing.T) {
	f := newSalonFixture()
	events := &recordingEmitter{}
	allocator := f.allocator(saturdayMorning, events, BookingAllocatorConfig{})

	const attempts = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []*models.Booking
		taken   int
		other   []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			booking, err := allocator.Allocate(context.Background(), allocateRequest("16:40", fmt.Sprintf("cust-%d", i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, booking)
			case appErrors.Is(err, appErrors.ErrSlotTaken):
				taken++
			default:
				other = append(other, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	close(start)
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("concurrent allocations did not finish within 10s")
	}

	require.Empty(t, other)
	require.Len(t, winners, 1)
	assert.Equal(t, attempts-1, taken)
	assert.Equal(t, 1, f.bookings.inserts)
	assert.Len(t, events.events, 1)
}

func TestAllocateRetriesContention(t *testing.T) {
	f := newSalonFixture()
	f.bookings.failures = []error{
		fmt.Errorf("%w: lock_not_available", models.ErrAllocationContention),
		fmt.Errorf("%w: deadlock_detected", models.ErrAllocationContention),
	}
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{MaxRetries: 3})

	booking, err := allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
	require.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Equal(t, 3, f.bookings.attempts)
}

func TestAllocateGivesUpAfterBoundedRetries(t *testing.T) {
	f := newSalonFixture()
	for i := 0; i < 10; i++ {
		f.bookings.failures = append(f.bookings.failures, models.ErrAllocationContention)
	}
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{MaxRetries: 3})

	_, err := allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotBusy))
	assert.Equal(t, 4, f.bookings.attempts)
	assert.Zero(t, f.bookings.inserts)
}

func TestAllocateStoreOutcomes(t *testing.T) {
	f := newSalonFixture()
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{})

	f.bookings.failures = []error{fmt.Errorf("%w: bookings_no_overlap", models.ErrBookingOverlap)}
	_, err := allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotTaken))

	f.bookings.failures = []error{assert.AnError}
	_, err = allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
	assert.True(t, appErrors.Is(err, appErrors.ErrStore))
}

func TestAllocateGuardSeesLateTimeOff(t *testing.T) {
	guard := allocationGuard(onDate("2025-06-15"), span("09:00", "10:00"), 15)
	live := func(mutate func(*models.AllocationSnapshot)) models.AllocationSnapshot {
		snapshot := models.AllocationSnapshot{ProviderActive: true, ServiceActive: true}
		mutate(&snapshot)
		return snapshot
	}

	err := guard(live(func(s *models.AllocationSnapshot) {
		s.TimeOff = []models.TimeOff{{StartDate: onDate("2025-06-15"), EndDate: onDate("2025-06-15")}}
	}))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = guard(live(func(s *models.AllocationSnapshot) {
		s.Occupying = []models.Booking{{ID: "x", StartTime: clk("10:10"), EndTime: clk("11:00"), Status: models.BookingPending}}
	}))
	assert.True(t, appErrors.Is(err, appErrors.ErrSlotTaken))

	err = guard(live(func(s *models.AllocationSnapshot) {
		s.Occupying = []models.Booking{{ID: "y", StartTime: clk("10:15"), EndTime: clk("11:00"), Status: models.BookingPending}}
	}))
	assert.NoError(t, err)

	err = guard(live(func(s *models.AllocationSnapshot) { s.ProviderActive = false }))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	err = guard(live(func(s *models.AllocationSnapshot) { s.ServiceActive = false }))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAllocateRejectsDeactivationBeforeCommit(t *testing.T) {
	for _, id := range []string{"prov-1", "svc-cut"} {
		t.Run(id, func(t *testing.T) {
			f := newSalonFixture()
			f.bookings.inactive = map[string]bool{id: true}
			events := &recordingEmitter{}
			allocator := f.allocator(saturdayMorning, events, BookingAllocatorConfig{})

			booking, err := allocator.Allocate(context.Background(), allocateRequest("09:00", "cust-1"))
			require.Error(t, err)
			assert.Nil(t, booking)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation), err.Error())
			assert.Equal(t, 1, f.bookings.attempts)
			assert.Zero(t, f.bookings.inserts)
			assert.Empty(t, events.events)
		})
	}
}

func TestAllocateValidation(t *testing.T) {
	f := newSalonFixture()
	allocator := f.allocator(saturdayMorning, nil, BookingAllocatorConfig{})

	cases := []struct {
		name string
		req  dto.AllocateBookingRequest
		want *appErrors.Error
	}{
		{"missing customer", allocateRequest("09:00", ""), appErrors.ErrValidation},
		{"bad start", allocateRequest("9am", "c"), appErrors.ErrValidation},
		{"end of day", allocateRequest("24:00", "c"), appErrors.ErrValidation},
		{"unknown provider", func() dto.AllocateBookingRequest { r := allocateRequest("09:00", "c"); r.ProviderID = "nope"; return r }(), appErrors.ErrNotFound},
		{"inactive provider", func() dto.AllocateBookingRequest { r := allocateRequest("09:00", "c"); r.ProviderID = "prov-off"; return r }(), appErrors.ErrValidation},
		{"foreign service", func() dto.AllocateBookingRequest { r := allocateRequest("09:00", "c"); r.ServiceID = "svc-other"; return r }(), appErrors.ErrValidation},
		{"closed friday", func() dto.AllocateBookingRequest { r := allocateRequest("09:00", "c"); r.Date = "2025-06-20"; return r }(), appErrors.ErrValidation},
		{"past date", func() dto.AllocateBookingRequest { r := allocateRequest("09:00", "c"); r.Date = "2025-06-13"; return r }(), appErrors.ErrValidation},
		{"too soon", func() dto.AllocateBookingRequest { r := allocateRequest("09:00", "c"); r.Date = "2025-06-14"; return r }(), appErrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := allocator.Allocate(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, tc.want), err.Error())
		})
	}
	assert.Zero(t, f.bookings.attempts)
}

func TestAllocationOutcome(t *testing.T) {
	assert.Equal(t, AllocationSucceeded, allocationOutcome(nil))
	assert.Equal(t, AllocationTaken, allocationOutcome(appErrors.Clone(appErrors.ErrSlotTaken, "x")))
	assert.Equal(t, AllocationBusy, allocationOutcome(appErrors.Clone(appErrors.ErrSlotBusy, "x")))
	assert.Equal(t, AllocationRejected, allocationOutcome(appErrors.Clone(appErrors.ErrNotFound, "x")))
	assert.Equal(t, AllocationFailed, allocationOutcome(assert.AnError))
}
