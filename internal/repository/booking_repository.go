package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/database"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

const bookingColumns = `id, provider_id, service_id, customer_id, booking_date, start_time, end_time, status,
	amount_minor, platform_fee_minor, provider_earnings_minor, created_at, updated_at`

// Postgres error codes that decide how an allocation failure is reported.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgSerialization      = "40001"
	pgDeadlock           = "40P01"
	pgLockNotAvailable   = "55P03"
)

// BookingGuard re-validates an allocation against the committed state seen inside the transaction.
// Returning an error aborts the insert and rolls back.
type BookingGuard func(snapshot models.AllocationSnapshot) error

// BookingRepository persists bookings.
type BookingRepository struct {
	db          *sqlx.DB
	schedules   *ScheduleRepository
	lockTimeout time.Duration
}

// NewBookingRepository constructs the repository. lockTimeout bounds the wait for the provider lock.
func NewBookingRepository(db *sqlx.DB, lockTimeout time.Duration) *BookingRepository {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &BookingRepository{db: db, schedules: NewScheduleRepository(db), lockTimeout: lockTimeout}
}

// ListOccupying returns the non-cancelled bookings of a provider on a date, ordered by start.
func (r *BookingRepository) ListOccupying(ctx context.Context, providerID string, date time.Time) ([]models.Booking, error) {
	return r.listOccupying(ctx, r.db, providerID, date)
}

func (r *BookingRepository) listOccupying(ctx context.Context, q sqlx.QueryerContext, providerID string, date time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	WHERE provider_id = $1 AND booking_date = $2::date AND status <> $3
	ORDER BY start_time`
	var bookings []models.Booking
	if err := sqlx.SelectContext(ctx, q, &bookings, query, providerID, date.Format(timerange.DateLayout), string(models.BookingCancelled)); err != nil {
		return nil, fmt.Errorf("list occupying bookings: %w", err)
	}
	return bookings, nil
}

// InsertIfFree atomically re-validates and inserts a booking.
//
// The provider is serialised with a transaction-scoped advisory lock. The provider and service
// rows are share-locked, and the guard sees their active flags together with the bookings and
// time-off committed before the lock was granted. The bookings exclusion constraint backs the insert. Overlaps surface as models.ErrBookingOverlap,
// lock timeouts, deadlocks and serialization failures as models.ErrAllocationContention.
// Guard errors are returned unchanged.
func (r *BookingRepository) InsertIfFree(ctx context.Context, booking *models.Booking, guard BookingGuard) error {
	if booking == nil {
		return fmt.Errorf("booking payload is nil")
	}
	if booking.ProviderID == "" || booking.ServiceID == "" || booking.CustomerID == "" {
		return fmt.Errorf("provider_id, service_id and customer_id are required")
	}
	if !booking.Range().Valid() {
		return fmt.Errorf("invalid booking window %s", booking.Range())
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingPending
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	day := booking.Date()

	err := database.WithTx(ctx, r.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sqlx.Tx) error {
		lockTimeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, lockTimeout); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, booking.ProviderID); err != nil {
			return fmt.Errorf("lock provider %s: %w", booking.ProviderID, err)
		}

		snapshot := models.AllocationSnapshot{}
		var err error
		if snapshot.ProviderActive, err = activeFlag(ctx, tx,
			`SELECT active FROM providers WHERE id = $1 FOR SHARE`, booking.ProviderID); err != nil {
			return fmt.Errorf("lock provider row: %w", err)
		}
		if snapshot.ServiceActive, err = activeFlag(ctx, tx,
			`SELECT active FROM services WHERE id = $1 AND provider_id = $2 FOR SHARE`, booking.ServiceID, booking.ProviderID); err != nil {
			return fmt.Errorf("lock service row: %w", err)
		}
		if snapshot.Occupying, err = r.listOccupying(ctx, tx, booking.ProviderID, booking.BookingDate); err != nil {
			return err
		}
		if snapshot.TimeOff, err = r.schedules.ListTimeOff(ctx, tx, booking.ProviderID, booking.BookingDate, booking.BookingDate); err != nil {
			return err
		}

		if guard != nil {
			if err := guard(snapshot); err != nil {
				return err
			}
		}

		const insert = `INSERT INTO bookings (id, provider_id, service_id, customer_id, booking_date, start_time, end_time,
			status, amount_minor, platform_fee_minor, provider_earnings_minor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13)`
		if _, err := tx.ExecContext(ctx, insert,
			booking.ID,
			booking.ProviderID,
			booking.ServiceID,
			booking.CustomerID,
			day,
			booking.StartTime,
			booking.EndTime,
			string(booking.Status),
			booking.Amount.Minor(),
			booking.PlatformFee.Minor(),
			booking.ProviderEarnings.Minor(),
			booking.CreatedAt,
			booking.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	return classifyAllocationError(err)
}

// activeFlag reads an active column; a missing row counts as inactive.
func activeFlag(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	var active bool
	if err := sqlx.GetContext(ctx, q, &active, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

func classifyAllocationError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pgExclusionViolation, pgUniqueViolation:
		return fmt.Errorf("%w: %s", models.ErrBookingOverlap, pqErr.Constraint)
	case pgSerialization, pgDeadlock, pgLockNotAvailable:
		return fmt.Errorf("%w: %s", models.ErrAllocationContention, pqErr.Code.Name())
	default:
		return err
	}
}
