package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/timerange"
)

// ScheduleRepository reads weekly shifts, time-off and Ramadan schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) exec(exec sqlx.QueryerContext) sqlx.QueryerContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListActiveShifts returns every shift of the provider's active working schedule.
func (r *ScheduleRepository) ListActiveShifts(ctx context.Context, providerID string) ([]models.WorkShift, error) {
	const query = `SELECT s.id, s.schedule_id, s.day_of_week, s.start_time, s.end_time, s.label
	FROM work_shifts s
	JOIN working_schedules w ON w.id = s.schedule_id
	WHERE w.provider_id = $1 AND w.active = TRUE
	ORDER BY s.day_of_week, s.start_time`
	var shifts []models.WorkShift
	if err := sqlx.SelectContext(ctx, r.db, &shifts, query, providerID); err != nil {
		return nil, fmt.Errorf("list active shifts: %w", err)
	}
	return shifts, nil
}

// ListTimeOff returns time-off rows overlapping the inclusive [from, to] date range.
func (r *ScheduleRepository) ListTimeOff(ctx context.Context, exec sqlx.QueryerContext, providerID string, from, to time.Time) ([]models.TimeOff, error) {
	const query = `SELECT id, provider_id, start_date, end_date, reason
	FROM time_off
	WHERE provider_id = $1 AND start_date <= $3::date AND end_date >= $2::date
	ORDER BY start_date`
	var rows []models.TimeOff
	err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, providerID,
		from.Format(timerange.DateLayout), to.Format(timerange.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list time off: %w", err)
	}
	return rows, nil
}

// FindRamadanSchedule returns the provider's Ramadan template for a year, or nil when none is configured.
func (r *ScheduleRepository) FindRamadanSchedule(ctx context.Context, providerID string, year int) (*models.RamadanSchedule, error) {
	const query = `SELECT id, provider_id, year, template_type, early_start, early_end, late_start, late_end,
		iftar_break_minutes, auto_adjust_maghrib
	FROM ramadan_schedules
	WHERE provider_id = $1 AND year = $2
	LIMIT 1`
	var schedule models.RamadanSchedule
	if err := sqlx.GetContext(ctx, r.db, &schedule, query, providerID, year); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find ramadan schedule: %w", err)
	}
	return &schedule, nil
}
