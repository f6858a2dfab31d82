package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/beauty-booking-api/internal/models"
)

const serviceColumns = `id, provider_id, name, duration_minutes, price_minor, active, created_at, updated_at`

// ServiceRepository reads the bookable services offered by providers.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository constructs the repository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// FindByID returns a service or sql.ErrNoRows.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 LIMIT 1`
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return &svc, nil
}
