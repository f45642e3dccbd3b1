package repository

import (
	"context"
	"fmt"

	"studio-booking/internal/data/entity"
	"studio-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ProviderRepository interface {
	Create(ctx context.Context, provider *entity.Provider) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error)
	FindByEmail(ctx context.Context, email string) (*entity.Provider, error)
}

type providerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProviderRepository(db database.PgxIface, log *zap.Logger) ProviderRepository {
	return &providerRepository{
		db:  db,
		log: log.With(zap.String("repository", "provider")),
	}
}

const providerColumns = `id, name, email, password_hash, commission_bps, created_at, updated_at`

func scanProvider(row pgx.Row) (*entity.Provider, error) {
	var p entity.Provider
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.PasswordHash,
		&p.CommissionBps,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *providerRepository) Create(ctx context.Context, provider *entity.Provider) error {
	query := `
		INSERT INTO providers (id, name, email, password_hash, commission_bps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		provider.ID,
		provider.Name,
		provider.Email,
		provider.PasswordHash,
		provider.CommissionBps,
		provider.CreatedAt,
		provider.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create provider",
			zap.Error(err),
			zap.String("email", provider.Email),
		)
		return fmt.Errorf("create provider %s: %w", provider.Email, err)
	}

	return nil
}

func (r *providerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find provider by ID",
			zap.Error(err),
			zap.String("provider_id", id.String()),
		)
		return nil, fmt.Errorf("find provider by ID %s: %w", id.String(), err)
	}

	return provider, nil
}

func (r *providerRepository) FindByEmail(ctx context.Context, email string) (*entity.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE email = $1`

	provider, err := scanProvider(r.db.QueryRow(ctx, query, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find provider by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find provider by email %s: %w", email, err)
	}

	return provider, nil
}
