package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sibarconnect/inbox-service/internal/domain"
)

// CompanyRepository reads tenant accounts and their provider configuration.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetByWhatsAppNumber(ctx context.Context, phoneNumber string) (*domain.Company, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository builds repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

const companyColumns = `id, name, whatsapp_phone_number, provider_api_key, created_at`

func (r *companyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	const query = `SELECT ` + companyColumns + ` FROM companies WHERE id=$1`
	return scanCompany(r.pool.QueryRow(ctx, query, id))
}

func (r *companyRepository) GetByWhatsAppNumber(ctx context.Context, phoneNumber string) (*domain.Company, error) {
	const query = `SELECT ` + companyColumns + ` FROM companies WHERE whatsapp_phone_number=$1`
	return scanCompany(r.pool.QueryRow(ctx, query, phoneNumber))
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var company domain.Company
	if err := row.Scan(
		&company.ID,
		&company.Name,
		&company.WhatsAppPhoneNumber,
		&company.ProviderAPIKey,
		&company.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &company, nil
}
